package main

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingMigrations(t *testing.T) {
	files := fstest.MapFS{
		"migrations/002_orders.sql":         {Data: []byte("SELECT 2;")},
		"migrations/001_session_tokens.sql": {Data: []byte("SELECT 1;")},
		"migrations/README.md":              {Data: []byte("notes")},
	}

	pending, err := pendingMigrations(files, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"migrations/001_session_tokens.sql", "migrations/002_orders.sql"}, pending)

	pending, err = pendingMigrations(files, map[string]bool{"migrations/001_session_tokens.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"migrations/002_orders.sql"}, pending)
}

func TestEmbeddedMigrationsAreListed(t *testing.T) {
	pending, err := pendingMigrations(migrationsFS, nil)
	require.NoError(t, err)
	assert.Contains(t, pending, "migrations/001_session_tokens.sql")
}
