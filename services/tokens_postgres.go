package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresTokenStore keeps tokens in the session_tokens table.
type PostgresTokenStore struct {
	pool *pgxpool.Pool
}

func NewPostgresTokenStore(pool *pgxpool.Pool) *PostgresTokenStore {
	return &PostgresTokenStore{pool: pool}
}

// EnsureSessionTokensTable creates session_tokens if missing (safety net when migrate was not run).
func (s *PostgresTokenStore) EnsureSessionTokensTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS session_tokens (
			name TEXT NOT NULL,
			chat_id BIGINT NOT NULL,
			token TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (name, chat_id)
		)`)
	return err
}

func isSessionTokensMissing(err error) bool {
	return err != nil && strings.Contains(err.Error(), "session_tokens") && strings.Contains(err.Error(), "does not exist")
}

func (s *PostgresTokenStore) Get(ctx context.Context, chatID int64) (string, error) {
	var token string
	err := s.pool.QueryRow(ctx, `
		SELECT token FROM session_tokens WHERE name = $1 AND chat_id = $2`,
		TokenKey, chatID,
	).Scan(&token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		if isSessionTokensMissing(err) {
			if ensureErr := s.EnsureSessionTokensTable(ctx); ensureErr != nil {
				return "", ensureErr
			}
			return "", nil
		}
		return "", err
	}
	return token, nil
}

func (s *PostgresTokenStore) Set(ctx context.Context, chatID int64, token string) error {
	if token == "" {
		return s.Clear(ctx, chatID)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO session_tokens (name, chat_id, token, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name, chat_id) DO UPDATE SET token = EXCLUDED.token, updated_at = now()`,
		TokenKey, chatID, token,
	)
	if err != nil && isSessionTokensMissing(err) {
		if ensureErr := s.EnsureSessionTokensTable(ctx); ensureErr != nil {
			return ensureErr
		}
		return s.Set(ctx, chatID, token)
	}
	return err
}

func (s *PostgresTokenStore) Clear(ctx context.Context, chatID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM session_tokens WHERE name = $1 AND chat_id = $2`, TokenKey, chatID)
	if isSessionTokensMissing(err) {
		return nil
	}
	return err
}
