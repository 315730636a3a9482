package services

import (
	"context"
	"strconv"
	"sync"
)

// TokenKey is the fixed storage name of the bearer token.
const TokenKey = "menuToken"

// TokenStore durably keeps one opaque bearer token per chat.
// Get returns "" with a nil error when no token is stored.
type TokenStore interface {
	Get(ctx context.Context, chatID int64) (string, error)
	Set(ctx context.Context, chatID int64, token string) error
	Clear(ctx context.Context, chatID int64) error
}

func tokenKey(chatID int64) string {
	return TokenKey + ":" + strconv.FormatInt(chatID, 10)
}

// MemoryTokenStore keeps tokens for the lifetime of the process.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]string)}
}

func (m *MemoryTokenStore) Get(_ context.Context, chatID int64) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens[tokenKey(chatID)], nil
}

func (m *MemoryTokenStore) Set(ctx context.Context, chatID int64, token string) error {
	if token == "" {
		return m.Clear(ctx, chatID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[tokenKey(chatID)] = token
	return nil
}

func (m *MemoryTokenStore) Clear(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, tokenKey(chatID))
	return nil
}
