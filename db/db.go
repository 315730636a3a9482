package db

import (
	"context"
	"fmt"

	"menu-telegram/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

// ConnString builds the postgres URL for cfg.
func ConnString(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
}

func Init(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	var err error
	Pool, err = pgxpool.New(ctx, ConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return Pool, nil
}

func Close() {
	if Pool != nil {
		Pool.Close()
	}
}
