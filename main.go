package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"menu-telegram/bot"
	"menu-telegram/config"
	"menu-telegram/db"
	"menu-telegram/handler"
	"menu-telegram/menuapi"
	"menu-telegram/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Check for migrate subcommand
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(ctx, cfg, logger); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
		return
	}

	if cfg.Telegram.Token == "" {
		fmt.Fprintln(os.Stderr, "TOKEN not set")
		os.Exit(1)
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("exit", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	tokens, closeTokens, err := openTokenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeTokens()

	client := menuapi.NewClient(menuapi.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	})

	b, err := bot.New(cfg, client, tokens, logger)
	if err != nil {
		return err
	}

	var updates handler.UpdateHandler
	if cfg.Telegram.WebhookURL != "" {
		updates = b
	}
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.NewHandler(updates, logger.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		logger.Info("bot started", zap.String("api", cfg.API.BaseURL), zap.String("token_store", cfg.Tokens.Kind))
		return b.Run(gctx)
	})
	return g.Wait()
}

// openTokenStore returns the configured per-chat token store and its closer.
func openTokenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (services.TokenStore, func(), error) {
	switch cfg.Tokens.Kind {
	case config.TokenStorePostgres:
		pool, err := db.Init(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		// Optional auto-migration (useful in production and for fresh DBs).
		// Set AUTO_MIGRATE=1 (or "true") to enable.
		if v := strings.TrimSpace(os.Getenv("AUTO_MIGRATE")); v == "1" || strings.EqualFold(v, "true") {
			if err := applyMigrations(ctx, pool, logger); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return services.NewPostgresTokenStore(pool), db.Close, nil
	case config.TokenStoreRedis:
		store, err := services.NewRedisTokenStore(ctx, cfg.Tokens.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		logger.Warn("using in-memory token store; sessions are lost on restart")
		return services.NewMemoryTokenStore(), func() {}, nil
	}
}

func runMigrate(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	pool, err := db.Init(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	return applyMigrations(ctx, pool, logger)
}
