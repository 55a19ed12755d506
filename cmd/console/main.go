package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eyewearvn/storefront/internal/api"
	"github.com/eyewearvn/storefront/internal/backend"
	"github.com/eyewearvn/storefront/internal/config"
	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/internal/repository/memory"
	"github.com/eyewearvn/storefront/internal/repository/postgres"
	"github.com/eyewearvn/storefront/internal/repository/redis"
	"github.com/eyewearvn/storefront/internal/state"
)

const purgeInterval = time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	persister, closePersister, err := openPersister(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize session storage", zap.String("backend", cfg.State.Backend), zap.Error(err))
	}
	defer closePersister()

	if missing := domain.MissingDisplays(); len(missing) > 0 {
		logger.Warn("Order statuses without a display badge", zap.Any("statuses", missing))
	}

	secret := cfg.State.Secret
	if secret == "" {
		logger.Warn("STATE_SECRET is empty, session tokens are sealed with an empty key")
	}
	sessions := state.NewManager(persister, state.NewSealer(secret), cfg.State.SessionTTL, logger)
	go maintainSessions(ctx, persister, sessions, logger)
	client := backend.NewClient(cfg.Backend, logger)
	router := api.NewRouter(cfg, client, sessions, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Storefront console started",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("api_base_url", cfg.Backend.BaseURL),
		zap.String("state_backend", cfg.State.Backend),
	)

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// openPersister builds the session storage selected by STATE_BACKEND
func openPersister(ctx context.Context, cfg *config.Config, logger *zap.Logger) (state.Persister, func(), error) {
	switch cfg.State.Backend {
	case config.StateBackendPostgres:
		db, err := postgres.NewConnection(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.NewSessionRepository(db, cfg.State.SessionTTL, logger)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, func() { db.Close() }, nil

	case config.StateBackendRedis:
		rdb, err := redis.InitRedis(cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		return redis.NewSessionStore(rdb, cfg.State.SessionTTL, logger), func() { rdb.Close() }, nil

	default:
		return memory.NewSessionStore(cfg.State.SessionTTL), func() {}, nil
	}
}

type purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// maintainSessions drops expired sessions from storage when the persister
// needs it (redis expires keys itself) and evicts idle cached stores.
func maintainSessions(ctx context.Context, persister state.Persister, sessions *state.Manager, logger *zap.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if repo, ok := persister.(purger); ok {
				n, err := repo.PurgeExpired(ctx)
				if err != nil {
					logger.Warn("Failed to purge expired sessions", zap.Error(err))
				} else if n > 0 {
					logger.Info("Purged expired sessions", zap.Int64("count", n))
				}
			}
			if n := sessions.Sweep(); n > 0 {
				logger.Info("Evicted idle cached sessions", zap.Int("count", n))
			}
		}
	}
}
