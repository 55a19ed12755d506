package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/config"
	"github.com/eyewearvn/storefront/pkg/errors"
)

const keyPrefix = "storefront:session:"

// InitRedis connects and pings the server
func InitRedis(cfg config.RedisConfig, logger *zap.Logger) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established", zap.String("addr", cfg.Addr))
	return rdb, nil
}

// SessionKey is the redis key holding a session's state
func SessionKey(sessionID string) string {
	return keyPrefix + sessionID
}

type sessionStore struct {
	rdb    *goredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSessionStore creates a redis-backed session persister. Every save refreshes the TTL.
func NewSessionStore(rdb *goredis.Client, ttl time.Duration, logger *zap.Logger) *sessionStore {
	return &sessionStore{rdb: rdb, ttl: ttl, logger: logger}
}

func (s *sessionStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, SessionKey(sessionID)).Bytes()
	if err == goredis.Nil {
		return nil, &errors.ErrNotFound{Resource: "session", ID: sessionID}
	}
	if err != nil {
		s.logger.Error("Failed to load session", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return data, nil
}

func (s *sessionStore) Save(ctx context.Context, sessionID string, data []byte) error {
	if err := s.rdb.Set(ctx, SessionKey(sessionID), data, s.ttl).Err(); err != nil {
		s.logger.Error("Failed to save session", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}
	return nil
}

func (s *sessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, SessionKey(sessionID)).Err()
}
