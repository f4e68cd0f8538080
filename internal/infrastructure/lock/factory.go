package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tradebooks/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Factory builds the PartyLocker for the configured deployment
type Factory struct {
	redisConfig         config.RedisConfig
	ledgerConfig        config.LedgerConfig
	logger              *zap.Logger
	allowMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithMemoryFallback controls whether to fall back to in-process locks when
// Redis is unavailable. Default is true.
func WithMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowMemoryFallback = allow
	}
}

// NewFactory creates a new Factory
func NewFactory(redisCfg config.RedisConfig, ledgerCfg config.LedgerConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:         redisCfg,
		ledgerConfig:        ledgerCfg,
		logger:              zap.NewNop(),
		allowMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisLocker connects to Redis and returns a RedisLocker with the client
// so the caller can close it on shutdown
func (f *Factory) CreateRedisLocker(ctx context.Context) (*RedisLocker, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	locker := NewRedisLocker(client,
		WithTTL(f.ledgerConfig.LockTTL),
		WithRetry(f.ledgerConfig.LockRetries, f.ledgerConfig.LockRetryBackoff),
		WithRedisLogger(f.logger),
	)
	return locker, client, nil
}

// CreateLocker returns a Redis locker when Redis is enabled and reachable,
// otherwise an in-process locker if fallback is allowed. The returned close
// function is never nil.
func (f *Factory) CreateLocker(ctx context.Context) (PartyLocker, func() error, error) {
	noop := func() error { return nil }

	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-process party locks")
		return NewMemoryLocker(), noop, nil
	}

	locker, client, err := f.CreateRedisLocker(ctx)
	if err == nil {
		f.logger.Info("Using Redis party locks", zap.String("addr", f.redisConfig.Addr()))
		return locker, client.Close, nil
	}

	if !f.allowMemoryFallback {
		return nil, noop, fmt.Errorf("Redis required for party locks but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-process party locks. "+
		"Concurrent writers on other instances are only caught by optimistic locking.",
		zap.Error(err),
	)
	return NewMemoryLocker(), noop, nil
}
