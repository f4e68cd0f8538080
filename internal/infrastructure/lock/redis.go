package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tradebooks/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RedisLocker is a PartyLocker backed by Redis, shared by every server instance
type RedisLocker struct {
	locker  *redislock.Client
	ttl     time.Duration
	retries int
	backoff time.Duration
	logger  *zap.Logger
}

// RedisLockerOption configures a RedisLocker
type RedisLockerOption func(*RedisLocker)

// WithTTL sets how long a lock lives if its holder never releases it
func WithTTL(ttl time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithRetry sets how many times and how often Lock retries a held lock
func WithRetry(retries int, backoff time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		l.retries = retries
		l.backoff = backoff
	}
}

// WithRedisLogger sets the logger used for release failures
func WithRedisLogger(logger *zap.Logger) RedisLockerOption {
	return func(l *RedisLocker) {
		l.logger = logger
	}
}

// NewRedisLocker creates a RedisLocker over an existing client
func NewRedisLocker(client redis.UniversalClient, opts ...RedisLockerOption) *RedisLocker {
	l := &RedisLocker{
		locker:  redislock.New(client),
		ttl:     30 * time.Second,
		retries: 10,
		backoff: 100 * time.Millisecond,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock obtains the party lock, retrying with linear backoff while it is held
func (l *RedisLocker) Lock(ctx context.Context, partyID uuid.UUID) (Release, error) {
	var strategy redislock.RetryStrategy = redislock.NoRetry()
	if l.retries > 0 {
		strategy = redislock.LimitRetry(redislock.LinearBackoff(l.backoff), l.retries)
	}

	key := partyKey(partyID)
	held, err := l.locker.Obtain(ctx, key, l.ttl, &redislock.Options{RetryStrategy: strategy})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, shared.Wrap(shared.CodeLockNotObtained, "Party is busy, try again", err)
	}
	if err != nil {
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Release must outlive a cancelled request context
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := held.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				l.logger.Warn("Failed to release party lock", zap.String("key", key), zap.Error(err))
			}
		})
	}, nil
}

var _ PartyLocker = (*RedisLocker)(nil)
