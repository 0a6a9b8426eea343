package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/evaluation"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

var ErrLockNotHeld = errors.New(errors.ErrCodeCacheError, "lock not held by this owner")

var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// Locker hands out non-blocking mutexes keyed by name. Each acquisition
// writes a random token so only its owner can release it.
type Locker struct {
	client *Client
	logger logging.Logger
}

var _ evaluation.Locker = (*Locker)(nil)

// NewLocker builds a Locker on client.
func NewLocker(client *Client, log logging.Logger) *Locker {
	return &Locker{client: client, logger: log.Named("lock")}
}

// TryLock makes one SETNX attempt. When acquired is false the lock is held
// elsewhere and unlock is nil.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	full := buildLockKey(l.client, key)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to set lock")
	}
	if !ok {
		l.logger.Debug("lock busy", logging.String("key", full))
		return nil, false, nil
	}
	unlock := func(ctx context.Context) error {
		return l.release(ctx, full, token)
	}
	return unlock, true, nil
}

func (l *Locker) release(ctx context.Context, full, token string) error {
	res, err := unlockScript.Run(ctx, l.client.GetUnderlyingClient(), []string{full}, token).Int64()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to release lock")
	}
	if res == 0 {
		l.logger.Warn("lock expired before release", logging.String("key", full))
		return ErrLockNotHeld
	}
	return nil
}

func buildLockKey(c *Client, name string) string {
	return c.Key("lock:" + name)
}
