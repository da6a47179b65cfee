package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

const (
	defaultLockTTL   = 10 * time.Second
	lockRetryBackoff = 50 * time.Millisecond
	releaseTimeout   = 3 * time.Second
)

// ErrLockTimeout is returned when the lock could not be taken before ctx ended.
var ErrLockTimeout = errors.New("lock: timed out waiting for key")

var errHeld = errors.New("lock held")

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// KeyLocker is a lease-based mutex per key. Key format: lock:<key>
type KeyLocker struct {
	client redis.Cmdable
	ttl    time.Duration
	log    zerolog.Logger
}

// NewKeyLocker creates a KeyLocker whose leases expire after ttl.
func NewKeyLocker(client redis.Cmdable, ttl time.Duration, log zerolog.Logger) *KeyLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &KeyLocker{client: client, ttl: ttl, log: log}
}

// Lock blocks until key is acquired, ctx is done, or one lease period has passed.
func (l *KeyLocker) Lock(ctx context.Context, key string) (func(), error) {
	k := "lock:" + key
	token := uuid.NewString()

	// Waiting longer than one lease means the holder is stuck or gone.
	backoff := retry.WithMaxDuration(l.ttl, retry.NewConstant(lockRetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		ok, err := l.client.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("lock %s: %w", key, err)
		}
		if !ok {
			return retry.RetryableError(errHeld)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errHeld) || ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}
		return nil, err
	}

	unlock := func() {
		// The caller's context may already be cancelled; release on a fresh one.
		relCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		if err := releaseScript.Run(relCtx, l.client, []string{k}, token).Err(); err != nil {
			l.log.Warn().Err(err).Str("key", k).Msg("lock release failed")
		}
	}
	return unlock, nil
}
