// README: Per-conversation lease lock in Redis, shared by every API replica.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockKeyPrefix    = "tripmate:lock:%s"
	defaultLockLease = 2 * time.Minute
	lockRetry        = 25 * time.Millisecond
	releaseTimeout   = 2 * time.Second
)

// Locker serialises turns on one conversation across processes.
type Locker interface {
	Acquire(ctx context.Context, id string) (release func(), err error)
}

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	redis *redis.Client
	lease time.Duration
}

// NewRedisLocker takes SET NX leases. A holder that dies keeps the
// conversation locked for at most lease.
func NewRedisLocker(client *redis.Client, lease time.Duration) *RedisLocker {
	if lease <= 0 {
		lease = defaultLockLease
	}
	return &RedisLocker{redis: client, lease: lease}
}

// Acquire polls until the lease is taken or ctx is done.
func (l *RedisLocker) Acquire(ctx context.Context, id string) (func(), error) {
	key := lockKey(id)
	token := uuid.NewString()
	for {
		ok, err := l.redis.SetNX(ctx, key, token, l.lease).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", id, err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetry):
		}
	}
}

// release ignores errors; an unreleased lock expires with its lease.
func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	_ = releaseScript.Run(ctx, l.redis, []string{key}, token).Err()
}

func lockKey(id string) string {
	return fmt.Sprintf(lockKeyPrefix, id)
}
