package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned by Acquire when another holder owns the key.
var ErrLockHeld = errors.New("lock_held")

// releaseScript deletes the key only while the caller still owns it,
// so an expired lease can never release a successor's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out short advisory leases backed by SetNX. It absorbs
// rapid double submits at the counter; the guarded database updates
// remain the source of truth. A nil Locker grants every lease.
type Locker struct {
	client *redis.Client
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{client: client}
}

// Lease is an acquired advisory lock. Release is safe on a nil Lease.
type Lease struct {
	client *redis.Client
	key    string
	token  string
}

func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	if l == nil || l.client == nil {
		return nil, nil
	}
	if key == "" || ttl <= 0 {
		return nil, fmt.Errorf("invalid lease request: key=%q ttl=%s", key, ttl)
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lease{client: l.client, key: key, token: token}, nil
}

func (le *Lease) Release(ctx context.Context) error {
	if le == nil || le.client == nil {
		return nil
	}
	return releaseScript.Run(ctx, le.client, []string{le.key}, le.token).Err()
}
