package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/hotelbooking/config"
	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockNotAcquired = fmt.Errorf("room lock not acquired: %w", domain.ErrRoomLocked)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock that was taken over by another request is left alone.
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// RoomLocker serialises reserve/update per room using SET NX with a TTL.
type RoomLocker struct {
	client     *redis.Client
	ttl        time.Duration
	retries    int
	retryDelay time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewRoomLocker(client *redis.Client, cfg config.BookingConfig) *RoomLocker {
	retries := cfg.RoomLockRetries
	if retries < 1 {
		retries = 1
	}
	return &RoomLocker{
		client:     client,
		ttl:        time.Duration(cfg.RoomLockTTLSeconds) * time.Second,
		retries:    retries,
		retryDelay: time.Duration(cfg.RoomLockRetryMs) * time.Millisecond,
	}
}

// LockRoom blocks until the room lock is held, the retries run out or ctx is
// done. The returned func releases the lock.
func (l *RoomLocker) LockRoom(ctx context.Context, roomID int) (func(context.Context) error, error) {
	key := roomLockKey(roomID)
	token := uuid.NewString()

	for attempt := 0; attempt < l.retries; attempt++ {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire room lock: %w", err)
		}
		if ok {
			return func(ctx context.Context) error {
				return l.release(ctx, key, token)
			}, nil
		}
		if attempt == l.retries-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}
	return nil, ErrLockNotAcquired
}

func (l *RoomLocker) release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		return fmt.Errorf("release room lock: %w", err)
	}
	return nil
}

func roomLockKey(roomID int) string {
	return fmt.Sprintf("lock:room:%d", roomID)
}
