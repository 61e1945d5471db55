package turn

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/TheFirstHero6/noah-game-sub000/models"
)

// locker serializes turn advancement per realm key. acquire returns
// ErrTurnInProgress when another advance holds the key, and any other
// error fails the advance; running unlocked would reopen the
// double-advance race.
type locker interface {
	acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// memoryLocker guards advancement within a single process; the fallback
// when no redis client is configured.
type memoryLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemoryLocker() *memoryLocker {
	return &memoryLocker{held: make(map[string]bool)}
}

func (l *memoryLocker) acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[key] {
		return nil, models.ErrTurnInProgress
	}
	l.held[key] = true

	return func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}, nil
}

// redisLocker coordinates advancement across processes with SETNX. The
// value is a unique token, and release deletes the key only while it
// still holds that token, so a lock that expired mid-batch and was
// reacquired elsewhere is never released by the first holder.
type redisLocker struct {
	client *redis.Client
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func (l *redisLocker) acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrTurnInProgress
	}

	return func() {
		err := releaseScript.Run(context.Background(), l.client, []string{key}, token).Err()
		if err != nil && err != redis.Nil {
			log.Warn().Err(err).Msg("Error releasing turn lock")
		}
	}, nil
}
