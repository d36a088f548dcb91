package repo

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type Redis struct{ C *redis.Client }

func NewRedis(addr string) *Redis {
	return &Redis{C: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *Redis) Ping(ctx context.Context) error { return r.C.Ping(ctx).Err() }
func (r *Redis) Close() error                   { return r.C.Close() }

// RateLimiter counts hits per key in a fixed one-minute window.
type RateLimiter struct {
	R      *Redis
	PerMin int
}

// Allow fails open: if Redis is down, requests pass.
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	if rl == nil || rl.R == nil || rl.PerMin <= 0 {
		return true
	}
	n, err := rl.R.C.Incr(ctx, "rl:"+key).Result()
	if err != nil {
		return true
	}
	if n == 1 {
		rl.R.C.Expire(ctx, "rl:"+key, time.Minute)
	}
	return n <= int64(rl.PerMin)
}
