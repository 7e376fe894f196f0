package middleware

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/fretnav/api/pkg/response"
)

type RateLimiter struct {
	redis *redis.Client
}

// NewRateLimiter creates a limiter. A nil client lets every request through.
func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// Limit creates a fixed-window rate limiting middleware keyed on client IP
func (rl *RateLimiter) Limit(keyPrefix string, maxRequests int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl.redis == nil || maxRequests <= 0 {
			return c.Next()
		}

		key := fmt.Sprintf("ratelimit:%s:%s", keyPrefix, c.IP())
		ctx := context.Background()

		count, err := rl.redis.Incr(ctx, key).Result()
		if err != nil {
			log.Printf("Rate limiter unavailable: %v", err)
			return c.Next()
		}

		if count == 1 {
			rl.redis.Expire(ctx, key, window)
		}

		if count > int64(maxRequests) {
			ttl, _ := rl.redis.TTL(ctx, key).Result()
			c.Set("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
			return response.RateLimited(c)
		}

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequests))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", maxRequests-int(count)))

		return c.Next()
	}
}

// FretboardLimit limits fretboard and share endpoints per minute
func (rl *RateLimiter) FretboardLimit(maxPerMin int) fiber.Handler {
	return rl.Limit("fretboard", maxPerMin, time.Minute)
}

// CheatsheetLimit limits cheatsheet job starts per hour
func (rl *RateLimiter) CheatsheetLimit(maxPerHour int) fiber.Handler {
	return rl.Limit("cheatsheet", maxPerHour, time.Hour)
}
