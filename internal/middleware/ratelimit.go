package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

// CheckRateLimit checks if a resource has exceeded its rate limit.
// Returns true if allowed, false if limit exceeded.
func CheckRateLimit(ctx context.Context, rdb redis.Cmdable, resource, id string, limit int, window time.Duration) (bool, error) {
	if rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	// INCR and set EXPIRE if new
	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return cnt <= int64(limit), nil
}

// RateLimiter enforces a fixed-window request budget per client IP in Redis.
type RateLimiter struct {
	rdb    redis.Cmdable
	limit  int
	window time.Duration
	policy FailPolicy
	logger *slog.Logger
}

// NewRateLimiter creates a RateLimiter. It defaults to the FailOpen policy.
func NewRateLimiter(rdb redis.Cmdable, limit int, window time.Duration, logger *slog.Logger) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RateLimiter{rdb: rdb, limit: limit, window: window, policy: FailOpen, logger: logger}
}

// WithPolicy returns a copy of the limiter using policy.
func (rl *RateLimiter) WithPolicy(policy FailPolicy) *RateLimiter {
	cp := *rl
	cp.policy = policy
	return &cp
}

// Handler returns a Fiber middleware. Requests under the same name share a budget;
// an empty name keys by request path.
func (rl *RateLimiter) Handler(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		resource := name
		if resource == "" {
			resource = c.Path()
		}
		id := "ip:" + c.IP()

		allowed, err := CheckRateLimit(c.UserContext(), rl.rdb, resource, id, rl.limit, rl.window)
		if err != nil {
			if rl.policy == FailClosed {
				rl.logger.WarnContext(c.UserContext(), "rate limit fail-closed",
					slog.String("path", c.Path()),
					slog.String("resource", resource),
					slog.Any("error", err))
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			rl.logger.DebugContext(c.UserContext(), "rate limit store unavailable, allowing request", slog.Any("error", err))
			return c.Next()
		}

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		}
		return c.Next()
	}
}
