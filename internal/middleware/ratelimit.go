package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/petrkov/shopping-list/internal/config"
)

// NewRateLimiter returns a fixed-window request limiter backed by Redis.
// Requests are counted per subject per window; the subject is the
// authenticated user when SessionAuth ran earlier in the chain, otherwise
// the client IP. With a nil Redis client (or the limiter disabled) it
// degrades to a passthrough, and Redis errors fail open so an unavailable
// Redis never takes the list API down with it.
func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if cfg.Window < time.Second {
		cfg.Window = time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			window := time.Now().Unix() / int64(cfg.Window/time.Second)
			key := fmt.Sprintf("%s:%s:%d", cfg.Prefix, limitSubject(c), window)

			ctx := c.Request().Context()
			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c)
			}
			if n == 1 {
				// First hit in this window owns setting the expiry.
				_ = rdb.Expire(ctx, key, cfg.Window).Err()
			}

			remaining := int64(cfg.Limit) - n
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(cfg.Limit) {
				retry := int(cfg.Window/time.Second) - int(time.Now().Unix()%int64(cfg.Window/time.Second))
				c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"message":     "rate limit exceeded",
					"retry_after": retry,
				})
			}
			return next(c)
		}
	}
}

// limitSubject picks the key the limiter counts against.
func limitSubject(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok && v != "" {
		return "user:" + v
	}
	if ip := c.RealIP(); ip != "" {
		return "ip:" + ip
	}
	return "anon"
}
