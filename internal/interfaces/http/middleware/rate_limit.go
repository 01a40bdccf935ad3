package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainerrors "github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/errors"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/interfaces/http/response"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/logger"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/redis"
)

// RateLimiter is a fixed-window counter backed by Redis, constructed and
// injected by the server composition rather than reached through globals so
// tests can build isolated instances.
type RateLimiter struct {
	limit  int64
	window time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{limit: int64(limit), window: window}
}

// Middleware counts requests per principal (falling back to client IP for
// unauthenticated routes) and rejects the overflow with RATE_LIMITED.
// A Redis outage fails open: limiting is a protection, not a dependency.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		subject := c.ClientIP()
		if principal, ok := GetPrincipal(c); ok {
			subject = principal.UserID
		}
		window := time.Now().Unix() / int64(rl.window.Seconds())
		key := fmt.Sprintf("ratelimit:%s:%d", subject, window)

		count, err := redis.Incr(ctx, key)
		if err != nil {
			logger.Warn(ctx, "rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := redis.Expire(ctx, key, rl.window); err != nil {
				logger.Warn(ctx, "failed to expire rate limit window", zap.Error(err))
			}
		}

		if count > rl.limit {
			response.AbortError(c, domainerrors.RateLimited("rate limit exceeded, retry later"))
			return
		}

		c.Next()
	}
}
