package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/kimyounil1/honey-pot-sub000/internal/logger"
)

// Counter is the part of the redis client the limiter needs.
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimit allows at most qps requests per client IP in each one-second
// window. Redis failures let the request through.
func RateLimit(counter Counter, qps int) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		key := "rate_limit:" + ip
		ctx := c.Request.Context()

		count, err := counter.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("ratelimit.unavailable", "ip", ip, "err", err)
			c.Next()
			return
		}
		if count == 1 {
			if err := counter.Expire(ctx, key, time.Second).Err(); err != nil {
				logger.Warn("ratelimit.expire_failed", "key", key, "err", err)
			}
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(qps))
		if count > int64(qps) {
			logger.Info("ratelimit.rejected", "ip", ip, "count", count)
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests", "qps": qps})
			return
		}
		c.Next()
	}
}
