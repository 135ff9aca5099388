package middleware

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"time"

	"marketplace/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

//go:embed rate_limiter.lua
var luaScript string

var tokenBucket = redis.NewScript(luaScript)

// RateLimiterConfig holds rate limiter configuration
type RateLimiterConfig struct {
	Scope      string  // Separates buckets of different limiters
	Capacity   int     // Maximum number of tokens (max requests)
	RefillRate float64 // Tokens refilled per second
}

// DefaultRateLimiterConfig returns default rate limiter settings
// 10 requests per second with burst capacity of 20
func DefaultRateLimiterConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		Scope:      "api",
		Capacity:   20,   // Can burst up to 20 requests
		RefillRate: 10.0, // Refills 10 tokens per second
	}
}

// take runs the token bucket for key. Redis errors fail open.
func take(ctx context.Context, redisClient *redis.Client, key string, config *RateLimiterConfig) bool {
	result, err := tokenBucket.Run(ctx, redisClient, []string{key},
		config.Capacity,
		config.RefillRate,
		time.Now().UnixMilli(),
	).Int64()
	if err != nil {
		logrus.WithError(err).Error("Failed to execute rate limiter Lua script")
		return true
	}
	return result == 1
}

func rejectRateLimited(c *gin.Context, config *RateLimiterConfig) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":       "Rate limit exceeded",
		"message":     fmt.Sprintf("Maximum %g requests per second allowed", config.RefillRate),
		"retry_after": fmt.Sprintf("%.1f seconds", 1.0/config.RefillRate),
	})
}

// RateLimiterMiddleware implements Token Bucket algorithm using Redis + Lua
// script, one bucket per authenticated user.
func RateLimiterMiddleware(redisClient *redis.Client, config *RateLimiterConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.GetUserIDFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized - user_id not found in context",
			})
			return
		}

		if !take(c.Request.Context(), redisClient, UserRateLimiterKey(config.Scope, userID), config) {
			rejectRateLimited(c, config)
			return
		}
		c.Next()
	}
}

// IPRateLimiterMiddleware limits unauthenticated routes per client IP.
func IPRateLimiterMiddleware(redisClient *redis.Client, config *RateLimiterConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := IPRateLimiterKey(config.Scope, c.ClientIP())
		if !take(c.Request.Context(), redisClient, key, config) {
			rejectRateLimited(c, config)
			return
		}
		c.Next()
	}
}

// RouteRateLimiterMiddleware applies an extra per-user limit to the routes
// named in limits, keyed by "METHOD /full/path". Other routes pass through.
func RouteRateLimiterMiddleware(redisClient *redis.Client, limits map[string]*RateLimiterConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		config, ok := limits[c.Request.Method+" "+c.FullPath()]
		if !ok {
			c.Next()
			return
		}

		userID, err := auth.GetUserIDFromContext(c)
		if err != nil {
			c.Next()
			return
		}

		if !take(c.Request.Context(), redisClient, UserRateLimiterKey(config.Scope, userID), config) {
			rejectRateLimited(c, config)
			return
		}
		c.Next()
	}
}

// UserRateLimiterKey builds the bucket key for a user
func UserRateLimiterKey(scope, userID string) string {
	return fmt.Sprintf("rate_limiter:%s:user:%s", scope, userID)
}

func IPRateLimiterKey(scope, ip string) string {
	return fmt.Sprintf("rate_limiter:%s:ip:%s", scope, ip)
}
