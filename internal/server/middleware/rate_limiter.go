package middleware

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/lk2023060901/doc-qa-backend/internal/pkg/errors"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	pkgredis "github.com/lk2023060901/doc-qa-backend/internal/pkg/redis"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/response"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultKeyPrefix = "docqa:rate_limit"

// RateLimiterConfig 限流配置
type RateLimiterConfig struct {
	// 时间窗口内允许的最大请求数
	MaxRequests int
	// 时间窗口
	Window time.Duration
	// 键前缀
	Prefix string
}

// 滑动窗口，分数为毫秒时间戳，成员唯一以免同一毫秒内的请求被合并
var slidingWindow = goredis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local current = redis.call('ZCARD', key)

if current < limit then
	redis.call('ZADD', key, now, ARGV[4])
	redis.call('PEXPIRE', key, window)
	return {1, limit - current - 1, now + window}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')[2]
return {0, 0, tonumber(oldest) + window}
`)

// RateLimiter 基于 Redis 的滑动窗口限流，按路由和客户端 IP 计数。
// Redis 出错时放行请求。
func RateLimiter(rdb *pkgredis.Client, cfg RateLimiterConfig, log *logger.Logger) gin.HandlerFunc {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Prefix == "" {
		cfg.Prefix = defaultKeyPrefix
	}
	log = logger.OrDefault(log).Named("rate_limiter")

	return func(c *gin.Context) {
		key := buildRateLimitKey(c, cfg.Prefix)
		now := time.Now().UnixMilli()

		result, err := rdb.Run(c.Request.Context(), slidingWindow, []string{key},
			now, cfg.Window.Milliseconds(), cfg.MaxRequests, uuid.NewString())
		if err != nil {
			log.Error("rate limiter error", zap.Error(err), zap.String("key", key))
			c.Next()
			return
		}

		allowed, remaining, resetAt, err := parseResult(result)
		if err != nil {
			log.Error("rate limiter error", zap.Error(err), zap.String("key", key))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt/1000, 10))

		if !allowed {
			retryAfter := (resetAt - now + 999) / 1000
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.ErrorWithCode(c, apperrors.ErrTooManyRequests,
				fmt.Sprintf("please try again in %d seconds", retryAfter))
			c.Abort()
			return
		}

		c.Next()
	}
}

func buildRateLimitKey(c *gin.Context, prefix string) string {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return fmt.Sprintf("%s:%s:%s:%s", prefix, c.Request.Method, route, clientIP(c.ClientIP()))
}

// clientIP 去掉 IPv6 zone，无法解析时归为 unknown
func clientIP(ip string) string {
	if idx := strings.IndexByte(ip, '%'); idx != -1 {
		ip = ip[:idx]
	}
	if net.ParseIP(ip) == nil {
		return "unknown"
	}
	return ip
}

func parseResult(result interface{}) (allowed bool, remaining, resetAt int64, err error) {
	values, ok := result.([]interface{})
	if !ok || len(values) != 3 {
		return false, 0, 0, fmt.Errorf("invalid rate limit result: %v", result)
	}

	nums := make([]int64, 3)
	for i, v := range values {
		n, ok := v.(int64)
		if !ok {
			return false, 0, 0, fmt.Errorf("invalid rate limit result: %v", result)
		}
		nums[i] = n
	}
	return nums[0] == 1, nums[1], nums[2], nil
}
