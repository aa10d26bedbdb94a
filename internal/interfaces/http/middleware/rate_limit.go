package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/ontariodoctor/backend/internal/interfaces/http/response"
	"golang.org/x/time/rate"
)

// maxTrackedClients 同时跟踪的客户端 IP 上限，超出后淘汰最久未访问者
const maxTrackedClients = 4096

// RateLimiter 按客户端 IP 的令牌桶限流
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
}

// NewRateLimiter 创建限流器，RequestsPerSecond <= 0 时不限流
func NewRateLimiter(cfg *config.RateLimitConfig) *RateLimiter {
	cache, err := lru.New[string, *rate.Limiter](maxTrackedClients)
	if err != nil {
		// 仅在 size <= 0 时出错
		panic(err)
	}
	return &RateLimiter{
		limit:    rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
		limiters: cache,
	}
}

func (r *RateLimiter) limiterFor(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.limiters.Get(key); ok {
		return l
	}
	l := rate.NewLimiter(r.limit, r.burst)
	r.limiters.Add(key, l)
	return l
}

// Allow 客户端是否还有令牌
func (r *RateLimiter) Allow(key string) bool {
	if r.limit <= 0 {
		return true
	}
	return r.limiterFor(key).Allow()
}

// Middleware 超限返回 429
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	logger := log.NewModuleLogger("http", "rate_limit")
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !r.Allow(ip) {
			logger.Warn("Rate limit exceeded", append(log.LogCtxFromContext(c.Request.Context()), "client_ip", ip, "path", c.FullPath())...)
			response.AbortWithError(c, http.StatusTooManyRequests, response.CodeRateLimited, "too many requests")
			return
		}
		c.Next()
	}
}
