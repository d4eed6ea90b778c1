package middleware

import (
	"strings"
	"sync"
	"time"

	"simplelink/internal/apperrors"
	"simplelink/internal/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// 超过该时间未出现的客户端限流器会被回收
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter 按客户端 IP 维护令牌桶
type ipLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newIPLimiter(limitConfig *config.Limit) *ipLimiter {
	return &ipLimiter{
		clients: make(map[string]*clientLimiter),
		// requests_per_minute 换算为每秒速率
		limit: rate.Limit(float64(limitConfig.Requests) / 60),
		burst: int(limitConfig.Burst),
		now:   time.Now,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > limiterIdleTTL {
		for key, client := range l.clients {
			if now.Sub(client.lastSeen) > limiterIdleTTL {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	client, ok := l.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = client
	}
	client.lastSeen = now
	return client.limiter.AllowN(now, 1)
}

// RateLimit 按客户端 IP 限流
func RateLimit(limitConfig *config.Limit) gin.HandlerFunc {
	if !limitConfig.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	limiter := newIPLimiter(limitConfig)
	return func(c *gin.Context) {
		// 跳过特定路径
		for _, path := range limitConfig.SkipPaths {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		if !limiter.allow(c.ClientIP()) {
			_ = c.Error(apperrors.ErrTooManyRequests)
			c.Abort()
			return
		}

		c.Next()
	}
}
