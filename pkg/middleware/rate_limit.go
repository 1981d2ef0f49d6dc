package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/feyabloom/studio/pkg/configs"
)

const (
	// limiterIdle 超过该时间未使用的 limiter 会被回收.
	limiterIdle = 10 * time.Minute
	// sweepEvery 每处理这么多请求检查一次闲置 limiter.
	sweepEvery = 1024
)

// RateLimitMiddleware 返回一个基于配置的限流中间件，用于管理端上传等写操作.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return newLimiterSet(cfg.RPS, cfg.Burst, cfg.Key).handler("rate limit exceeded, please try again later")
}

// ContactRateLimit 联系表单的独立限流，按客户端 IP 计算，与全局开关无关.
func ContactRateLimit(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if cfg.ContactRPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return newLimiterSet(cfg.ContactRPS, max(cfg.ContactBurst, 1), "ip").handler("Too many messages, please try again later")
}

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// limiterSet 按键维护令牌桶，mode 为 global 时所有请求共享一个.
type limiterSet struct {
	rps   rate.Limit
	burst int
	mode  string

	mu      sync.Mutex
	entries map[string]*limiterEntry
	hits    int
	now     func() time.Time
}

func newLimiterSet(rps float64, burst int, mode string) *limiterSet {
	return &limiterSet{
		rps:     rate.Limit(rps),
		burst:   burst,
		mode:    strings.ToLower(strings.TrimSpace(mode)),
		entries: map[string]*limiterEntry{},
		now:     time.Now,
	}
}

func (s *limiterSet) key(c *gin.Context) string {
	var key string

	switch {
	case s.mode == "" || s.mode == "global":
		return "global"
	case s.mode == "user":
		key = GetUser(c)
	case strings.HasPrefix(s.mode, "header:"):
		key = c.GetHeader(strings.TrimPrefix(s.mode, "header:"))
	}

	if key == "" {
		key = c.ClientIP()
	}

	return key
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	s.hits++
	if s.hits%sweepEvery == 0 {
		for k, e := range s.entries {
			if now.Sub(e.seen) > limiterIdle {
				delete(s.entries, k)
			}
		}
	}

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(s.rps, s.burst)}
		s.entries[key] = e
	}

	e.seen = now

	return e.lim
}

func (s *limiterSet) handler(msg string) gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(math.Ceil(1 / float64(s.rps))))

	return func(c *gin.Context) {
		if !s.get(s.key(c)).Allow() {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": msg})

			return
		}

		c.Next()
	}
}
