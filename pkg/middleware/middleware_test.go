package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/feyabloom/studio/pkg/configs"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(e *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	return w
}

// TestContactRateLimit 测试联系表单按 IP 限流并返回 Retry-After.
func TestContactRateLimit(t *testing.T) {
	e := gin.New()
	e.POST("/contact", ContactRateLimit(configs.RateLimitConfig{ContactRPS: 0.5, ContactBurst: 2}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/contact", nil).Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/contact", nil).Code)

	w := serve(e, http.MethodPost, "/contact", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Too many messages")
}

// TestRateLimitByHeader 测试按请求头分桶，不同的键互不影响.
func TestRateLimitByHeader(t *testing.T) {
	e := gin.New()
	e.GET("/", RateLimitMiddleware(configs.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1, Key: "header:X-Tenant"}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	a := map[string]string{"X-Tenant": "a"}
	b := map[string]string{"X-Tenant": "b"}

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/", a).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodGet, "/", a).Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/", b).Code)
}

// TestRateLimitDisabled 测试关闭限流后请求不受限制.
func TestRateLimitDisabled(t *testing.T) {
	e := gin.New()
	e.GET("/", RateLimitMiddleware(configs.RateLimitConfig{RPS: 1, Burst: 1}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for range 5 {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/", nil).Code)
	}
}

func TestLimiterSetSweepsIdle(t *testing.T) {
	s := newLimiterSet(1, 1, "ip")
	now := time.Now()
	s.now = func() time.Time { return now }

	s.get("old")

	now = now.Add(2 * limiterIdle)
	for i := 0; i < sweepEvery; i++ {
		s.get("new")
	}

	_, ok := s.entries["old"]
	assert.False(t, ok)
	assert.Len(t, s.entries, 1)
}

// TestContactCORS 测试联系表单的预检响应与 CORS 头.
func TestContactCORS(t *testing.T) {
	e := gin.New()
	g := e.Group("/contact", ContactCORS())
	g.OPTIONS("", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	g.POST("", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(e, http.MethodOptions, "/contact", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, ContactAllowHeaders, w.Header().Get("Access-Control-Allow-Headers"))

	w = serve(e, http.MethodPost, "/contact", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

// TestCircuitBreakerOpens 测试连续 5xx 后熔断器打开并直接返回 503.
func TestCircuitBreakerOpens(t *testing.T) {
	calls := 0

	e := gin.New()
	e.POST("/", CircuitBreakerMiddleware("test", configs.CircuitBreakerConfig{
		Enabled:           true,
		FailureRate:       0.5,
		MinRequests:       2,
		IntervalSeconds:   60,
		TimeoutSeconds:    60,
		MaxRequestsInHalf: 1,
	}), func(c *gin.Context) {
		calls++
		c.Status(http.StatusBadGateway)
	})

	assert.Equal(t, http.StatusBadGateway, serve(e, http.MethodPost, "/", nil).Code)
	assert.Equal(t, http.StatusBadGateway, serve(e, http.MethodPost, "/", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(e, http.MethodPost, "/", nil).Code)
	assert.Equal(t, 2, calls)
}

// TestCORSMiddlewareOrigins 测试配置了来源列表时只回显允许的来源.
func TestCORSMiddlewareOrigins(t *testing.T) {
	e := gin.New()
	e.Use(CORSMiddleware(configs.ServerConfig{CORSOrigins: []string{"https://studio.example"}}))
	e.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(e, http.MethodGet, "/", map[string]string{"Origin": "https://studio.example"})
	assert.Equal(t, "https://studio.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(e, http.MethodGet, "/", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
