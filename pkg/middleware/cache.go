package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	appcache "github.com/feyabloom/studio/pkg/cache"
)

const (
	// DefaultMaxBodyBytes 超过该大小的响应不缓存.
	DefaultMaxBodyBytes = 1 << 20
	defaultCacheTTL     = 30 * time.Second
	bypassHeader        = "X-Cache-Bypass"
)

// CacheOption 配置响应缓存.
type CacheOption func(*responseCache)

// WithCacheTTL 设置缓存时间.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(r *responseCache) { r.ttl = ttl }
}

// WithVaryHeaders 让指定请求头参与缓存键.
func WithVaryHeaders(headers ...string) CacheOption {
	return func(r *responseCache) {
		r.vary = append([]string(nil), headers...)
		sort.Strings(r.vary)
	}
}

// WithMaxBodyBytes 设置可缓存的最大响应体，0 表示不限制.
func WithMaxBodyBytes(n int) CacheOption {
	return func(r *responseCache) { r.maxBody = n }
}

type responseCache struct {
	cache   *appcache.Cache
	ttl     time.Duration
	vary    []string
	maxBody int
}

// responseCacheEntry 序列化存储结构.
type responseCacheEntry struct {
	Status   int               `json:"s"`
	Header   map[string]string `json:"h,omitempty"`
	Body     []byte            `json:"b,omitempty"`
	ETag     string            `json:"e,omitempty"`
	StoredAt int64             `json:"t"` // unix nano, 用于 Age
}

// CacheMiddleware 缓存 GET/HEAD 的 200 响应，公开图库使用.
//
// 缓存实例的命名空间决定失效范围：与图库查询共用命名空间时，项目保存后的 Clear 同时清掉响应缓存.
// 命中时写入 X-Cache: HIT 与 Age；If-None-Match 与缓存 ETag 相同时返回 304.
// 响应带 Cache-Control: no-store 或 private 时不缓存；任何缓存错误都不影响请求.
//
//	c := cache.NewCache(kvClient, cache.WithNamespace(service.GalleryNamespace))
//	gallery.Use(middleware.CacheMiddleware(c, middleware.WithCacheTTL(time.Minute)))
func CacheMiddleware(c *appcache.Cache, opts ...CacheOption) gin.HandlerFunc {
	if c == nil {
		panic("CacheMiddleware: Cache cannot be nil")
	}

	rc := &responseCache{cache: c, ttl: defaultCacheTTL, maxBody: DefaultMaxBodyBytes}
	for _, o := range opts {
		o(rc)
	}

	return rc.handle
}

func (rc *responseCache) handle(c *gin.Context) {
	if rc.ttl <= 0 || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) ||
		c.GetHeader(bypassHeader) != "" {
		c.Next()
		return
	}

	key := rc.key(c)
	if rc.serve(c, key) {
		return
	}

	bw := &bodyCaptureWriter{ResponseWriter: c.Writer, max: rc.maxBody}
	c.Writer = bw

	c.Next()

	rc.store(c, key, bw)
}

// key 方法 + 路由 + 排序后的 query + vary 请求头.
func (rc *responseCache) key(c *gin.Context) string {
	var b strings.Builder

	b.WriteString(c.Request.Method)
	b.WriteByte(':')

	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}

	b.WriteString(route)

	// 路由参数，例如 /gallery/:id
	for _, p := range c.Params {
		b.WriteByte('/')
		b.WriteString(p.Value)
	}

	if q := c.Request.URL.Query(); len(q) > 0 {
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}

		sort.Strings(keys)
		b.WriteByte('?')

		for i, k := range keys {
			if i > 0 {
				b.WriteByte('&')
			}

			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(strings.Join(q[k], ","))
		}
	}

	for _, h := range rc.vary {
		b.WriteByte('|')
		b.WriteString(h)
		b.WriteByte('=')
		b.WriteString(c.GetHeader(h))
	}

	return "rc:" + strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}

// serve 尝试从缓存返回响应，成功时返回 true.
func (rc *responseCache) serve(c *gin.Context, key string) bool {
	entry, err := appcache.Get[responseCacheEntry](c.Request.Context(), rc.cache, key)
	if err != nil {
		return false
	}

	h := c.Writer.Header()
	for k, v := range entry.Header {
		h.Set(k, v)
	}

	h.Set("Age", fmt.Sprintf("%.0f", time.Since(time.Unix(0, entry.StoredAt)).Seconds()))
	h.Set("X-Cache", "HIT")

	if entry.ETag != "" {
		h.Set("ETag", entry.ETag)

		if c.GetHeader("If-None-Match") == entry.ETag {
			c.AbortWithStatus(http.StatusNotModified)
			return true
		}
	}

	c.Status(entry.Status)

	if c.Request.Method != http.MethodHead {
		_, _ = c.Writer.Write(entry.Body)
	}

	c.Abort()

	return true
}

func (rc *responseCache) store(c *gin.Context, key string, bw *bodyCaptureWriter) {
	if c.Writer.Status() != http.StatusOK || bw.truncated {
		return
	}

	cc := strings.ToLower(c.Writer.Header().Get("Cache-Control"))
	if strings.Contains(cc, "no-store") || strings.Contains(cc, "private") {
		return
	}

	body := bytes.Clone(bw.buf.Bytes())
	hdr := make(map[string]string, len(c.Writer.Header()))

	for k, v := range c.Writer.Header() {
		if len(v) > 0 && k != "X-Cache" {
			hdr[k] = v[0]
		}
	}

	etag := c.Writer.Header().Get("ETag")
	if etag == "" {
		etag = fmt.Sprintf("%q", strconv.FormatUint(xxhash.Sum64(body), 16))
	}

	entry := responseCacheEntry{Status: http.StatusOK, Header: hdr, Body: body, ETag: etag, StoredAt: time.Now().UnixNano()}

	go func(ctx context.Context) {
		_ = appcache.Set(ctx, rc.cache, key, entry, rc.ttl)
	}(context.WithoutCancel(c.Request.Context()))
}

// bodyCaptureWriter 包装响应写入用于捕获 body，超过 max 时标记截断.
type bodyCaptureWriter struct {
	gin.ResponseWriter

	buf       bytes.Buffer
	max       int
	truncated bool
}

// WriteHeader 在响应头发出前写入 MISS 标记.
func (w *bodyCaptureWriter) WriteHeader(code int) {
	w.Header().Set("X-Cache", "MISS")
	w.ResponseWriter.WriteHeader(code)
}

// Write 捕获响应体.
func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	if !w.truncated {
		if w.max > 0 && w.buf.Len()+len(b) > w.max {
			w.truncated = true
			w.buf.Reset()
		} else {
			w.buf.Write(b)
		}
	}

	return w.ResponseWriter.Write(b)
}
