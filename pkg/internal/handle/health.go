package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	ctxPkg "github.com/feyabloom/studio/pkg/context"
)

const timeout = 2 * time.Second

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// health 以统一格式返回组件的健康状态.
func health(c *gin.Context, component string, hc healthChecker, ok bool) {
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": component + " client not initialized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if err := hc.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": component, "status": "ok"})
}

// HealthDB 数据库健康检查.
//
//	@Summary	数据库健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/v1/health/db [get]
func HealthDB(c *gin.Context) {
	dbc := ctxPkg.GetDBClient(c.Request.Context())
	health(c, "db", dbc, dbc != nil && dbc.DB != nil)
}

// HealthStorage 对象存储健康检查.
//
//	@Summary	对象存储健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/v1/health/storage [get]
func HealthStorage(c *gin.Context) {
	store := ctxPkg.GetObjectStore(c.Request.Context())
	health(c, "storage", store, store != nil)
}

// HealthMQ 消息队列健康检查.
func HealthMQ(c *gin.Context) {
	mqc := ctxPkg.GetMQClient(c.Request.Context())
	health(c, "mq", mqc, mqc != nil)
}

// HealthKV 键值存储健康检查.
func HealthKV(c *gin.Context) {
	kvc := ctxPkg.GetKVClient(c.Request.Context())
	health(c, "kv", kvc, kvc != nil)
}

// componentStatus 单个组件的检查结果.
type componentStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type probe struct {
	name string
	hc   healthChecker
	ok   bool
}

// HealthAll 并发检查所有组件，任一组件不健康时返回 503.
//
//	@Summary	整体健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]any
//	@Failure	503	{object}	map[string]any
//	@Router		/api/v1/health [get]
func HealthAll(c *gin.Context) {
	ctx := c.Request.Context()

	dbc := ctxPkg.GetDBClient(ctx)
	store := ctxPkg.GetObjectStore(ctx)
	mqc := ctxPkg.GetMQClient(ctx)
	kvc := ctxPkg.GetKVClient(ctx)

	probes := []probe{
		{"db", dbc, dbc != nil && dbc.DB != nil},
		{"storage", store, store != nil},
		{"mq", mqc, mqc != nil},
		{"kv", kvc, kvc != nil},
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make([]componentStatus, len(probes))

	var g errgroup.Group

	for i, p := range probes {
		g.Go(func() error {
			if !p.ok {
				results[i] = componentStatus{Status: "unhealthy", Error: "not initialized"}
				return nil
			}

			results[i] = componentStatus{Status: "ok"}
			if err := p.hc.HealthCheck(ctx); err != nil {
				results[i] = componentStatus{Status: "unhealthy", Error: err.Error()}
			}

			return nil
		})
	}

	_ = g.Wait()

	status, code := "ok", http.StatusOK
	components := make(map[string]componentStatus, len(probes))

	for i, p := range probes {
		components[p.name] = results[i]
		if results[i].Status != "ok" {
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{"status": status, "components": components})
}
