// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集 HTTP、对象存储、上传、联系表单等指标.
//
// Example:
//
//	import "github.com/feyabloom/studio/pkg/metrics"
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// 记录指标
//	metrics.StorageOps.WithLabelValues("list", "ok").Inc()
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/feyabloom/studio/pkg/configs"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 活跃连接数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of active connections",
		},
	)

	// StorageOps 对象存储操作计数，result 为 ok 或 error.
	StorageOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_storage_ops_total",
			Help: "Object storage operations by operation and result",
		},
		[]string{"op", "result"},
	)

	// UploadBytes 成功上传的字节数.
	UploadBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_upload_bytes_total",
			Help: "Bytes uploaded to object storage by bucket",
		},
		[]string{"bucket"},
	)

	// ContactMessages 联系表单提交结果，result 为 sent、invalid 或 failed.
	ContactMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_contact_messages_total",
			Help: "Contact form submissions by result",
		},
		[]string{"result"},
	)

	// MoveIntents 移动意图的状态流转次数.
	MoveIntents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_move_intents_total",
			Help: "Move intent transitions by status",
		},
		[]string{"status"},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
	initOnce sync.Once
)

// InitMetrics 初始化Metrics，重复调用只注册一次.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	initOnce.Do(func() {
		if config.RuntimeMetrics {
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}

		registry.MustRegister(
			RequestCounter, RequestDuration, ActiveConnections,
			StorageOps, UploadBytes, ContactMessages, MoveIntents,
		)
	})

	return nil
}

// StartMetricsServer 在引擎上挂载 Metrics 与 pprof 端点.
func StartMetricsServer(config configs.MetricsConfig, debugEngine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	path := config.Path
	if path == "" {
		path = "/metrics"
	}

	debugEngine.GET(path, gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if config.Pprof {
		debugEngine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}

// Result 把 error 转换为指标标签.
func Result(err error) string {
	if err != nil {
		return "error"
	}

	return "ok"
}
