package configs

import (
	"time"

	"github.com/spf13/viper"
)

// MetricsConfig Metrics相关配置.
type MetricsConfig struct {
	Enabled         bool              `mapstructure:"enabled"`          // 是否启用Metrics
	ServiceName     string            `mapstructure:"service_name"`     // 服务名称
	ServiceVersion  string            `mapstructure:"service_version"`  // 服务版本
	ExporterType    string            `mapstructure:"exporter_type"    rule:"oneof=prometheus"`
	Endpoint        string            `mapstructure:"endpoint"`         // 独立监听地址，为空时挂在主服务的 /metrics
	Path            string            `mapstructure:"path"`             // 指标路径
	Pprof           bool              `mapstructure:"pprof"`            // 是否暴露 /debug/pprof
	CollectInterval time.Duration     `mapstructure:"collect_interval"` // 收集间隔
	RuntimeMetrics  bool              `mapstructure:"runtime_metrics"`  // 是否收集运行时指标
	Labels          map[string]string `mapstructure:"labels"`           // 默认标签
}

// setDefaults 设置Metrics配置的默认值.
func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.service_name", "studio")
	v.SetDefault("metrics.service_version", AppVersion)
	v.SetDefault("metrics.exporter_type", "prometheus")
	v.SetDefault("metrics.endpoint", "")
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.pprof", false)
	v.SetDefault("metrics.collect_interval", "15s")
	v.SetDefault("metrics.runtime_metrics", true)
	v.SetDefault("metrics.labels", map[string]string{
		"service": "studio",
	})
}
