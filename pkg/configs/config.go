// Package configs 管理应用程序配置，包括数据库、对象存储、消息队列、邮件和上传策略等配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
//
// Example accessing storage config:
//
//	storageConfig := configs.GetConfig().Storage
//	fmt.Println("Endpoint:", storageConfig.GetEndpointURL())
//	fmt.Println("Buckets:", storageConfig.Buckets)
//
// Example accessing upload profiles:
//
//	profile, ok := configs.GetConfig().Upload.Profile("image")
//	if ok {
//		fmt.Println(profile.MaxFileSize)
//	}
//
// 环境变量使用 STUDIO_ 前缀覆盖配置，例如 STUDIO_SERVER_PORT=9000.
package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppVersion 应用版本.
const AppVersion = "0.3.0"

// EnvPrefix 环境变量前缀.
const EnvPrefix = "STUDIO"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Server         ServerConfig         `mapstructure:"server"`          // ServerConfig 服务器配置
		Log            LogConfig            `mapstructure:"log"`             // LogConfig 日志相关配置
		DB             DBConfig             `mapstructure:"db"`              // DBConfig 数据库配置
		Storage        StorageConfig        `mapstructure:"storage"`         // StorageConfig 对象存储配置
		KV             KVConfig             `mapstructure:"kv"`              // KVConfig 键值存储配置
		MQ             MQConfig             `mapstructure:"mq"`              // MQConfig 消息队列配置
		Auth           AuthConfig           `mapstructure:"auth"`            // AuthConfig 认证配置
		RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`      // RateLimitConfig 限流配置
		CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"` // CircuitBreakerConfig 熔断配置
		Metrics        MetricsConfig        `mapstructure:"metrics"`         // MetricsConfig 监控配置
		Tracing        TracingConfig        `mapstructure:"tracing"`         // TracingConfig 追踪配置
		Events         EventsConfig         `mapstructure:"events"`          // EventsConfig 事件发布开关
		Mail           MailConfig           `mapstructure:"mail"`            // MailConfig 邮件中继配置
		Upload         UploadConfig         `mapstructure:"upload"`          // UploadConfig 上传策略配置
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
	mu       sync.RWMutex
)

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
// path 可以是配置文件，也可以是目录；目录下没有配置文件时只使用默认值和环境变量.
func InitConfig(path string) error {
	// .env 只用于补充环境变量，不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	setAllDefaults(v)

	hasFile := false

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		v.SetConfigFile(path)

		hasFile = true
	} else {
		exts := []string{"yaml", "yml", "json", "toml", "env", "dotenv"}

		for _, dir := range []string{path, filepath.Join(path, "configs")} {
			for _, ext := range exts {
				cfg := filepath.Join(dir, "config."+ext)
				if _, err := os.Stat(cfg); err == nil {
					v.SetConfigFile(cfg)

					hasFile = true

					break
				}
			}

			if hasFile {
				break
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if hasFile {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return err
	}

	mu.Lock()
	globalConfig = cfg
	appViper = v
	mu.Unlock()

	if hasFile {
		reloadConfigs(v, cfg.Server.ReloadConfig)
	}

	return nil
}

// Default 返回仅包含默认值的配置，CLI 与测试在未加载配置文件时使用.
func Default() AppConfig {
	v := viper.New()
	setAllDefaults(v)

	var cfg AppConfig

	_ = v.Unmarshal(&cfg)

	return cfg
}

// SetConfig 替换全局配置.
func SetConfig(cfg AppConfig) {
	mu.Lock()
	defer mu.Unlock()

	globalConfig = cfg
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var (
		serverConfig   ServerConfig
		logConfig      LogConfig
		dbConfig       DBConfig
		storageConfig  StorageConfig
		kvConfig       KVConfig
		mqConfig       MQConfig
		authConfig     AuthConfig
		rateConfig     RateLimitConfig
		breakerConfig  CircuitBreakerConfig
		metricsConfig  MetricsConfig
		tracingConfig  TracingConfig
		eventsConfig   EventsConfig
		mailConfig     MailConfig
		uploadConfig   UploadConfig
	)

	serverConfig.setDefaults(v)
	logConfig.setDefaults(v)
	dbConfig.setDefaults(v)
	storageConfig.setDefaults(v)
	kvConfig.setDefaults(v)
	mqConfig.setDefaults(v)
	authConfig.setDefaults(v)
	rateConfig.setDefaults(v)
	breakerConfig.setDefaults(v)
	metricsConfig.setDefaults(v)
	tracingConfig.setDefaults(v)
	eventsConfig.setDefaults(v)
	mailConfig.setDefaults(v)
	uploadConfig.setDefaults(v)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload {
		return
	}
	// 启用配置热重载
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)

		var cfg AppConfig
		if err := v.Unmarshal(&cfg); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
			return
		}

		if err := Validate(&cfg); err != nil {
			fmt.Printf("Rejected reloaded config: %v\n", err)
			return
		}

		SetConfig(cfg)
	})
	v.WatchConfig()
}

// ErrInvalidConfig 配置校验失败.
var ErrInvalidConfig = errors.New("invalid config")

// GetConfig 返回全局配置实例.
func GetConfig() *AppConfig {
	mu.RLock()
	defer mu.RUnlock()

	cfg := globalConfig

	return &cfg
}

// GetViper 返回全局 Viper 实例，未初始化时为 nil.
func GetViper() *viper.Viper {
	mu.RLock()
	defer mu.RUnlock()

	return appViper
}
