package configs

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// StorageDriver 对象存储驱动类型.
type StorageDriver string

const (
	StorageDriverMinio  StorageDriver = "minio"  // minio-go 客户端，兼容任意 S3 协议服务
	StorageDriverS3     StorageDriver = "s3"     // aws-sdk-go-v2 客户端，适合 AWS S3 / Cloudflare R2
	StorageDriverMemory StorageDriver = "memory" // 进程内存储，用于开发和测试
)

const (
	DefaultStorageDriver       = StorageDriverMinio
	DefaultS3Endpoint          = "localhost:9000" // 默认S3端点
	DefaultS3AccessKeyID       = "minioadmin"     // 默认访问密钥ID
	DefaultS3SecretAccessKey   = "minioadmin"     // 默认秘密访问密钥
	DefaultS3UseSSL            = false            // 默认是否使用SSL
	DefaultS3Region            = "us-east-1"      // 默认区域
	DefaultStorageCacheControl = "3600"           // 上传对象的缓存时间（秒）
	DefaultStorageListLimit    = 1000             // 单次列举的最大条目数
	BucketMedia                = "media"          // 媒体库存储桶
	BucketProjectImages        = "project-images" // 项目图片存储桶
)

// StorageConfig 对象存储配置.
type StorageConfig struct {
	Driver          StorageDriver `mapstructure:"driver"            rule:"oneof=minio s3 memory"`
	Endpoint        string        `mapstructure:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	Region          string        `mapstructure:"region"`
	UsePathStyle    bool          `mapstructure:"use_path_style"`
	Buckets         []string      `mapstructure:"buckets"           rule:"min=1,dive,required"`
	DefaultBucket   string        `mapstructure:"default_bucket"`
	// PublicBaseURL 自定义公开访问域名，例如 https://cdn.example.com，为空时使用 endpoint/bucket/key.
	PublicBaseURL string `mapstructure:"public_base_url"`
	CacheControl  string `mapstructure:"cache_control"`
	ListLimit     int    `mapstructure:"list_limit"        rule:"min=1,max=1000"`
}

// GetEndpointURL 获取完整的端点URL.
func (c *StorageConfig) GetEndpointURL() string {
	if strings.HasPrefix(c.Endpoint, "http://") || strings.HasPrefix(c.Endpoint, "https://") {
		return strings.TrimRight(c.Endpoint, "/")
	}

	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

// HasBucket 判断存储桶是否在配置中.
func (c *StorageConfig) HasBucket(name string) bool {
	return slices.Contains(c.Buckets, name)
}

// GetDefaultBucket 返回默认存储桶，未配置时为第一个存储桶.
func (c *StorageConfig) GetDefaultBucket() string {
	if c.DefaultBucket != "" {
		return c.DefaultBucket
	}

	if len(c.Buckets) > 0 {
		return c.Buckets[0]
	}

	return ""
}

// GetCacheControl 返回上传时使用的 Cache-Control 头，纯数字视为 max-age 秒数.
func (c *StorageConfig) GetCacheControl() string {
	cc := strings.TrimSpace(c.CacheControl)
	if cc == "" {
		return ""
	}

	if strings.Trim(cc, "0123456789") == "" {
		return "max-age=" + cc
	}

	return cc
}

// setDefaults 设置对象存储配置的默认值.
func (c *StorageConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", DefaultStorageDriver)
	v.SetDefault("storage.endpoint", DefaultS3Endpoint)
	v.SetDefault("storage.access_key_id", DefaultS3AccessKeyID)
	v.SetDefault("storage.secret_access_key", DefaultS3SecretAccessKey)
	v.SetDefault("storage.use_ssl", DefaultS3UseSSL)
	v.SetDefault("storage.region", DefaultS3Region)
	v.SetDefault("storage.use_path_style", true)
	v.SetDefault("storage.buckets", []string{BucketMedia, BucketProjectImages})
	v.SetDefault("storage.default_bucket", BucketMedia)
	v.SetDefault("storage.public_base_url", "")
	v.SetDefault("storage.cache_control", DefaultStorageCacheControl)
	v.SetDefault("storage.list_limit", DefaultStorageListLimit)
}
