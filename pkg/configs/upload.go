package configs

import (
	"strings"

	"github.com/spf13/viper"
)

// 上传策略名称.
const (
	UploadProfileImage   = "image"   // 项目编辑器的图片上传
	UploadProfileMedia   = "media"   // 项目编辑器的图片/视频上传
	UploadProfileManager = "manager" // 媒体管理器的批量上传

	MB = 1 << 20
)

// UploadProfile 单个上传策略.
type UploadProfile struct {
	// Bucket 为空时使用请求中指定的存储桶
	Bucket string `mapstructure:"bucket"`
	// Accept 允许的 MIME 前缀，例如 image/、video/
	Accept []string `mapstructure:"accept"`
	// MaxFileSize 单个文件上限（字节），0 表示不限制
	MaxFileSize int64 `mapstructure:"max_file_size"`
	// MaxTotalSize 单次请求总大小上限（字节），0 表示不限制
	MaxTotalSize int64 `mapstructure:"max_total_size"`
	// KeepName 为 true 时使用原始文件名，否则生成随机名
	KeepName bool `mapstructure:"keep_name"`
	// Upsert 为 true 时覆盖同名对象
	Upsert bool `mapstructure:"upsert"`
}

// Accepts 判断内容类型是否被允许.
func (p UploadProfile) Accepts(contentType string) bool {
	if len(p.Accept) == 0 {
		return true
	}

	for _, prefix := range p.Accept {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}

	return false
}

// UploadConfig 上传策略配置.
type UploadConfig struct {
	Profiles map[string]UploadProfile `mapstructure:"profiles"`
}

// Profile 按名称查找上传策略.
func (c *UploadConfig) Profile(name string) (UploadProfile, bool) {
	p, ok := c.Profiles[name]
	return p, ok
}

// setDefaults 设置上传策略的默认值.
func (c *UploadConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("upload.profiles", map[string]any{
		UploadProfileImage: map[string]any{
			"bucket":         BucketProjectImages,
			"accept":         []string{"image/"},
			"max_file_size":  10 * MB,
			"max_total_size": 0,
			"keep_name":      false,
			"upsert":         false,
		},
		UploadProfileMedia: map[string]any{
			"bucket":         BucketMedia,
			"accept":         []string{"image/", "video/"},
			"max_file_size":  50 * MB,
			"max_total_size": 0,
			"keep_name":      false,
			"upsert":         false,
		},
		UploadProfileManager: map[string]any{
			"bucket":         "",
			"accept":         []string{"image/", "video/"},
			"max_file_size":  0,
			"max_total_size": 200 * MB,
			"keep_name":      true,
			"upsert":         true,
		},
	})
}
