package configs

import (
	"fmt"

	"github.com/feyabloom/studio/pkg/rule"
)

// Validate 使用 rule 标签校验配置，并检查跨字段约束.
func Validate(cfg *AppConfig) error {
	if err := rule.ValidateStruct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if cfg.Storage.DefaultBucket != "" && !cfg.Storage.HasBucket(cfg.Storage.DefaultBucket) {
		return fmt.Errorf("%w: default bucket %q is not listed in storage.buckets", ErrInvalidConfig, cfg.Storage.DefaultBucket)
	}

	if err := cfg.Auth.validate(); err != nil {
		return err
	}

	for name, p := range cfg.Upload.Profiles {
		if p.Bucket != "" && !cfg.Storage.HasBucket(p.Bucket) {
			return fmt.Errorf("%w: upload profile %q uses unknown bucket %q", ErrInvalidConfig, name, p.Bucket)
		}
	}

	return nil
}
