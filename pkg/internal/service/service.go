// Package service 实现媒体库、项目目录、联系表单与权限校验的业务逻辑，不处理 HTTP 细节.
//
// 服务从 context 中的 storage.Manager 获取依赖（由 middleware.StorageMiddleware 注入），
// 后台任务与 CLI 通过 ctxPkg.WithStorageManager 提供同样的依赖.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/feyabloom/studio/pkg/cache"
	"github.com/feyabloom/studio/pkg/configs"
	ctxPkg "github.com/feyabloom/studio/pkg/context"
	"github.com/feyabloom/studio/pkg/internal/storage"
	"github.com/feyabloom/studio/pkg/internal/storage/kv"
	nlog "github.com/feyabloom/studio/pkg/log"
)

// DefaultSliceCapacity 默认切片容量.
const DefaultSliceCapacity = 16

var (
	// ErrConflict 对象在读取后已被修改（If-Match 不一致）.
	ErrConflict = errors.New("object was modified by someone else")
	// ErrSameLocation 源路径与目标路径相同.
	ErrSameLocation = errors.New("source and destination are the same")
	// ErrInvalidName 名称为空、包含分隔符或为 . / ..
	ErrInvalidName = errors.New("invalid name")
	// ErrProjectNotFound 项目不存在.
	ErrProjectNotFound = errors.New("project not found")
	// ErrUnknownBucket 存储桶未在配置中声明.
	ErrUnknownBucket = errors.New("unknown bucket")
	// ErrPayloadTooLarge 单次上传总大小超过限制.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrForbidden 当前用户没有所需角色.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated 请求没有携带有效身份.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError 请求内容不合法，Message 可直接返回给客户端.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// invalid 构造 ValidationError.
func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation 判断错误是否为校验错误.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// managerFrom 从 context 获取存储管理器.
func managerFrom(c context.Context) *storage.Manager {
	mgr := ctxPkg.GetManager(c)

	// 依赖此服务的调用方不再检查 nil
	if mgr == nil || mgr.Objects == nil {
		nlog.Logger().Fatal().Msg("storage manager not initialized")
	}

	return mgr
}

// resolveBucket 空名称返回默认存储桶，未声明的名称返回 ErrUnknownBucket.
func resolveBucket(cfg *configs.StorageConfig, name string) (string, error) {
	if name == "" {
		name = cfg.GetDefaultBucket()
	}

	if !cfg.HasBucket(name) {
		return "", fmt.Errorf("%w: %q", ErrUnknownBucket, name)
	}

	return name, nil
}

type cacheKey struct {
	client *kv.Client
	ns     string
}

// caches 每个 KV 客户端与命名空间共享一个缓存实例，使 singleflight 跨请求生效.
var caches sync.Map // map[cacheKey]*cache.Cache

func sharedCache(k *kv.Client, ns string) *cache.Cache {
	if k == nil {
		return nil
	}

	key := cacheKey{client: k, ns: ns}
	if c, ok := caches.Load(key); ok {
		return c.(*cache.Cache)
	}

	c, _ := caches.LoadOrStore(key, cache.NewCache(k, cache.WithNamespace(ns)))

	return c.(*cache.Cache)
}
