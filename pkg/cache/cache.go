// Package cache 提供基于键值存储的泛型缓存实现，公开图库与角色查询的结果缓存都经过它.
//
// 基本用法:
//
//	c := cache.NewCache(kvClient, cache.WithNamespace("gallery"))
//
//	projects, err := cache.GetOrSet(ctx, c, cache.Key("published", category), func() ([]model.Project, error) {
//	    return svc.ListPublished(ctx, category)
//	}, time.Minute)
//
//	// 项目变更后整体失效
//	_ = c.Clear(ctx)
//
// 并发的 GetOrSet 对同一个键只会调用一次 getter（singleflight）.
// 缓存写入失败不影响返回值；缓存未命中与读取失败都会回源.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"github.com/feyabloom/studio/pkg/internal/storage/kv"
)

// Cache 基于KV存储的缓存实现.
type Cache struct {
	kvStore   kv.KVStore
	namespace string
	group     singleflight.Group
}

// Option 缓存选项.
type Option func(*Cache)

// WithNamespace 为所有键加上 "namespace:" 前缀，Clear 只清理该命名空间.
func WithNamespace(ns string) Option {
	return func(c *Cache) {
		if ns != "" {
			c.namespace = ns + ":"
		}
	}
}

// NewCache 创建一个新的缓存实例.
func NewCache(kvStore kv.KVStore, opts ...Option) *Cache {
	c := &Cache{kvStore: kvStore}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Key 把任意片段哈希为固定长度的缓存键.
func Key(parts ...string) string {
	h := xxhash.New()

	for _, p := range parts {
		_, _ = h.WriteString(p)
		_, _ = h.Write([]byte{0})
	}

	return strconv.FormatUint(h.Sum64(), 16)
}

func (c *Cache) key(k string) string {
	return c.namespace + k
}

// Get 泛型获取缓存值.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.kvStore.Get(ctx, c.key(key))
	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 泛型设置缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, c.key(key), data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.kvStore.Delete(ctx, c.key(key))
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, c.key(key))
}

// GetOrSet 获取缓存值，如果不存在则调用 getter 并写回.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	v, err, _ := c.group.Do(c.key(key), func() (any, error) {
		value, err := getter()
		if err != nil {
			return nil, err
		}

		// 缓存失败，但仍返回值
		_ = Set(ctx, c, key, value, ttl)

		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}

// Clear 清空当前命名空间下的缓存.
func (c *Cache) Clear(ctx context.Context) error {
	keys, err := c.kvStore.Keys(ctx, c.namespace+"*")
	if err != nil {
		return err
	}

	for _, key := range keys {
		// 部分实现不支持模式匹配，这里再按命名空间过滤一次
		if !strings.HasPrefix(key, c.namespace) {
			continue
		}

		if delErr := c.kvStore.Delete(ctx, key); delErr != nil {
			return delErr
		}
	}

	return nil
}
