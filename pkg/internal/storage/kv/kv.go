// Package kv 提供用于键值存储的接口和实现，角色缓存与公开接口的响应缓存都建立在它之上.
package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/feyabloom/studio/pkg/configs"
)

// ErrKeyNotFound 键不存在或已过期.
var ErrKeyNotFound = errors.New("key not found")

// Client 包装具体的 KVStore 并提供 JSON 与健康检查辅助方法.
type Client struct {
	KVStore
}

// KVStore 定义键值存储接口.
type KVStore interface {
	// Get 获取键的值，不存在时返回 ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set 设置键的值，可选过期时间.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete 删除键.
	Delete(ctx context.Context, key string) error
	// Exists 检查键是否存在.
	Exists(ctx context.Context, key string) (bool, error)
	// Keys 获取匹配的键，pattern 支持末尾的 * 作为前缀匹配.
	Keys(ctx context.Context, pattern string) ([]string, error)
	// Close 关闭存储连接.
	Close() error
}

// KVType 键值存储类型.
type KVType string

const (
	KVTypeMemory     KVType = "memory"
	KVTypeRedis      KVType = "redis"
	KVTypeNATS       KVType = "nats"
	KVTypeGroupcache KVType = "groupcache"
)

// KVFactory 定义创建 KVStore 的工厂函数类型.
type KVFactory func(ctx context.Context, config any) (KVStore, error)

var (
	factoriesMu sync.RWMutex
	// kvFactories 存储 KV 类型到工厂的映射.
	kvFactories = make(map[KVType]KVFactory)
)

// RegisterKVFactory 注册 KV 工厂函数.
func RegisterKVFactory(kvType KVType, factory KVFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	kvFactories[kvType] = factory
}

// GetRegisteredKVTypes 返回已注册的 KV 类型列表.
func GetRegisteredKVTypes() []KVType {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	types := make([]KVType, 0, len(kvFactories))
	for kvType := range kvFactories {
		types = append(types, kvType)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// NewKVStore 根据类型创建 KVStore 实例.
func NewKVStore(ctx context.Context, kvType KVType, config any) (KVStore, error) {
	factoriesMu.RLock()
	factory, exists := kvFactories[kvType]
	factoriesMu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unsupported KV type: %s", kvType)
	}

	return factory(ctx, config)
}

// NewKVClient 按配置创建 KV 客户端，每种类型接收各自的子配置.
func NewKVClient(ctx context.Context, cfg *configs.KVConfig) (*Client, error) {
	t := KVType(cfg.Type)

	var sub any

	switch t {
	case KVTypeRedis:
		sub = &cfg.Redis
	case KVTypeNATS:
		sub = &cfg.NATS
	case KVTypeGroupcache:
		sub = &cfg.Groupcache
	}

	store, err := NewKVStore(ctx, t, sub)
	if err != nil {
		return nil, err
	}

	return &Client{KVStore: store}, nil
}

// GetJSON 读取并解码 JSON 值.
func (c *Client) GetJSON(ctx context.Context, key string, out any) error {
	b, err := c.Get(ctx, key)
	if err != nil {
		return err
	}

	return sonic.Unmarshal(b, out)
}

// SetJSON 编码并写入 JSON 值.
func (c *Client) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal kv value: %w", err)
	}

	return c.Set(ctx, key, b, ttl)
}

// healthKey 健康检查写入的探测键.
const healthKey = "studio:health"

// HealthCheck 写入并读回一个短期探测键.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.Set(ctx, healthKey, []byte("ok"), time.Minute); err != nil {
		return fmt.Errorf("kv write probe: %w", err)
	}

	if _, err := c.Get(ctx, healthKey); err != nil {
		return fmt.Errorf("kv read probe: %w", err)
	}

	return nil
}

// DeletePrefix 删除所有以 prefix 开头的键.
func (c *Client) DeletePrefix(ctx context.Context, prefix string) error {
	keys, err := c.Keys(ctx, prefix+"*")
	if err != nil {
		return err
	}

	var errs []error

	for _, k := range keys {
		if err := c.Delete(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// notFound 返回包装了 ErrKeyNotFound 的错误.
func notFound(key string) error {
	return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
}

// matchPattern 判断键是否匹配：空模式匹配全部，末尾 * 为前缀匹配，否则精确匹配.
func matchPattern(key, pattern string) bool {
	switch {
	case pattern == "" || pattern == "*":
		return true
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(key, strings.TrimSuffix(pattern, "*"))
	default:
		return key == pattern
	}
}
