package kv

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/groupcache"

	"github.com/feyabloom/studio/pkg/configs"
)

// GroupcacheKV 基于 Groupcache 的 KV 实现.
// 本地数据为权威来源，未命中时经由 groupcache 从对等节点拉取.
type GroupcacheKV struct {
	cache *groupcache.Group    // Groupcache 缓存组
	peers *groupcache.HTTPPool // 对等节点池
	data  map[string][]byte    // 本地存储数据
	mu    sync.RWMutex         // 保护 data 的读写锁
}

var (
	// groupcache 的组与 HTTP 池都是进程级注册，只能创建一次.
	poolOnce sync.Once
	pool     *groupcache.HTTPPool
)

// groupcacheGetter 实现 groupcache.Getter 接口.
type groupcacheGetter struct {
	mu sync.RWMutex
	kv *GroupcacheKV
}

func (g *groupcacheGetter) Get(_ context.Context, key string, dest groupcache.Sink) error {
	g.mu.RLock()
	kv := g.kv
	g.mu.RUnlock()

	if kv == nil {
		return notFound(key)
	}

	kv.mu.RLock()
	value, exists := kv.data[key]
	kv.mu.RUnlock()

	if !exists {
		return notFound(key)
	}

	if err := dest.SetBytes(value); err != nil {
		return fmt.Errorf("failed to set bytes to sink: %w", err)
	}

	return nil
}

var (
	gettersMu sync.Mutex
	getters   = make(map[string]*groupcacheGetter)
)

// NewGroupcacheKV 创建 Groupcache KV 实例.
// 同名组重复创建时复用已注册的组，并把本地数据源切换到新实例.
func NewGroupcacheKV(_ context.Context, config any) (KVStore, error) {
	gcConfig, ok := config.(*configs.GroupcacheKVConfig)
	if !ok {
		return nil, fmt.Errorf("invalid Groupcache config")
	}

	kv := &GroupcacheKV{
		data: make(map[string][]byte),
	}

	gettersMu.Lock()

	getter, exists := getters[gcConfig.Name]
	if !exists {
		getter = &groupcacheGetter{}
		getters[gcConfig.Name] = getter
		kv.cache = groupcache.NewGroup(gcConfig.Name, gcConfig.CacheBytes, getter)
	} else {
		kv.cache = groupcache.GetGroup(gcConfig.Name)
	}

	gettersMu.Unlock()

	getter.mu.Lock()
	getter.kv = kv
	getter.mu.Unlock()

	// 如果有对等节点，设置 HTTP 池
	if len(gcConfig.Peers) > 0 {
		poolOnce.Do(func() {
			pool = groupcache.NewHTTPPoolOpts(gcConfig.Self, &groupcache.HTTPPoolOptions{})
		})
		pool.Set(gcConfig.Peers...)
		kv.peers = pool
	}

	return kv, nil
}

// Get 获取键的值.
func (g *GroupcacheKV) Get(ctx context.Context, key string) ([]byte, error) {
	g.mu.RLock()
	local, exists := g.data[key]
	g.mu.RUnlock()

	data := local

	if !exists {
		if g.peers == nil {
			return nil, notFound(key)
		}

		if err := g.cache.Get(ctx, key, groupcache.AllocatingByteSliceSink(&data)); err != nil {
			if errors.Is(err, ErrKeyNotFound) {
				return nil, notFound(key)
			}

			return nil, fmt.Errorf("failed to get key: %w", err)
		}
	}

	val, expired, err := openTTL(data, time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = g.Delete(ctx, key)
		return nil, notFound(key)
	}

	// 返回副本
	result := make([]byte, len(val))
	copy(result, val)

	return result, nil
}

// Set 设置键的值.
func (g *GroupcacheKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, err := sealTTL(value, ttl, time.Now())
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.data[key] = make([]byte, len(encoded))
	copy(g.data[key], encoded)

	return nil
}

// Delete 删除键.
func (g *GroupcacheKV) Delete(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.data, key)

	return nil
}

// Exists 检查键是否存在.
func (g *GroupcacheKV) Exists(ctx context.Context, key string) (bool, error) {
	if _, err := g.Get(ctx, key); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// Keys 获取本地的键.
func (g *GroupcacheKV) Keys(_ context.Context, pattern string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	now := time.Now()
	keys := make([]string, 0, len(g.data))

	for key, value := range g.data {
		if !matchPattern(key, pattern) {
			continue
		}

		if _, expired, _ := openTTL(value, now); expired {
			continue
		}

		keys = append(keys, key)
	}

	return keys, nil
}

// Close 关闭缓存.
func (g *GroupcacheKV) Close() error {
	// Groupcache 没有显式的关闭方法
	return nil
}

func init() {
	RegisterKVFactory(KVTypeGroupcache, NewGroupcacheKV)
}
