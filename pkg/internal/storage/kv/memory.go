package kv

import (
	"context"
	"sync"
	"time"
)

// MemoryKV 基于 sync.Map 的内存 KV 实现，支持 TTL.
type MemoryKV struct {
	data sync.Map // 并发安全的 map
	now  func() time.Time
}

// NewMemoryKV 创建内存 KV 实例.
func NewMemoryKV(_ context.Context, _ any) (KVStore, error) {
	return &MemoryKV{now: time.Now}, nil
}

// Get 获取键的值.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	value, exists := m.data.Load(key)
	if !exists {
		return nil, notFound(key)
	}

	data, _ := value.([]byte)

	val, expired, err := openTTL(data, m.now())
	if err != nil {
		return nil, err
	}

	if expired {
		m.data.Delete(key)
		return nil, notFound(key)
	}

	result := make([]byte, len(val))
	copy(result, val)

	return result, nil
}

// Set 设置键的值.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, err := sealTTL(value, ttl, m.now())
	if err != nil {
		return err
	}

	data := make([]byte, len(encoded))
	copy(data, encoded)

	m.data.Store(key, data)

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.data.Delete(key)
	return nil
}

// Exists 检查键是否存在.
func (m *MemoryKV) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Get(ctx, key)
	if err != nil {
		return false, nil
	}

	return true, nil
}

// Keys 获取匹配的键.
func (m *MemoryKV) Keys(_ context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0)

	m.data.Range(func(key, value any) bool {
		k, ok := key.(string)
		if !ok || !matchPattern(k, pattern) {
			return true
		}

		if b, ok := value.([]byte); ok {
			if _, expired, _ := openTTL(b, m.now()); expired {
				return true
			}
		}

		keys = append(keys, k)

		return true
	})

	return keys, nil
}

// Close 关闭存储（内存实现无需操作）.
func (m *MemoryKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(KVTypeMemory, NewMemoryKV)
}
