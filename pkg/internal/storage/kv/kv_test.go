package kv_test

import (
	"context"
	crand "crypto/rand"
	"fmt"
	mrand "math/rand"
	"os"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feyabloom/studio/pkg/configs"
	"github.com/feyabloom/studio/pkg/internal/storage/kv"
)

// TestMemoryKV 测试内存 KV 的基本读写与前缀匹配.
func TestMemoryKV(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewKVStore(ctx, kv.KVTypeMemory, nil)
	require.NoError(t, err)

	defer store.Close()

	_, err = store.Get(ctx, "missing")
	require.ErrorIs(t, err, kv.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "role:alice", []byte("admin"), 0))
	require.NoError(t, store.Set(ctx, "role:bob", []byte("user"), time.Hour))
	require.NoError(t, store.Set(ctx, "gallery:media", []byte("[]"), 0))

	v, err := store.Get(ctx, "role:bob")
	require.NoError(t, err)
	assert.Equal(t, "user", string(v))

	keys, err := store.Keys(ctx, "role:*")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"role:alice", "role:bob"}, keys)

	ok, err := store.Exists(ctx, "gallery:media")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "gallery:media"))

	ok, err = store.Exists(ctx, "gallery:media")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestClientJSON 测试 JSON 读写与按前缀删除.
func TestClientJSON(t *testing.T) {
	ctx := context.Background()
	cfg := configs.Default().KV

	client, err := kv.NewKVClient(ctx, &cfg)
	require.NoError(t, err)

	type entry struct {
		Name string `json:"name"`
		Size int64  `json:"size"`
	}

	require.NoError(t, client.SetJSON(ctx, "gallery:a", []entry{{Name: "a.png", Size: 3}}, 0))
	require.NoError(t, client.SetJSON(ctx, "gallery:b", []entry{}, 0))
	require.NoError(t, client.SetJSON(ctx, "other", 1, 0))

	var got []entry
	require.NoError(t, client.GetJSON(ctx, "gallery:a", &got))
	assert.Equal(t, []entry{{Name: "a.png", Size: 3}}, got)

	require.NoError(t, client.DeletePrefix(ctx, "gallery:"))

	keys, err := client.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, keys)
}

// TestGroupcacheKVReuse 测试同名组可重复创建且写入后立即可见.
func TestGroupcacheKVReuse(t *testing.T) {
	ctx := context.Background()
	cfg := &configs.GroupcacheKVConfig{Name: "test-reuse", CacheBytes: 1 << 20, Self: "http://127.0.0.1:0"}

	first, err := kv.NewKVStore(ctx, kv.KVTypeGroupcache, cfg)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "k", []byte("v1"), 0))
	require.NoError(t, first.Set(ctx, "k", []byte("v2"), 0))

	v, err := first.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(v))

	second, err := kv.NewKVStore(ctx, kv.KVTypeGroupcache, cfg)
	require.NoError(t, err)

	_, err = second.Get(ctx, "k")
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)
}

func TestUnsupportedType(t *testing.T) {
	_, err := kv.NewKVStore(context.Background(), kv.KVType("etcd"), nil)
	assert.Error(t, err)
	assert.Contains(t, kv.GetRegisteredKVTypes(), kv.KVTypeMemory)
}

func BenchmarkMemoryKV(b *testing.B) {
	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	if err != nil {
		b.Fatalf("create memory kv: %v", err)
	}

	benchKV(b, "memory", store)
	benchKVParallel(b, "memory", store)
	_ = store.Close()
}

func BenchmarkGroupcacheKV(b *testing.B) {
	cfg := &configs.GroupcacheKVConfig{
		Name:       "bench-groupcache",
		CacheBytes: 32 * 1024 * 1024, // 32MB
		Peers:      []string{},
		Self:       "http://127.0.0.1:0",
	}

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeGroupcache, cfg)
	if err != nil {
		b.Fatalf("create groupcache kv: %v", err)
	}

	benchKV(b, "groupcache", store)
	benchKVParallel(b, "groupcache", store)
	_ = store.Close()
}

// Optional: enable with ENABLE_REDIS_BENCH=1 and REDIS_ADDR set (default 127.0.0.1:6379).
func BenchmarkRedisKV(b *testing.B) {
	if os.Getenv("ENABLE_REDIS_BENCH") == "" {
		b.Skip("set ENABLE_REDIS_BENCH=1 to enable")
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}

	cfg := &configs.RedisKVConfig{Addr: addr, Password: "", DB: 0}

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeRedis, cfg)
	if err != nil {
		b.Skipf("redis not available: %v", err)
		return
	}

	benchKV(b, "redis", store)
	benchKVParallel(b, "redis", store)
	_ = store.Close()
}

// Optional: enable with ENABLE_NATS_BENCH=1 and NATS_URL set (default nats://127.0.0.1:4222)
func BenchmarkNATSKV(b *testing.B) {
	if os.Getenv("ENABLE_NATS_BENCH") == "" {
		b.Skip("set ENABLE_NATS_BENCH=1 to enable")
	}

	url := os.Getenv("NATS_URL")
	if url == "" {
		url = "nats://127.0.0.1:4222"
	}

	bucket := os.Getenv("NATS_BUCKET")
	if bucket == "" {
		bucket = "bench-kv"
	}

	cfg := &configs.NATSKVConfig{URL: url, User: "", Password: "", Bucket: bucket}

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeNATS, cfg)
	if err != nil {
		b.Skipf("nats not available: %v", err)
		return
	}

	benchKV(b, "nats", store)
	benchKVParallel(b, "nats", store)
	_ = store.Close()
}

// randBytes returns n random bytes, seeded reproducibly for bench.
func randBytes(n int) []byte {
	b := make([]byte, n)
	// Try crypto/rand; if it fails (unlikely in tests), fallback to deterministic PRNG.
	if _, err := crand.Read(b); err != nil {
		mr := mrand.New(mrand.NewSource(42))
		for i := range b {
			b[i] = byte(mr.Intn(256))
		}
	}

	return b
}

// benchKV 执行基本的 Set/Get/Delete 基准测试.
func benchKV(b *testing.B, name string, store kv.KVStore) {
	ctx := context.Background()
	sizes := []int{32, 1024, 64 * 1024}
	ttls := []time.Duration{0, 5 * time.Second}

	for _, size := range sizes {
		payload := randBytes(size)
		for _, ttl := range ttls {
			b.Run(fmt.Sprintf("%s/size=%d/ttl=%s", name, size, ttl), func(b *testing.B) {
				// ensure clean
				b.ReportAllocs()

				for i := 0; b.Loop(); i++ {
					// Use hyphens to ensure keys are valid for NATS KV
					key := fmt.Sprintf("bench-%s-%d", name, i)
					if err := store.Set(ctx, key, payload, ttl); err != nil {
						b.Fatalf("set failed: %v", err)
					}

					if _, err := store.Get(ctx, key); err != nil {
						b.Fatalf("get failed: %v", err)
					}

					if err := store.Delete(ctx, key); err != nil {
						b.Fatalf("delete failed: %v", err)
					}
				}
			})
		}
	}
}

// benchKVParallel 执行并行的 Set/Get/Delete 基准测试.
func benchKVParallel(b *testing.B, name string, store kv.KVStore) {
	ctx := context.Background()
	size := 1024
	payload := randBytes(size)

	var ctr uint64

	b.Run(fmt.Sprintf("%s/parallel", name), func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				i := atomic.AddUint64(&ctr, 1)

				// Use hyphens to ensure keys are valid for NATS KV
				key := fmt.Sprintf("bench-%s-p-%d", name, i)
				if err := store.Set(ctx, key, payload, 0); err != nil {
					b.Fatalf("set failed: %v", err)
				}

				if _, err := store.Get(ctx, key); err != nil {
					b.Fatalf("get failed: %v", err)
				}

				if err := store.Delete(ctx, key); err != nil {
					b.Fatalf("delete failed: %v", err)
				}
			}
		})
	})
}
