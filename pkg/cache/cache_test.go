package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feyabloom/studio/pkg/cache"
	"github.com/feyabloom/studio/pkg/internal/storage/kv"
)

type card struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

func newStore(t *testing.T) kv.KVStore {
	t.Helper()

	s, err := kv.NewMemoryKV(context.Background(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

// readOnlyStore 写入总是失败，用于验证缓存写失败不影响返回值.
type readOnlyStore struct {
	kv.KVStore
}

func (readOnlyStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("read only")
}

// TestGetSetRoundTrip 测试泛型读写与未命中.
func TestGetSetRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCache(newStore(t), cache.WithNamespace("gallery"))

	_, err := cache.Get[[]card](ctx, c, "published")
	require.ErrorIs(t, err, kv.ErrKeyNotFound)

	want := []card{{ID: "1", Title: "Loom", Category: "Textiles"}}
	require.NoError(t, cache.Set(ctx, c, "published", want, time.Minute))

	got, err := cache.Get[[]card](ctx, c, "published")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	ok, err := c.Exists(ctx, "published")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Delete(ctx, "published"))

	ok, err = c.Exists(ctx, "published")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestGetOrSet 测试未命中时回源并写回，之后直接命中.
func TestGetOrSet(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCache(newStore(t))

	var calls int

	load := func() ([]card, error) {
		calls++
		return []card{{ID: "a"}}, nil
	}

	for range 3 {
		got, err := cache.GetOrSet(ctx, c, "k", load, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, []card{{ID: "a"}}, got)
	}

	assert.Equal(t, 1, calls)
}

// TestGetOrSetGetterError 测试回源失败时返回错误且不写入缓存.
func TestGetOrSetGetterError(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCache(newStore(t))
	boom := errors.New("db down")

	_, err := cache.GetOrSet(ctx, c, "k", func() (int, error) { return 0, boom }, time.Minute)
	require.ErrorIs(t, err, boom)

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestGetOrSetWriteFailure 测试缓存写入失败时仍返回回源结果.
func TestGetOrSetWriteFailure(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCache(readOnlyStore{newStore(t)})

	got, err := cache.GetOrSet(ctx, c, "k", func() (string, error) { return "fresh", nil }, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

// TestGetOrSetSingleFlight 测试并发未命中只回源一次.
func TestGetOrSetSingleFlight(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCache(newStore(t))

	var (
		calls   atomic.Int32
		release = make(chan struct{})
		wg      sync.WaitGroup
	)

	load := func() (int, error) {
		calls.Add(1)
		<-release

		return 42, nil
	}

	const workers = 8

	results := make([]int, workers)

	for i := range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			v, err := cache.GetOrSet(ctx, c, "answer", load, time.Minute)
			assert.NoError(t, err)

			results[i] = v
		}()
	}

	// 等所有 goroutine 进入 singleflight
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())

	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

// TestClearOnlyNamespace 测试 Clear 只删除自己命名空间下的键.
func TestClearOnlyNamespace(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	gallery := cache.NewCache(store, cache.WithNamespace("gallery"))
	roles := cache.NewCache(store, cache.WithNamespace("role"))

	require.NoError(t, cache.Set(ctx, gallery, "all", 1, 0))
	require.NoError(t, cache.Set(ctx, gallery, cache.Key("published", "Art"), 2, 0))
	require.NoError(t, cache.Set(ctx, roles, "alice", true, 0))

	require.NoError(t, gallery.Clear(ctx))

	keys, err := store.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"role:alice"}, keys)
}

// TestCacheExpiry 测试带 TTL 的值过期后视为未命中.
func TestCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCache(newStore(t))

	require.NoError(t, cache.Set(ctx, c, "short", "v", 20*time.Millisecond))

	assert.Eventually(t, func() bool {
		_, err := cache.Get[string](ctx, c, "short")
		return errors.Is(err, kv.ErrKeyNotFound)
	}, time.Second, 10*time.Millisecond)
}

func TestKey(t *testing.T) {
	assert.Equal(t, cache.Key("published", "Art"), cache.Key("published", "Art"))
	assert.NotEqual(t, cache.Key("published", "Art"), cache.Key("publishedArt"))
	assert.NotEqual(t, cache.Key("a", "bc"), cache.Key("ab", "c"))
}
