package object_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feyabloom/studio/pkg/configs"
	"github.com/feyabloom/studio/pkg/internal/storage/object"
)

func newMemory(t *testing.T, opts ...object.MemoryOption) *object.Memory {
	t.Helper()

	cfg := configs.Default().Storage
	m := object.NewMemory(&cfg, opts...)
	require.NoError(t, m.EnsureBucket(context.Background(), "media"))

	return m
}

func put(t *testing.T, s object.Store, key, body string) {
	t.Helper()

	_, err := s.Upload(context.Background(), "media", key, bytes.NewBufferString(body), int64(len(body)), object.UploadOptions{Upsert: true})
	require.NoError(t, err)
}

// TestMemoryListOneLevel 列举只返回一级，目录 ID 为空.
func TestMemoryListOneLevel(t *testing.T) {
	m := newMemory(t)
	put(t, m, "a.png", "a")
	put(t, m, "art/b.png", "b")
	put(t, m, "art/deep/c.png", "c")
	put(t, m, "blog/.keep", "")

	root, err := m.List(context.Background(), "media", "", object.ListOptions{Limit: 1000})
	require.NoError(t, err)

	var names []string

	for _, e := range root {
		names = append(names, e.Name)
		if e.Name == "art" || e.Name == "blog" {
			assert.True(t, e.IsFolder(), e.Name)
		} else {
			assert.False(t, e.IsFolder(), e.Name)
		}
	}

	assert.Equal(t, []string{"a.png", "art", "blog"}, names)

	art, err := m.List(context.Background(), "media", "art/", object.ListOptions{})
	require.NoError(t, err)
	require.Len(t, art, 2)
	assert.Equal(t, "art/b.png", art[0].Key)
	assert.Equal(t, "art/deep", art[1].Key)
}

// TestMemoryUpsert 未允许覆盖时重复上传失败.
func TestMemoryUpsert(t *testing.T) {
	m := newMemory(t)
	put(t, m, "x.png", "1")

	_, err := m.Upload(context.Background(), "media", "x.png", bytes.NewBufferString("2"), 1, object.UploadOptions{})
	require.ErrorIs(t, err, object.ErrObjectExists)

	data, err := m.Download(context.Background(), "media", "x.png")
	require.NoError(t, err)
	assert.Equal(t, "1", string(data))
}

// TestMemoryCopyStatRemove 测试复制、元数据与删除.
func TestMemoryCopyStatRemove(t *testing.T) {
	m := newMemory(t)
	put(t, m, "x.png", "payload")

	require.NoError(t, m.Copy(context.Background(), "media", "x.png", "y.png"))

	a, err := m.Stat(context.Background(), "media", "x.png")
	require.NoError(t, err)
	b, err := m.Stat(context.Background(), "media", "y.png")
	require.NoError(t, err)
	assert.Equal(t, a.ETag, b.ETag)
	assert.Equal(t, "image/png", a.ContentType)

	require.NoError(t, m.Remove(context.Background(), "media", []string{"x.png", "missing.png"}))

	_, err = m.Stat(context.Background(), "media", "x.png")
	assert.ErrorIs(t, err, object.ErrNotFound)

	nc := newMemory(t, object.WithoutCopy())
	put(t, nc, "x.png", "1")
	assert.ErrorIs(t, nc.Copy(context.Background(), "media", "x.png", "y.png"), object.ErrNotSupported)
}

// TestPage 测试搜索、排序与分页.
func TestPage(t *testing.T) {
	now := time.Now()
	entries := []object.Entry{
		{ID: "1", Name: "Sunset.png", Size: 30, LastModified: now},
		{ID: "2", Name: "apple.png", Size: 10, LastModified: now.Add(-time.Hour)},
		{ID: "3", Name: "sunrise.jpg", Size: 20, LastModified: now.Add(time.Hour)},
	}

	got := object.Page(append([]object.Entry(nil), entries...), object.ListOptions{Search: "SUN"})
	require.Len(t, got, 2)
	assert.Equal(t, "Sunset.png", got[0].Name)

	got = object.Page(append([]object.Entry(nil), entries...), object.ListOptions{SortBy: object.SortBySize, Desc: true, Limit: 2})
	assert.Equal(t, []string{"Sunset.png", "sunrise.jpg"}, []string{got[0].Name, got[1].Name})

	got = object.Page(append([]object.Entry(nil), entries...), object.ListOptions{Offset: 1, Limit: 1})
	require.Len(t, got, 1)
	assert.Equal(t, "apple.png", got[0].Name)

	assert.Empty(t, object.Page(append([]object.Entry(nil), entries...), object.ListOptions{Offset: 5}))
}

// TestBuildPublicURL 测试公开地址.
func TestBuildPublicURL(t *testing.T) {
	cfg := configs.StorageConfig{Endpoint: "localhost:9000"}
	assert.Equal(t, "http://localhost:9000/media/art/my%20photo.png", object.BuildPublicURL(&cfg, "media", "art/my photo.png"))

	cfg.PublicBaseURL = "https://cdn.feyabloom.studio/"
	assert.Equal(t, "https://cdn.feyabloom.studio/project-images/a.png", object.BuildPublicURL(&cfg, "project-images", "a.png"))
}

// TestNewMemoryDriver 通过注册表创建内存驱动并自动创建存储桶.
func TestNewMemoryDriver(t *testing.T) {
	cfg := configs.Default().Storage
	cfg.Driver = configs.StorageDriverMemory

	s, err := object.New(context.Background(), &cfg)
	require.NoError(t, err)

	s = object.Instrument(s)

	for _, b := range cfg.Buckets {
		_, err := s.List(context.Background(), b, "", object.ListOptions{})
		assert.NoError(t, err, b)
	}

	_, ok := object.Unwrap(s).(*object.Memory)
	assert.True(t, ok)

	cfg.Driver = "ftp"
	_, err = object.New(context.Background(), &cfg)
	assert.Error(t, err)
}

// TestDrivers 测试三种驱动都已注册.
func TestDrivers(t *testing.T) {
	assert.Equal(t, []configs.StorageDriver{
		configs.StorageDriverMemory, configs.StorageDriverMinio, configs.StorageDriverS3,
	}, object.Drivers())
}
