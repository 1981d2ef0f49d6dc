package object

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/feyabloom/studio/pkg/configs"
)

func init() {
	Register(configs.StorageDriverMemory, func(_ context.Context, cfg *configs.StorageConfig) (Store, error) {
		return NewMemory(cfg), nil
	})
}

type memObject struct {
	data        []byte
	contentType string
	etag        string
	modTime     time.Time
}

// MemoryOption 配置内存驱动.
type MemoryOption func(*Memory)

// WithoutCopy 让 Copy 返回 ErrNotSupported，模拟没有原生复制的存储.
func WithoutCopy() MemoryOption {
	return func(m *Memory) { m.noCopy = true }
}

// WithFailingRemove 让前 n 次 Remove 失败.
func WithFailingRemove(n int) MemoryOption {
	return func(m *Memory) { m.failRemove = n }
}

// Memory 进程内对象存储，用于开发与测试.
//
// Memory 记录每次调用的操作名，测试可以据此断言发出的存储调用.
type Memory struct {
	mu         sync.RWMutex
	cfg        configs.StorageConfig
	buckets    map[string]map[string]*memObject
	calls      []string
	noCopy     bool
	failRemove int
	now        func() time.Time
}

// NewMemory 创建内存驱动.
func NewMemory(cfg *configs.StorageConfig, opts ...MemoryOption) *Memory {
	m := &Memory{
		buckets: map[string]map[string]*memObject{},
		now:     time.Now,
	}
	if cfg != nil {
		m.cfg = *cfg
	}

	for _, o := range opts {
		o(m)
	}

	return m
}

// Calls 返回已发生的操作名，例如 list、upload、remove.
func (m *Memory) Calls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string(nil), m.calls...)
}

// CountCalls 返回某种操作的调用次数.
func (m *Memory) CountCalls(op string) int {
	n := 0

	for _, c := range m.Calls() {
		if c == op {
			n++
		}
	}

	return n
}

// ResetCalls 清空调用记录.
func (m *Memory) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = nil
}

// Keys 返回存储桶中全部对象键，用于测试断言.
func (m *Memory) Keys(bucket string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.buckets[bucket]))
	for k := range m.buckets[bucket] {
		keys = append(keys, k)
	}

	return keys
}

func (m *Memory) record(op string) {
	m.calls = append(m.calls, op)
}

func (m *Memory) bucket(name string) (map[string]*memObject, error) {
	b, ok := m.buckets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, name)
	}

	return b, nil
}

// List 实现 Store.
func (m *Memory) List(_ context.Context, bucket, prefix string, opts ListOptions) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("list")

	b, err := m.bucket(bucket)
	if err != nil {
		return nil, err
	}

	folders := map[string]struct{}{}

	var entries []Entry

	for key, obj := range b {
		if !strings.HasPrefix(key, prefix) {
			continue
		}

		rest := key[len(prefix):]
		if i := strings.Index(rest, "/"); i >= 0 {
			sub := prefix + rest[:i+1]
			if _, seen := folders[sub]; !seen {
				folders[sub] = struct{}{}
				entries = append(entries, folderEntry(prefix, sub))
			}

			continue
		}

		entries = append(entries, Entry{
			ID:           obj.etag,
			Name:         rest,
			Key:          key,
			Size:         int64(len(obj.data)),
			ContentType:  obj.contentType,
			ETag:         obj.etag,
			LastModified: obj.modTime,
		})
	}

	return Page(entries, opts), nil
}

// Upload 实现 Store.
func (m *Memory) Upload(_ context.Context, bucket, key string, r io.Reader, _ int64, opts UploadOptions) (Info, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Info{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("upload")

	b, err := m.bucket(bucket)
	if err != nil {
		return Info{}, err
	}

	if _, exists := b[key]; exists && !opts.Upsert {
		return Info{}, fmt.Errorf("%w: %s", ErrObjectExists, key)
	}

	ct := opts.ContentType
	if ct == "" {
		ct = GuessContentType(key)
	}

	obj := &memObject{
		data:        data,
		contentType: ct,
		etag:        etagOf(data),
		modTime:     m.now(),
	}
	b[key] = obj

	return obj.info(key), nil
}

// Download 实现 Store.
func (m *Memory) Download(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("download")

	obj, err := m.lookup(bucket, key)
	if err != nil {
		return nil, err
	}

	return bytes.Clone(obj.data), nil
}

// Stat 实现 Store.
func (m *Memory) Stat(_ context.Context, bucket, key string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("stat")

	obj, err := m.lookup(bucket, key)
	if err != nil {
		return Info{}, err
	}

	return obj.info(key), nil
}

// Remove 实现 Store，不存在的键被忽略.
func (m *Memory) Remove(_ context.Context, bucket string, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("remove")

	if m.failRemove > 0 {
		m.failRemove--
		return fmt.Errorf("remove %d objects: simulated failure", len(keys))
	}

	b, err := m.bucket(bucket)
	if err != nil {
		return err
	}

	for _, k := range keys {
		delete(b, k)
	}

	return nil
}

// Copy 实现 Store.
func (m *Memory) Copy(_ context.Context, bucket, src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("copy")

	if m.noCopy {
		return ErrNotSupported
	}

	obj, err := m.lookup(bucket, src)
	if err != nil {
		return err
	}

	cp := *obj
	cp.data = bytes.Clone(obj.data)
	cp.modTime = m.now()
	m.buckets[bucket][dst] = &cp

	return nil
}

// PublicURL 实现 Store.
func (m *Memory) PublicURL(bucket, key string) string {
	return BuildPublicURL(&m.cfg, bucket, key)
}

// EnsureBucket 实现 Store.
func (m *Memory) EnsureBucket(_ context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.buckets[bucket]; !ok {
		m.buckets[bucket] = map[string]*memObject{}
	}

	return nil
}

// HealthCheck 实现 Store.
func (m *Memory) HealthCheck(context.Context) error {
	return nil
}

// Close 实现 Store.
func (m *Memory) Close() error {
	return nil
}

func (m *Memory) lookup(bucket, key string) (*memObject, error) {
	b, err := m.bucket(bucket)
	if err != nil {
		return nil, err
	}

	obj, ok := b[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	return obj, nil
}

func (o *memObject) info(key string) Info {
	return Info{
		Key:          key,
		Size:         int64(len(o.data)),
		ContentType:  o.contentType,
		ETag:         o.etag,
		LastModified: o.modTime,
	}
}

// etagOf 内存驱动使用内容的 xxhash 作为 ETag.
func etagOf(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
