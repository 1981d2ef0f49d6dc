// Package object 定义对象存储适配器接口，并提供 minio、s3 与 memory 三种驱动.
//
// 列举只返回一级：前缀下的对象与子前缀（目录）. 目录条目的 ID 为空.
//
// Example:
//
//	store, err := object.New(ctx, &cfg.Storage)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	entries, err := store.List(ctx, "media", "portfolio/", object.ListOptions{Limit: 1000})
package object

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/feyabloom/studio/pkg/configs"
)

var (
	// ErrNotFound 对象不存在.
	ErrNotFound = errors.New("object not found")
	// ErrObjectExists 对象已存在且未允许覆盖.
	ErrObjectExists = errors.New("the resource already exists")
	// ErrNotSupported 驱动不支持该操作.
	ErrNotSupported = errors.New("operation not supported by storage driver")
	// ErrBucketNotFound 存储桶不存在.
	ErrBucketNotFound = errors.New("bucket not found")
)

// SortField 列举排序字段.
type SortField string

const (
	SortByName      SortField = "name"
	SortByUpdatedAt SortField = "updated_at"
	SortBySize      SortField = "size"
)

// Entry 列举结果中的一项.
type Entry struct {
	// ID 对象标识，目录为空
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// IsFolder 目录条目没有对象 ID.
func (e Entry) IsFolder() bool {
	return e.ID == ""
}

// Info 单个对象的元数据.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag"`
	LastModified time.Time `json:"last_modified"`
}

// ListOptions 列举参数.
type ListOptions struct {
	Limit  int
	Offset int
	SortBy SortField
	Desc   bool
	// Search 对名称做不区分大小写的子串匹配
	Search string
}

// UploadOptions 上传参数.
type UploadOptions struct {
	ContentType  string
	CacheControl string
	Upsert       bool
}

// Store 对象存储适配器.
type Store interface {
	List(ctx context.Context, bucket, prefix string, opts ListOptions) ([]Entry, error)
	Upload(ctx context.Context, bucket, key string, r io.Reader, size int64, opts UploadOptions) (Info, error)
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Stat(ctx context.Context, bucket, key string) (Info, error)
	Remove(ctx context.Context, bucket string, keys []string) error
	Copy(ctx context.Context, bucket, src, dst string) error
	PublicURL(bucket, key string) string
	EnsureBucket(ctx context.Context, bucket string) error
	HealthCheck(ctx context.Context) error
	Close() error
}

// Factory 根据配置创建驱动.
type Factory func(ctx context.Context, cfg *configs.StorageConfig) (Store, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[configs.StorageDriver]Factory{}
)

// Register 注册驱动工厂.
func Register(driver configs.StorageDriver, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	factories[driver] = f
}

// Drivers 返回已注册的驱动名，按字母排序.
func Drivers() []configs.StorageDriver {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	out := make([]configs.StorageDriver, 0, len(factories))
	for d := range factories {
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// New 创建配置中指定的驱动，并确保所有存储桶存在.
func New(ctx context.Context, cfg *configs.StorageConfig) (Store, error) {
	factoriesMu.RLock()
	f, ok := factories[cfg.Driver]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}

	s, err := f(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init storage (%s): %w", cfg.Driver, err)
	}

	for _, b := range cfg.Buckets {
		if b == "" {
			continue
		}

		if err := s.EnsureBucket(ctx, b); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("ensure bucket %s: %w", b, err)
		}
	}

	return s, nil
}

// BuildPublicURL 计算对象的公开访问地址.
// 配置了 PublicBaseURL 时为 base/bucket/key，否则为 endpoint/bucket/key；key 按段转义.
func BuildPublicURL(cfg *configs.StorageConfig, bucket, key string) string {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = cfg.GetEndpointURL()
	}

	return base + "/" + url.PathEscape(bucket) + "/" + EscapeKey(key)
}

// EscapeKey 按段转义对象键，保留分隔符.
func EscapeKey(key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}

	return strings.Join(segs, "/")
}

// GuessContentType 按扩展名推断内容类型，列举结果不带内容类型时使用.
func GuessContentType(key string) string {
	ext := strings.ToLower(path.Ext(key))
	if ext == "" {
		return ""
	}

	ct := mime.TypeByExtension(ext)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}

	return ct
}

// folderEntry 构造目录条目，sub 为形如 prefix/name/ 的子前缀.
func folderEntry(prefix, sub string) Entry {
	name := strings.TrimSuffix(strings.TrimPrefix(sub, prefix), "/")
	return Entry{Name: name, Key: strings.TrimSuffix(sub, "/")}
}

// Page 对一级列举结果做搜索、排序与分页，各驱动共用.
func Page(entries []Entry, opts ListOptions) []Entry {
	out := entries

	if q := strings.ToLower(strings.TrimSpace(opts.Search)); q != "" {
		out = make([]Entry, 0, len(entries))
		for _, e := range entries {
			if strings.Contains(strings.ToLower(e.Name), q) {
				out = append(out, e)
			}
		}
	}

	less := func(a, b Entry) bool { return a.Name < b.Name }

	switch opts.SortBy {
	case SortByUpdatedAt:
		less = func(a, b Entry) bool {
			if a.LastModified.Equal(b.LastModified) {
				return a.Name < b.Name
			}

			return a.LastModified.Before(b.LastModified)
		}
	case SortBySize:
		less = func(a, b Entry) bool {
			if a.Size == b.Size {
				return a.Name < b.Name
			}

			return a.Size < b.Size
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if opts.Desc {
			return less(out[j], out[i])
		}

		return less(out[i], out[j])
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []Entry{}
		}

		out = out[opts.Offset:]
	}

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}

	return out
}
