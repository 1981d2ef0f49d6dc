package object

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/feyabloom/studio/pkg/configs"
	nlog "github.com/feyabloom/studio/pkg/log"
)

func init() {
	Register(configs.StorageDriverMinio, NewMinio)
}

// Minio 基于 minio-go 的驱动，兼容任意 S3 协议服务.
type Minio struct {
	cli *minio.Client
	cfg configs.StorageConfig
}

// NewMinio 创建 minio 驱动.
func NewMinio(_ context.Context, cfg *configs.StorageConfig) (Store, error) {
	endpoint := cfg.Endpoint
	secure := cfg.UseSSL
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	lookup := minio.BucketLookupAuto
	if cfg.UsePathStyle {
		lookup = minio.BucketLookupPath
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure:       secure,
		Region:       cfg.Region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("studio", configs.AppVersion)

	nlog.Logger().Info().Str("endpoint", cfg.Endpoint).Int("bucket_count", len(cfg.Buckets)).Msg("minio connected")

	return &Minio{cli: cli, cfg: *cfg}, nil
}

// List 实现 Store.
func (s *Minio) List(ctx context.Context, bucket, prefix string, opts ListOptions) ([]Entry, error) {
	var entries []Entry

	for obj := range s.cli.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, mapMinioErr(obj.Err)
		}

		if strings.HasSuffix(obj.Key, "/") {
			entries = append(entries, folderEntry(prefix, obj.Key))
			continue
		}

		etag := strings.Trim(obj.ETag, `"`)

		ct := obj.ContentType
		if ct == "" {
			ct = GuessContentType(obj.Key)
		}

		entries = append(entries, Entry{
			ID:           firstNonEmpty(etag, obj.Key),
			Name:         strings.TrimPrefix(obj.Key, prefix),
			Key:          obj.Key,
			Size:         obj.Size,
			ContentType:  ct,
			ETag:         etag,
			LastModified: obj.LastModified,
		})
	}

	return Page(entries, opts), nil
}

// Upload 实现 Store，Upsert 为 false 时先检查对象是否存在.
func (s *Minio) Upload(ctx context.Context, bucket, key string, r io.Reader, size int64, opts UploadOptions) (Info, error) {
	if !opts.Upsert {
		if _, err := s.Stat(ctx, bucket, key); err == nil {
			return Info{}, fmt.Errorf("%w: %s", ErrObjectExists, key)
		} else if !errors.Is(err, ErrNotFound) {
			return Info{}, err
		}
	}

	ct := opts.ContentType
	if ct == "" {
		ct = GuessContentType(key)
	}

	up, err := s.cli.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  ct,
		CacheControl: opts.CacheControl,
	})
	if err != nil {
		return Info{}, mapMinioErr(err)
	}

	return Info{
		Key:          key,
		Size:         up.Size,
		ContentType:  ct,
		ETag:         strings.Trim(up.ETag, `"`),
		LastModified: up.LastModified,
	}, nil
}

// Download 实现 Store.
func (s *Minio) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := s.cli.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinioErr(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapMinioErr(err)
	}

	return data, nil
}

// Stat 实现 Store.
func (s *Minio) Stat(ctx context.Context, bucket, key string) (Info, error) {
	st, err := s.cli.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return Info{}, mapMinioErr(err)
	}

	return Info{
		Key:          key,
		Size:         st.Size,
		ContentType:  st.ContentType,
		ETag:         strings.Trim(st.ETag, `"`),
		LastModified: st.LastModified,
	}, nil
}

// Remove 实现 Store，一次批量删除请求.
func (s *Minio) Remove(ctx context.Context, bucket string, keys []string) error {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}

	close(ch)

	var errs []error

	for rerr := range s.cli.RemoveObjects(ctx, bucket, ch, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("%s: %w", rerr.ObjectName, rerr.Err))
	}

	return errors.Join(errs...)
}

// Copy 实现 Store，使用服务端复制.
func (s *Minio) Copy(ctx context.Context, bucket, src, dst string) error {
	_, err := s.cli.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: bucket, Object: dst},
		minio.CopySrcOptions{Bucket: bucket, Object: src},
	)

	return mapMinioErr(err)
}

// PublicURL 实现 Store.
func (s *Minio) PublicURL(bucket, key string) string {
	return BuildPublicURL(&s.cfg, bucket, key)
}

// EnsureBucket 实现 Store，存储桶不存在时创建.
func (s *Minio) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.cli.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}

	if exists {
		return nil
	}

	if err := s.cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}

	nlog.Logger().Info().Str("bucket", bucket).Msg("bucket created")

	return nil
}

// HealthCheck 简单的健康检查，通过列出桶来验证连接.
func (s *Minio) HealthCheck(ctx context.Context) error {
	_, err := s.cli.ListBuckets(ctx)
	return err
}

// Close 关闭客户端（无实际操作，接口兼容）.
func (s *Minio) Close() error {
	return nil
}

func mapMinioErr(err error) error {
	if err == nil {
		return nil
	}

	resp := minio.ToErrorResponse(err)

	switch {
	case resp.Code == "NoSuchKey", resp.StatusCode == http.StatusNotFound && resp.Code != "NoSuchBucket":
		return fmt.Errorf("%w: %s", ErrNotFound, resp.Key)
	case resp.Code == "NoSuchBucket":
		return fmt.Errorf("%w: %s", ErrBucketNotFound, resp.BucketName)
	case resp.Code == "NotImplemented":
		return ErrNotSupported
	}

	return err
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}

	return ""
}
