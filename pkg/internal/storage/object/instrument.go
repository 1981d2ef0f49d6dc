package object

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/feyabloom/studio/pkg/metrics"
	"github.com/feyabloom/studio/pkg/tracing"
)

// instrumented 为每次存储调用记录 span 与 studio_storage_ops_total.
type instrumented struct {
	Store
}

// Instrument 包装 Store，添加追踪与指标.
func Instrument(s Store) Store {
	if _, ok := s.(*instrumented); ok {
		return s
	}

	return &instrumented{Store: s}
}

// Unwrap 返回被包装的驱动.
func Unwrap(s Store) Store {
	if i, ok := s.(*instrumented); ok {
		return i.Store
	}

	return s
}

func observe(ctx context.Context, op, bucket, key string) (context.Context, func(error)) {
	ctx, span := tracing.StartSpan(ctx, "storage."+op, trace.WithAttributes(
		attribute.String("storage.bucket", bucket),
		attribute.String("storage.key", key),
	))

	return ctx, func(err error) {
		metrics.StorageOps.WithLabelValues(op, metrics.Result(err)).Inc()
		tracing.EndSpan(span, err)
	}
}

func (s *instrumented) List(ctx context.Context, bucket, prefix string, opts ListOptions) ([]Entry, error) {
	ctx, done := observe(ctx, "list", bucket, prefix)
	out, err := s.Store.List(ctx, bucket, prefix, opts)
	done(err)

	return out, err
}

func (s *instrumented) Upload(ctx context.Context, bucket, key string, r io.Reader, size int64, opts UploadOptions) (Info, error) {
	ctx, done := observe(ctx, "upload", bucket, key)
	info, err := s.Store.Upload(ctx, bucket, key, r, size, opts)
	done(err)

	if err == nil {
		metrics.UploadBytes.WithLabelValues(bucket).Add(float64(info.Size))
	}

	return info, err
}

func (s *instrumented) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	ctx, done := observe(ctx, "download", bucket, key)
	data, err := s.Store.Download(ctx, bucket, key)
	done(err)

	return data, err
}

func (s *instrumented) Stat(ctx context.Context, bucket, key string) (Info, error) {
	ctx, done := observe(ctx, "stat", bucket, key)
	info, err := s.Store.Stat(ctx, bucket, key)
	done(err)

	return info, err
}

func (s *instrumented) Remove(ctx context.Context, bucket string, keys []string) error {
	ctx, done := observe(ctx, "remove", bucket, "")
	err := s.Store.Remove(ctx, bucket, keys)
	done(err)

	return err
}

func (s *instrumented) Copy(ctx context.Context, bucket, src, dst string) error {
	ctx, done := observe(ctx, "copy", bucket, src)
	err := s.Store.Copy(ctx, bucket, src, dst)
	done(err)

	return err
}
