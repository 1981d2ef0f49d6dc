package object

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/feyabloom/studio/pkg/configs"
	nlog "github.com/feyabloom/studio/pkg/log"
)

// maxDeleteBatch DeleteObjects 单次请求的最大对象数.
const maxDeleteBatch = 1000

func init() {
	Register(configs.StorageDriverS3, NewS3)
}

// S3 基于 aws-sdk-go-v2 的驱动，适用于 AWS S3 与 Cloudflare R2.
type S3 struct {
	cli *s3.Client
	cfg configs.StorageConfig
}

// NewS3 创建 s3 驱动.
func NewS3(ctx context.Context, cfg *configs.StorageConfig) (Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := cfg.GetEndpointURL()
	cli := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}

		o.UsePathStyle = cfg.UsePathStyle
	})

	nlog.Logger().Info().Str("endpoint", endpoint).Str("region", cfg.Region).Msg("s3 client created")

	return &S3{cli: cli, cfg: *cfg}, nil
}

// List 实现 Store.
func (s *S3) List(ctx context.Context, bucket, prefix string, opts ListOptions) ([]Entry, error) {
	p := s3.NewListObjectsV2Paginator(s.cli, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	var entries []Entry

	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, mapS3Err(err, bucket, prefix)
		}

		for _, cp := range page.CommonPrefixes {
			entries = append(entries, folderEntry(prefix, aws.ToString(cp.Prefix)))
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				continue
			}

			etag := strings.Trim(aws.ToString(obj.ETag), `"`)
			entries = append(entries, Entry{
				ID:           firstNonEmpty(etag, key),
				Name:         strings.TrimPrefix(key, prefix),
				Key:          key,
				Size:         aws.ToInt64(obj.Size),
				ContentType:  GuessContentType(key),
				ETag:         etag,
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	return Page(entries, opts), nil
}

// Upload 实现 Store，Upsert 为 false 时先检查对象是否存在.
func (s *S3) Upload(ctx context.Context, bucket, key string, r io.Reader, size int64, opts UploadOptions) (Info, error) {
	if !opts.Upsert {
		if _, err := s.Stat(ctx, bucket, key); err == nil {
			return Info{}, fmt.Errorf("%w: %s", ErrObjectExists, key)
		} else if !errors.Is(err, ErrNotFound) {
			return Info{}, err
		}
	}

	// 非 TLS 端点下签名需要可回退的 Body
	body, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return Info{}, err
		}

		body = bytes.NewReader(data)
		size = int64(len(data))
	}

	ct := opts.ContentType
	if ct == "" {
		ct = GuessContentType(key)
	}

	in := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(ct),
	}
	if opts.CacheControl != "" {
		in.CacheControl = aws.String(opts.CacheControl)
	}

	out, err := s.cli.PutObject(ctx, in)
	if err != nil {
		return Info{}, mapS3Err(err, bucket, key)
	}

	return Info{
		Key:         key,
		Size:        size,
		ContentType: ct,
		ETag:        strings.Trim(aws.ToString(out.ETag), `"`),
	}, nil
}

// Download 实现 Store.
func (s *S3) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.cli.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapS3Err(err, bucket, key)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// Stat 实现 Store.
func (s *S3) Stat(ctx context.Context, bucket, key string) (Info, error) {
	out, err := s.cli.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Info{}, mapS3Err(err, bucket, key)
	}

	return Info{
		Key:          key,
		Size:         aws.ToInt64(out.ContentLength),
		ContentType:  aws.ToString(out.ContentType),
		ETag:         strings.Trim(aws.ToString(out.ETag), `"`),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

// Remove 实现 Store，每 1000 个键一次 DeleteObjects 请求.
func (s *S3) Remove(ctx context.Context, bucket string, keys []string) error {
	var errs []error

	for start := 0; start < len(keys); start += maxDeleteBatch {
		end := min(start+maxDeleteBatch, len(keys))

		ids := make([]types.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			ids = append(ids, types.ObjectIdentifier{Key: aws.String(k)})
		}

		out, err := s.cli.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return mapS3Err(err, bucket, "")
		}

		for _, e := range out.Errors {
			errs = append(errs, fmt.Errorf("%s: %s", aws.ToString(e.Key), aws.ToString(e.Message)))
		}
	}

	return errors.Join(errs...)
}

// Copy 实现 Store，使用服务端复制.
func (s *S3) Copy(ctx context.Context, bucket, src, dst string) error {
	_, err := s.cli.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(bucket),
		CopySource: aws.String(url.PathEscape(bucket) + "/" + EscapeKey(src)),
		Key:        aws.String(dst),
	})

	return mapS3Err(err, bucket, src)
}

// PublicURL 实现 Store.
func (s *S3) PublicURL(bucket, key string) string {
	return BuildPublicURL(&s.cfg, bucket, key)
}

// EnsureBucket 实现 Store，存储桶不存在时创建.
func (s *S3) EnsureBucket(ctx context.Context, bucket string) error {
	_, err := s.cli.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return nil
	}

	var nf *types.NotFound
	if !errors.As(err, &nf) {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}

	if _, err := s.cli.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}

	nlog.Logger().Info().Str("bucket", bucket).Msg("bucket created")

	return nil
}

// HealthCheck 实现 Store.
func (s *S3) HealthCheck(ctx context.Context) error {
	_, err := s.cli.ListBuckets(ctx, &s3.ListBucketsInput{})
	return err
}

// Close 实现 Store.
func (s *S3) Close() error {
	return nil
}

func mapS3Err(err error, bucket, key string) error {
	if err == nil {
		return nil
	}

	var (
		noKey    *types.NoSuchKey
		notFound *types.NotFound
		noBucket *types.NoSuchBucket
	)

	switch {
	case errors.As(err, &noKey), errors.As(err, &notFound):
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	case errors.As(err, &noBucket):
		return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}

	return err
}
