package service

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/feyabloom/studio/pkg/browser"
	"github.com/feyabloom/studio/pkg/configs"
	"github.com/feyabloom/studio/pkg/internal/storage/object"
	"github.com/feyabloom/studio/pkg/internal/types"
	"github.com/feyabloom/studio/pkg/metrics"
	"github.com/feyabloom/studio/pkg/queue"
)

// sniffLen 内容嗅探读取的字节数，与 mimetype 的默认读取上限一致.
const sniffLen = 3072

const octetStream = "application/octet-stream"

// UploadFile 待上传的文件.
type UploadFile struct {
	Name string
	Size int64
	// ContentType 客户端声明的类型，可为空
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// Upload 按上传策略依次上传文件.
// 总大小在任何上传之前检查；单个文件不合法或上传失败时记录错误并继续处理其余文件.
func (s *MediaService) Upload(ctx context.Context, req *types.UploadRequest, files []UploadFile) (*types.UploadResponse, error) {
	name := req.Profile
	if name == "" {
		name = configs.UploadProfileManager
	}

	profile, ok := s.upload.Profile(name)
	if !ok {
		return nil, invalid("unknown upload profile %q", name)
	}

	bucketName := req.Bucket
	if profile.Bucket != "" {
		bucketName = profile.Bucket
	}

	bucket, err := s.Bucket(bucketName)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, invalid("no files provided")
	}

	if profile.MaxTotalSize > 0 {
		var total int64
		for _, f := range files {
			total += f.Size
		}

		if total > profile.MaxTotalSize {
			return nil, fmt.Errorf("%w: total size too large, maximum is %dMB", ErrPayloadTooLarge, profile.MaxTotalSize/configs.MB)
		}
	}

	dir := browser.Clean(req.Path)
	resp := &types.UploadResponse{
		Bucket:  bucket,
		Profile: name,
		Results: make([]types.UploadResult, 0, len(files)),
		URLs:    make([]string, 0, len(files)),
	}

	for _, f := range files {
		res := s.uploadOne(ctx, bucket, dir, name, profile, f)

		resp.Results = append(resp.Results, res)
		resp.Total++

		if res.Success {
			resp.Success++
			resp.URLs = append(resp.URLs, res.PublicURL)
		} else {
			resp.Failed++
		}
	}

	return resp, nil
}

func (s *MediaService) uploadOne(ctx context.Context, bucket, dir, profileName string, profile configs.UploadProfile, f UploadFile) types.UploadResult {
	_, base := browser.Split(f.Name)
	res := types.UploadResult{Name: base, Size: f.Size}

	fail := func(format string, args ...any) types.UploadResult {
		res.Error = fmt.Sprintf(format, args...)
		return res
	}

	if !browser.ValidName(base) {
		return fail("invalid file name %q", f.Name)
	}

	if profile.MaxFileSize > 0 && f.Size > profile.MaxFileSize {
		return fail("%s: file size must be less than %dMB", base, profile.MaxFileSize/configs.MB)
	}

	rc, err := f.Open()
	if err != nil {
		return fail("%s: %v", base, err)
	}
	defer rc.Close()

	head := make([]byte, sniffLen)

	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fail("%s: %v", base, err)
	}

	head = head[:n]
	ct := contentType(f.ContentType, mimetype.Detect(head), base)
	res.ContentType = ct

	if !profile.Accepts(ct) {
		return fail("%s: file type %s is not allowed", base, ct)
	}

	key := browser.Join(dir, base)
	if !profile.KeepName {
		key = browser.Join(dir, randomName(base, s.now()))
	}

	info, err := s.store.Upload(ctx, bucket, key, io.MultiReader(bytes.NewReader(head), rc), f.Size, object.UploadOptions{
		ContentType:  ct,
		CacheControl: s.storage.GetCacheControl(),
		Upsert:       profile.Upsert,
	})
	if err != nil {
		return fail("%s: %v", base, err)
	}

	metrics.UploadBytes.WithLabelValues(bucket).Add(float64(info.Size))

	res.Key = key
	res.Size = info.Size
	res.PublicURL = s.store.PublicURL(bucket, key)
	res.Success = true

	emit(ctx, s.events, s.eventsCfg().Uploaded, queue.TopicMediaUploaded, queue.MediaUploadedPayload{
		Object: queue.ObjectRef{
			Bucket:      bucket,
			Key:         key,
			ETag:        info.ETag,
			Size:        info.Size,
			ContentType: ct,
			PublicURL:   res.PublicURL,
		},
		Profile: profileName,
		Actor:   actor(ctx),
	})

	return res
}

// contentType 综合客户端声明、内容嗅探与扩展名得到内容类型.
// 声明与嗅探的大类不一致时以嗅探结果为准.
func contentType(declared string, detected *mimetype.MIME, name string) string {
	declared = baseType(declared)
	sniffed := baseType(detected.String())

	switch {
	case declared == "" || declared == octetStream:
		if sniffed == octetStream || sniffed == "text/plain" {
			if guessed := object.GuessContentType(name); guessed != "" {
				return guessed
			}
		}

		return sniffed
	case sniffed == octetStream || sniffed == "text/plain":
		return declared
	case major(declared) != major(sniffed):
		return sniffed
	default:
		return declared
	}
}

func baseType(ct string) string {
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}

	return strings.ToLower(strings.TrimSpace(ct))
}

func major(ct string) string {
	if i := strings.Index(ct, "/"); i >= 0 {
		return ct[:i]
	}

	return ct
}

// randomName 生成 <base36 随机数>-<毫秒时间戳>.<扩展名>.
func randomName(name string, now time.Time) string {
	var b [8]byte

	_, _ = crand.Read(b[:])

	out := strconv.FormatUint(binary.BigEndian.Uint64(b[:]), 36) + "-" + strconv.FormatInt(now.UnixMilli(), 10)
	if ext := browser.Ext(name); ext != "" {
		out += ext
	}

	return out
}
