package service_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feyabloom/studio/pkg/configs"
	"github.com/feyabloom/studio/pkg/internal/service"
	"github.com/feyabloom/studio/pkg/internal/types"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func file(name, contentType string, data []byte) service.UploadFile {
	return service.UploadFile{
		Name:        name,
		Size:        int64(len(data)),
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// TestUploadPartialSuccess 测试单个文件失败不影响其他文件.
func TestUploadPartialSuccess(t *testing.T) {
	e := newEnv(t, withConfig(func(c *configs.AppConfig) {
		p := c.Upload.Profiles[configs.UploadProfileImage]
		p.MaxFileSize = 64
		c.Upload.Profiles[configs.UploadProfileImage] = p
	}))

	resp, err := service.NewMediaService(e.ctx).Upload(e.ctx, &types.UploadRequest{Profile: configs.UploadProfileImage}, []service.UploadFile{
		file("cover.png", "image/png", pngHeader),
		file("huge.png", "image/png", bytes.Repeat([]byte{1}, 65)),
		file("notes.txt", "text/plain", []byte("hello")),
	})
	require.NoError(t, err)

	assert.Equal(t, configs.BucketProjectImages, resp.Bucket)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 1, resp.Success)
	assert.Equal(t, 2, resp.Failed)

	ok := resp.Results[0]
	assert.True(t, ok.Success)
	assert.Equal(t, "image/png", ok.ContentType)
	assert.NotEqual(t, "cover.png", ok.Key, "image profile generates a random name")
	assert.True(t, strings.HasSuffix(ok.Key, ".png"))
	assert.Equal(t, []string{"https://cdn.test/project-images/" + ok.Key}, resp.URLs)

	assert.Contains(t, resp.Results[1].Error, "huge.png: file size must be less than")
	assert.Equal(t, "notes.txt: file type text/plain is not allowed", resp.Results[2].Error)
	assert.Equal(t, []string{ok.Key}, e.keys(configs.BucketProjectImages))
}

// TestUploadTotalLimit 测试总大小超限时不上传任何文件.
func TestUploadTotalLimit(t *testing.T) {
	e := newEnv(t, withConfig(func(c *configs.AppConfig) {
		p := c.Upload.Profiles[configs.UploadProfileManager]
		p.MaxTotalSize = 40
		c.Upload.Profiles[configs.UploadProfileManager] = p
	}))

	svc := service.NewMediaService(e.ctx)
	e.mem.ResetCalls()

	_, err := svc.Upload(e.ctx, &types.UploadRequest{Bucket: "media"}, []service.UploadFile{
		file("a.png", "image/png", pngHeader),
		file("b.png", "image/png", pngHeader),
	})
	assert.ErrorIs(t, err, service.ErrPayloadTooLarge)
	assert.Empty(t, e.mem.Calls())
}

// TestUploadManagerKeepsNameAndOverwrites 测试媒体管理器保留文件名并覆盖同名对象.
func TestUploadManagerKeepsNameAndOverwrites(t *testing.T) {
	e := newEnv(t)
	e.put(t, "media", "gallery/cover.png", "old")

	resp, err := service.NewMediaService(e.ctx).Upload(e.ctx, &types.UploadRequest{Bucket: "media", Path: "gallery"}, []service.UploadFile{
		file("cover.png", "", pngHeader),
	})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Success)

	assert.Equal(t, configs.UploadProfileManager, resp.Profile)
	assert.Equal(t, "gallery/cover.png", resp.Results[0].Key)

	data, err := e.mem.Download(e.ctx, "media", "gallery/cover.png")
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

// TestUploadSniffsContent 测试声明类型与内容不符时以内容为准.
func TestUploadSniffsContent(t *testing.T) {
	e := newEnv(t)

	resp, err := service.NewMediaService(e.ctx).Upload(e.ctx, &types.UploadRequest{Profile: configs.UploadProfileMedia}, []service.UploadFile{
		file("fake.png", "image/png", []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n")),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, "fake.png: file type application/pdf is not allowed", resp.Results[0].Error)
	assert.Empty(t, e.keys("media"))
}

// TestUploadUnknownProfile 测试未知上传策略返回校验错误.
func TestUploadUnknownProfile(t *testing.T) {
	e := newEnv(t)

	_, err := service.NewMediaService(e.ctx).Upload(e.ctx, &types.UploadRequest{Profile: "avatar"}, []service.UploadFile{
		file("a.png", "image/png", pngHeader),
	})
	assert.True(t, service.IsValidation(err))
}
