package handle

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feyabloom/studio/pkg/internal/service"
	"github.com/feyabloom/studio/pkg/internal/types"
	"github.com/feyabloom/studio/pkg/log"
)

// MediaBuckets 返回可浏览的存储桶.
//
//	@Summary	存储桶列表
//	@Tags		媒体库
//	@Produce	json
//	@Success	200	{object}	types.BucketsResponse
//	@Router		/api/v1/media/buckets [get]
func MediaBuckets(c *gin.Context) {
	svc := service.NewMediaService(c.Request.Context())
	c.JSON(http.StatusOK, svc.Buckets())
}

// MediaList 列举一层目录.
//
//	@Summary		列举目录
//	@Description	返回子目录与文件两个互不相交的列表，目录标记对象不会出现在文件中
//	@Tags			媒体库
//	@Produce		json
//	@Param			bucket	query		string	false	"存储桶，默认使用 default_bucket"
//	@Param			path	query		string	false	"目录，根目录为空"
//	@Param			search	query		string	false	"名称子串"
//	@Param			accept	query		string	false	"逗号分隔的 MIME 大类"
//	@Success		200		{object}	types.ListMediaResponse
//	@Failure		400		{object}	map[string]string
//	@Router			/api/v1/media [get]
func MediaList(c *gin.Context) {
	var req types.ListMediaRequest
	handleOperation(c, "media.list", &req, func(ctx context.Context, r *types.ListMediaRequest) (*types.ListMediaResponse, error) {
		return service.NewMediaService(ctx).List(ctx, r)
	})
}

// MediaCreateFolder 新建目录（写入目录标记对象）.
//
//	@Summary	新建目录
//	@Tags		媒体库
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.CreateFolderRequest	true	"目录信息"
//	@Success	200		{object}	types.CreateFolderResponse
//	@Failure	400		{object}	map[string]string
//	@Failure	409		{object}	map[string]string
//	@Router		/api/v1/media/folders [post]
func MediaCreateFolder(c *gin.Context) {
	var req types.CreateFolderRequest
	handleOperation(c, "media.folder.create", &req, func(ctx context.Context, r *types.CreateFolderRequest) (*types.CreateFolderResponse, error) {
		return service.NewMediaService(ctx).CreateFolder(ctx, r)
	})
}

// MediaDeleteFolder 递归删除目录.
//
//	@Summary	删除目录
//	@Tags		媒体库
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.DeleteFolderRequest	true	"目录"
//	@Success	200		{object}	types.DeleteFolderResponse
//	@Router		/api/v1/media/folders [delete]
func MediaDeleteFolder(c *gin.Context) {
	var req types.DeleteFolderRequest
	handleOperation(c, "media.folder.delete", &req, func(ctx context.Context, r *types.DeleteFolderRequest) (*types.DeleteFolderResponse, error) {
		return service.NewMediaService(ctx).DeleteFolder(ctx, r)
	})
}

// MediaRenameFolder 重命名目录，逐个移动其中的对象.
//
//	@Summary	重命名目录
//	@Tags		媒体库
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.RenameFolderRequest	true	"目录与新名称"
//	@Success	200		{object}	types.MoveResponse
//	@Router		/api/v1/media/folders/rename [post]
func MediaRenameFolder(c *gin.Context) {
	var req types.RenameFolderRequest
	handleOperation(c, "media.folder.rename", &req, func(ctx context.Context, r *types.RenameFolderRequest) (*types.MoveResponse, error) {
		return service.NewMediaService(ctx).RenameFolder(ctx, r)
	})
}

// MediaRename 重命名单个文件.
//
//	@Summary	重命名文件
//	@Tags		媒体库
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.RenameRequest	true	"文件与新名称"
//	@Success	200		{object}	types.MoveResult
//	@Failure	409		{object}	map[string]string	"If-Match 不一致"
//	@Router		/api/v1/media/rename [post]
func MediaRename(c *gin.Context) {
	var req types.RenameRequest
	handleOperation(c, "media.rename", &req, func(ctx context.Context, r *types.RenameRequest) (*types.MoveResult, error) {
		if r.IfMatch == "" {
			r.IfMatch = c.GetHeader("If-Match")
		}

		return service.NewMediaService(ctx).Rename(ctx, r)
	})
}

// MediaMove 移动一个或多个文件到目标目录.
//
//	@Summary	移动文件
//	@Tags		媒体库
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.MoveRequest	true	"源路径与目标目录"
//	@Success	200		{object}	types.MoveResponse
//	@Router		/api/v1/media/move [post]
func MediaMove(c *gin.Context) {
	var req types.MoveRequest
	handleOperation(c, "media.move", &req, func(ctx context.Context, r *types.MoveRequest) (*types.MoveResponse, error) {
		if r.IfMatch == "" {
			r.IfMatch = c.GetHeader("If-Match")
		}

		return service.NewMediaService(ctx).Move(ctx, r)
	})
}

// MediaDelete 在一次存储调用中删除一个或多个文件.
//
//	@Summary	删除文件
//	@Tags		媒体库
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.DeleteRequest	true	"文件路径"
//	@Success	200		{object}	types.DeleteResponse
//	@Router		/api/v1/media [delete]
func MediaDelete(c *gin.Context) {
	var req types.DeleteRequest
	handleOperation(c, "media.delete", &req, func(ctx context.Context, r *types.DeleteRequest) (*types.DeleteResponse, error) {
		if r.IfMatch == "" {
			r.IfMatch = c.GetHeader("If-Match")
		}

		return service.NewMediaService(ctx).Delete(ctx, r)
	})
}

// MediaIntents 返回移动意图，?open=true 时只返回未完成的.
//
//	@Summary	移动意图列表
//	@Tags		媒体库
//	@Produce	json
//	@Param		open	query		bool	false	"只返回 pending / copied 状态"
//	@Success	200		{object}	types.IntentsResponse
//	@Router		/api/v1/media/intents [get]
func MediaIntents(c *gin.Context) {
	open := c.Query("open") == "true"

	intents, err := service.NewMediaService(c.Request.Context()).ListIntents(c.Request.Context(), open)
	if err != nil {
		respondError(c, "media.intents", err)
		return
	}

	c.JSON(http.StatusOK, types.IntentsResponse{Intents: intents, Total: len(intents)})
}

// MediaReconcile 立即补偿所有未完成的移动意图.
//
//	@Summary		补偿移动意图
//	@Description	续跑 pending / copied 状态的意图，执行次数达到上限的标记为 failed
//	@Tags			媒体库
//	@Produce		json
//	@Success		200	{object}	types.ReconcileResult
//	@Router			/api/v1/media/intents/reconcile [post]
func MediaReconcile(c *gin.Context) {
	res, err := service.NewMediaService(c.Request.Context()).
		ReconcileIntents(c.Request.Context(), 0, service.DefaultIntentMaxAttempts)
	if err != nil {
		respondError(c, "media.reconcile", err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// MediaUpload 通过 multipart 上传文件，文件字段为 files.
//
//	@Summary		上传文件
//	@Description	按上传策略（image / media / manager）校验并上传，单个文件失败不影响其余文件
//	@Tags			媒体库
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			files	formData	[]file	true	"上传的文件"
//	@Param			bucket	formData	string	false	"存储桶"
//	@Param			path	formData	string	false	"目标目录"
//	@Param			profile	formData	string	false	"上传策略"
//	@Success		200		{object}	types.UploadResponse
//	@Failure		400		{object}	map[string]string
//	@Failure		413		{object}	map[string]string
//	@Router			/api/v1/media/upload [post]
func MediaUpload(c *gin.Context) {
	l := log.Logger()

	form, err := c.MultipartForm()
	if err != nil {
		l.Warn().Err(err).Msg("failed to parse multipart form")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})

		return
	}

	var req types.UploadRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, "media.upload", err)
		return
	}

	headers := form.File["files"]
	files := make([]service.UploadFile, 0, len(headers))

	for _, fh := range headers {
		files = append(files, uploadFile(fh))
	}

	ctx := c.Request.Context()

	resp, err := service.NewMediaService(ctx).Upload(ctx, &req, files)
	if err != nil {
		respondError(c, "media.upload", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func uploadFile(fh *multipart.FileHeader) service.UploadFile {
	return service.UploadFile{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
