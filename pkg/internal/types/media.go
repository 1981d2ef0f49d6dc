package types

import (
	"time"

	"github.com/feyabloom/studio/pkg/browser"
	"github.com/feyabloom/studio/pkg/internal/model"
)

// ListMediaRequest 列举目录请求.
type ListMediaRequest struct {
	Bucket string `form:"bucket" json:"bucket"`
	Path   string `form:"path"   json:"path"`
	Search string `form:"search" json:"search,omitempty"` // 可选：名称子串，不区分大小写
	Accept string `form:"accept" json:"accept,omitempty"` // 可选：逗号分隔的 MIME 大类，例如 image,video
}

// MediaFolder 目录条目.
type MediaFolder struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// MediaFile 文件条目.
type MediaFile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
	PublicURL    string    `json:"public_url"`
}

// ListMediaResponse 列举目录响应，folders 与 files 互不相交.
type ListMediaResponse struct {
	Bucket      string          `json:"bucket"`
	Path        string          `json:"path"`
	Breadcrumbs []browser.Crumb `json:"breadcrumbs"`
	Folders     []MediaFolder   `json:"folders"`
	Files       []MediaFile     `json:"files"`
}

// BucketsResponse 可浏览的存储桶.
type BucketsResponse struct {
	Buckets []string `json:"buckets"`
	Default string   `json:"default"`
}

// CreateFolderRequest 新建目录请求.
type CreateFolderRequest struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"` // 父目录，根目录为空
	Name   string `binding:"required" json:"name"`
	// Marker 标记对象类型：keep 为零字节 .keep，png 为 1x1 透明 .placeholder.png
	Marker string `json:"marker,omitempty"`
}

// CreateFolderResponse 新建目录响应.
type CreateFolderResponse struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
	Marker string `json:"marker"`
}

// DeleteFolderRequest 递归删除目录请求.
type DeleteFolderRequest struct {
	Bucket string `form:"bucket" json:"bucket"`
	Path   string `binding:"required" form:"path" json:"path"`
}

// DeleteFolderResponse 递归删除目录响应.
type DeleteFolderResponse struct {
	Bucket  string `json:"bucket"`
	Path    string `json:"path"`
	Removed int    `json:"removed"`
}

// RenameFolderRequest 目录重命名请求.
type RenameFolderRequest struct {
	Bucket  string `json:"bucket"`
	Path    string `binding:"required" json:"path"`
	NewName string `binding:"required" json:"new_name"`
}

// RenameRequest 文件重命名请求.
type RenameRequest struct {
	Bucket  string `json:"bucket"`
	Path    string `binding:"required" json:"path"`
	NewName string `binding:"required" json:"new_name"`
	IfMatch string `json:"if_match,omitempty"` // 可选：源对象当前 ETag
}

// MoveRequest 移动文件请求，单个或批量.
type MoveRequest struct {
	Bucket      string   `json:"bucket"`
	Paths       []string `binding:"required" json:"paths"`
	Destination string   `json:"destination"` // 目标目录，根目录为空
	IfMatch     string   `json:"if_match,omitempty"`
}

// DeleteRequest 删除文件请求，单个或批量.
type DeleteRequest struct {
	Bucket  string   `json:"bucket"`
	Paths   []string `binding:"required" json:"paths"`
	IfMatch string   `json:"if_match,omitempty"`
}

// DeleteResponse 删除文件响应，所有路径在一次存储调用中删除.
type DeleteResponse struct {
	Bucket  string   `json:"bucket"`
	Deleted []string `json:"deleted"`
}

// MoveResult 单个对象的重命名/移动结果.
type MoveResult struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Success  bool   `json:"success"`
	Changed  bool   `json:"changed"`
	IntentID string `json:"intent_id,omitempty"`
	// Status 移动意图的最终状态；copied 表示源对象稍后由后台任务删除
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// MoveResponse 批量移动响应.
type MoveResponse struct {
	Bucket  string       `json:"bucket"`
	Results []MoveResult `json:"results"`
	Total   int          `json:"total"`
	Success int          `json:"success"`
	Failed  int          `json:"failed"`
}

// Add 追加一条结果并更新计数.
func (r *MoveResponse) Add(res MoveResult) {
	r.Results = append(r.Results, res)
	r.Total++

	if res.Success {
		r.Success++
	} else {
		r.Failed++
	}
}

// ReconcileResult 一次移动意图补偿的统计.
type ReconcileResult struct {
	Checked int `json:"checked"`
	Done    int `json:"done"`
	Failed  int `json:"failed"`
	Open    int `json:"open"`
}

// IntentsResponse 移动意图列表.
type IntentsResponse struct {
	Intents []model.MoveIntent `json:"intents"`
	Total   int                `json:"total"`
}
