package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// -------------------------- 媒体库领域 --------------------------

// ObjectRef 标识存储桶中的对象.
type ObjectRef struct {
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	ETag        string `json:"etag,omitempty"`
	Size        int64  `json:"size,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	PublicURL   string `json:"public_url,omitempty"`
}

// MediaUploadedPayload 文件已上传.
type MediaUploadedPayload struct {
	Object ObjectRef `json:"object"`
	// Profile 上传策略名
	Profile string `json:"profile,omitempty"`
	Actor   string `json:"actor,omitempty"`
}

// MediaDeletedPayload 文件已删除.
type MediaDeletedPayload struct {
	Bucket string   `json:"bucket"`
	Keys   []string `json:"keys"`
	Actor  string   `json:"actor,omitempty"`
}

// MediaMovedPayload 文件已重命名或移动.
type MediaMovedPayload struct {
	Bucket   string `json:"bucket"`
	From     string `json:"from"`
	To       string `json:"to"`
	IntentID string `json:"intent_id,omitempty"`
	Actor    string `json:"actor,omitempty"`
}

// MediaFolderPayload 目录创建或删除.
type MediaFolderPayload struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
	// Removed 递归删除的对象数
	Removed int    `json:"removed,omitempty"`
	Actor   string `json:"actor,omitempty"`
}

// -------------------------- 项目目录领域 --------------------------

// ProjectPayload 项目保存或删除.
type ProjectPayload struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	Published bool   `json:"published"`
	Created   bool   `json:"created,omitempty"`
	Actor     string `json:"actor,omitempty"`
}

// -------------------------- 联系表单领域 --------------------------

// ContactSentPayload 联系表单已转发；不携带正文.
type ContactSentPayload struct {
	ReplyTo   string `json:"reply_to"`
	Subject   string `json:"subject"`
	ReceiptID string `json:"receipt_id,omitempty"`
	Relay     string `json:"relay"`
}
