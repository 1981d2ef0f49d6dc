package model

import "time"

// IntentStatus 移动意图状态.
type IntentStatus string

const (
	IntentPending IntentStatus = "pending" // 已记录，尚未复制
	IntentCopied  IntentStatus = "copied"  // 目标已写入并校验，源对象待删除
	IntentDone    IntentStatus = "done"
	IntentFailed  IntentStatus = "failed"
)

// MoveIntent 重命名或移动对象前写入的日志行，用于补偿中断的操作.
type MoveIntent struct {
	ID        string       `gorm:"primaryKey;size:26"   json:"id"`
	Bucket    string       `gorm:"size:255"             json:"bucket"`
	SrcKey    string       `gorm:"size:1024"            json:"src_key"`
	DstKey    string       `gorm:"size:1024"            json:"dst_key"`
	Status    IntentStatus `gorm:"size:16;index"        json:"status"`
	Attempts  int          `json:"attempts"`
	LastError string       `gorm:"type:text"            json:"last_error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `gorm:"index"                json:"updated_at"`
}

// Open 意图未完成.
func (m *MoveIntent) Open() bool {
	return m.Status == IntentPending || m.Status == IntentCopied
}
