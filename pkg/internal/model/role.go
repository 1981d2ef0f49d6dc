package model

import "time"

// RoleAdmin 管理员角色名.
const RoleAdmin = "admin"

// UserRole 用户角色行，(user_id, role) 唯一.
type UserRole struct {
	ID        uint      `gorm:"primaryKey"                            json:"id"`
	UserID    string    `gorm:"size:255;uniqueIndex:idx_user_role"    json:"user_id"`
	Role      string    `gorm:"size:64;uniqueIndex:idx_user_role"     json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
