// Package model 定义持久化到关系数据库的模型：项目、用户角色与移动意图.
package model

// All 返回需要自动迁移的全部模型.
func All() []any {
	return []any{&Project{}, &UserRole{}, &MoveIntent{}}
}
