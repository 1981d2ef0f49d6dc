//go:build !no_sqlite && !cgo

package db

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/feyabloom/studio/pkg/configs"
)

// 纯 Go 驱动通过 _pragma 设置等待写锁时间，调度任务与请求会并发写入.
const pureBusyTimeout = "_pragma=busy_timeout(5000)"

func openSQLitePure(dsn string) gorm.Dialector {
	return sqlite.Open(appendDSNParam(dsn, pureBusyTimeout))
}

func init() {
	RegisterDialectorFactory(configs.SQLite, openSQLitePure)
}
