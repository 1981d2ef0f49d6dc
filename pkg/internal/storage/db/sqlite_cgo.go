//go:build !no_sqlite && cgo

package db

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/feyabloom/studio/pkg/configs"
)

// mattn/go-sqlite3 的等待写锁参数.
const cgoBusyTimeout = "_busy_timeout=5000"

func openSQLiteCGO(dsn string) gorm.Dialector {
	return sqlite.Open(appendDSNParam(dsn, cgoBusyTimeout))
}

func init() {
	RegisterDialectorFactory(configs.SQLite, openSQLiteCGO)
}
