// Package storage 聚合应用使用的存储资源：对象存储、数据库、键值存储与消息队列.
//
// Example:
//
//	mgr, err := storage.Init(ctx, configs.GetConfig())
//	if err != nil {
//		// 处理错误
//	}
//	defer mgr.Close()
//
//	entries, err := mgr.Objects.List(ctx, "media", "", object.ListOptions{Limit: 1000})
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/feyabloom/studio/pkg/configs"
	dbc "github.com/feyabloom/studio/pkg/internal/storage/db"
	kvc "github.com/feyabloom/studio/pkg/internal/storage/kv"
	mqc "github.com/feyabloom/studio/pkg/internal/storage/mq"
	"github.com/feyabloom/studio/pkg/internal/storage/object"
	nlog "github.com/feyabloom/studio/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	Objects object.Store
	DB      *dbc.Client
	KV      *kvc.Client
	MQ      *mqc.Client
	// Storage 对象存储配置，用于默认桶与公开地址
	Storage configs.StorageConfig
}

// Init 按配置初始化所有存储资源，任一失败时关闭已打开的资源.
func Init(ctx context.Context, cfg *configs.AppConfig) (*Manager, error) {
	m := &Manager{Storage: cfg.Storage}

	fail := func(err error) (*Manager, error) {
		_ = m.Close()
		return nil, err
	}

	db, err := dbc.New(ctx, &cfg.DB)
	if err != nil {
		return fail(fmt.Errorf("init db: %w", err))
	}

	m.DB = db

	store, err := object.New(ctx, &cfg.Storage)
	if err != nil {
		return fail(err)
	}

	m.Objects = object.Instrument(store)

	kv, err := kvc.NewKVClient(ctx, &cfg.KV)
	if err != nil {
		return fail(fmt.Errorf("init kv: %w", err))
	}

	m.KV = kv

	mq, err := mqc.New(ctx, &cfg.MQ)
	if err != nil {
		return fail(err)
	}

	m.MQ = mq

	nlog.Logger().Info().
		Str("storage", string(cfg.Storage.Driver)).
		Str("db", cfg.DB.GetDBType()).
		Str("kv", cfg.KV.Type).
		Str("mq", string(cfg.MQ.Type)).
		Msg("storage manager initialized")

	return m, nil
}

// GetObjectStore 获取对象存储.
func (m *Manager) GetObjectStore() object.Store {
	return m.Objects
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// Close 关闭所有已打开的资源.
func (m *Manager) Close() error {
	var errs []error

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
	}

	if m.KV != nil {
		errs = append(errs, m.KV.Close())
	}

	if m.Objects != nil {
		errs = append(errs, m.Objects.Close())
	}

	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}

	return errors.Join(errs...)
}
