// Package db 处理数据库存储操作，项目、角色与移动意图表都通过这里的 GORM 客户端访问.
package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	gormPrometheus "gorm.io/plugin/prometheus"

	"github.com/feyabloom/studio/pkg/configs"
	nlog "github.com/feyabloom/studio/pkg/log"
)

// DialectorFactory 定义创建 dialector 的函数类型.
type DialectorFactory func(dsn string) gorm.Dialector

var (
	factoriesMu sync.RWMutex
	// dialectorFactories 存储数据库类型到 dialector 工厂的映射.
	dialectorFactories = map[configs.DBType]DialectorFactory{}
)

// RegisterDialectorFactory 注册数据库 dialector 工厂函数.
func RegisterDialectorFactory(dbType configs.DBType, factory DialectorFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	dialectorFactories[dbType] = factory
}

// GetRegisteredDBTypes 返回已注册的数据库类型列表.
func GetRegisteredDBTypes() []configs.DBType {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	types := make([]configs.DBType, 0, len(dialectorFactories))
	for dbType := range dialectorFactories {
		types = append(types, dbType)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// Client 包装 GORM DB 客户端.
type Client struct {
	*gorm.DB
}

// New 按配置打开数据库并检查连通性.
func New(ctx context.Context, cfg *configs.DBConfig) (*Client, error) {
	dsn := cfg.GetDSN()
	if dsn == "" {
		return nil, fmt.Errorf("failed to generate DSN for database type: %s", cfg.Type)
	}

	factoriesMu.RLock()
	factory, exists := dialectorFactories[cfg.Type]
	factoriesMu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	level := logger.Warn
	if configs.GetConfig().Server.Debug {
		level = logger.Info
	}

	// gorm 日志写入 zerolog
	gormLogger := logger.New(
		nlog.Logger(),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(factory(dsn), &gorm.Config{
		Logger:      gormLogger,
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns(cfg, dsn))

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	client := &Client{DB: db}

	if configs.GetConfig().Metrics.Enabled {
		if err := client.RegisterGORMMetrics(cfg.Database); err != nil {
			return nil, fmt.Errorf("failed to register GORM metrics: %w", err)
		}

		nlog.Logger().Info().Msg("GORM metrics 注册成功")
	}

	nlog.Logger().Info().
		Str("type", cfg.GetDBType()).
		Str("host", cfg.Host).
		Str("database", cfg.Database).
		Msg("数据库连接成功")

	return client, nil
}

// GetDB 返回 GORM DB 实例.
func (c *Client) GetDB() *gorm.DB {
	return c.DB
}

// Migrate 自动迁移表结构.
func (c *Client) Migrate(ctx context.Context, models ...any) error {
	if err := c.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}

// HealthCheck 检查数据库连通性.
func (c *Client) HealthCheck(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// Close 关闭底层连接.
func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

const defaultGORMMetricsRefreshInterval = 15 // 秒

// RegisterGORMMetrics 注册GORM指标到现有注册表.
func (c *Client) RegisterGORMMetrics(dbName string) error {
	promConfig := gormPrometheus.Config{
		DBName:          dbName,
		RefreshInterval: defaultGORMMetricsRefreshInterval,
		StartServer:     false, // 不启动独立的服务器
	}

	if err := c.Use(gormPrometheus.New(promConfig)); err != nil {
		return fmt.Errorf("failed to register GORM prometheus plugin: %w", err)
	}

	return nil
}

// appendDSNParam 在 DSN 上追加查询参数，同名参数已存在时保持不变.
func appendDSNParam(dsn, param string) string {
	name, _, _ := strings.Cut(param, "=")
	if strings.Contains(dsn, "?"+name+"=") || strings.Contains(dsn, "&"+name+"=") {
		return dsn
	}

	if strings.Contains(dsn, "?") {
		return dsn + "&" + param
	}

	return dsn + "?" + param
}

// maxIdleConns 内存 SQLite 在最后一个连接关闭时即被销毁，至少保留一个空闲连接.
func maxIdleConns(cfg *configs.DBConfig, dsn string) int {
	if cfg.Type == configs.SQLite && strings.Contains(dsn, "mode=memory") && cfg.MaxIdleConns < 1 {
		return 1
	}

	return cfg.MaxIdleConns
}
