// Package app 提供应用程序的初始化、运行与优雅退出.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/feyabloom/studio/pkg/api"
	"github.com/feyabloom/studio/pkg/cache"
	"github.com/feyabloom/studio/pkg/configs"
	"github.com/feyabloom/studio/pkg/internal/jobs"
	"github.com/feyabloom/studio/pkg/internal/mail"
	"github.com/feyabloom/studio/pkg/internal/model"
	"github.com/feyabloom/studio/pkg/internal/service"
	"github.com/feyabloom/studio/pkg/internal/storage"
	"github.com/feyabloom/studio/pkg/log"
	"github.com/feyabloom/studio/pkg/metrics"
	"github.com/feyabloom/studio/pkg/middleware"
	"github.com/feyabloom/studio/pkg/scheduler"
	"github.com/feyabloom/studio/pkg/tracing"
)

// shutdownTimeout 优雅退出等待时间.
const shutdownTimeout = 10 * time.Second

// App 持有 HTTP 引擎与全部后台资源.
type App struct {
	Engine *gin.Engine

	config    *configs.AppConfig
	manager   *storage.Manager
	scheduler *scheduler.Scheduler
	cancel    context.CancelFunc
}

// NewApp 加载配置并初始化存储、邮件中继、定时任务、消息消费者与路由.
func NewApp(configPath string) (*App, error) {
	if err := configs.InitConfig(configPath); err != nil {
		return nil, fmt.Errorf("init config: %w", err)
	}

	log.Init()

	config := configs.GetConfig()
	l := log.Logger()

	// 初始化追踪
	if err := tracing.InitTracer(config.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{config: config, cancel: cancel}

	fail := func(err error) (*App, error) {
		a.Close()
		return nil, err
	}

	manager, err := storage.Init(ctx, config)
	if err != nil {
		return fail(fmt.Errorf("init storage: %w", err))
	}

	a.manager = manager

	if err := prepareDB(ctx, config, manager); err != nil {
		return fail(err)
	}

	relay, err := mail.New(config.Mail, config.CircuitBreaker)
	if err != nil {
		// 联系表单返回 503，其余功能照常
		l.Warn().Err(err).Msg("mail relay unavailable")
	}

	sched, err := scheduler.NewScheduler()
	if err != nil {
		return fail(fmt.Errorf("init scheduler: %w", err))
	}

	a.scheduler = sched

	if err := jobs.RegisterJobs(sched, manager); err != nil {
		return fail(fmt.Errorf("register jobs: %w", err))
	}

	sched.Start()

	if err := jobs.RegisterConsumers(manager); err != nil {
		return fail(fmt.Errorf("register consumers: %w", err))
	}

	go func() {
		if err := manager.MQ.Run(ctx); err != nil {
			l.Error().Err(err).Msg("mq router stopped")
		}
	}()

	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.CORSMiddleware(config.Server),
		middleware.TracingMiddleware(),
		middleware.GinLoggerMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.StorageMiddleware(manager),
		middleware.MailMiddleware(relay),
		middleware.SchedulerMiddleware(sched),
		middleware.AuthMiddleware(config.Auth),
	)

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	var responseCache *cache.Cache
	if manager.KV != nil {
		responseCache = cache.NewCache(manager.KV, cache.WithNamespace(service.GalleryNamespace))
	}

	api.RegisterGroup(engine, config, responseCache)

	a.Engine = engine

	return a, nil
}

// prepareDB 按配置迁移表结构并注册 gorm 指标.
func prepareDB(ctx context.Context, config *configs.AppConfig, manager *storage.Manager) error {
	if config.DB.AutoMigrate {
		if err := manager.DB.Migrate(ctx, model.All()...); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	if config.Metrics.Enabled {
		if err := manager.DB.RegisterGORMMetrics(config.DB.Database); err != nil {
			log.Logger().Warn().Err(err).Msg("register gorm metrics failed")
		}
	}

	return nil
}

// Run 启动 HTTP 服务，ctx 取消后优雅退出并释放资源.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	errCh := make(chan error, 1)

	go func() {
		log.Logger().Info().Str("addr", srv.Addr).Str("version", configs.AppVersion).Msg("http server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Logger().Info().Msg("shutting down http server")

	return srv.Shutdown(shutdownCtx)
}

// Close 停止定时任务与消息消费，关闭存储与追踪，可重复调用.
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}

	l := log.Logger()

	if a.scheduler != nil {
		if err := a.scheduler.Shutdown(); err != nil {
			l.Warn().Err(err).Msg("scheduler shutdown failed")
		}

		a.scheduler = nil
	}

	if a.manager != nil {
		if err := a.manager.Close(); err != nil {
			l.Warn().Err(err).Msg("storage close failed")
		}

		a.manager = nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := tracing.ShutdownTracer(ctx); err != nil {
		l.Warn().Err(err).Msg("tracer shutdown failed")
	}
}
