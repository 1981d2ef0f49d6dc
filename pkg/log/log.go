// Package log 提供基于 zerolog 的日志工具，支持 stderr 和文件输出（lumberjack 轮转）.
//
// 调试模式下 stderr 使用易读的控制台格式，否则输出 JSON 行，便于日志采集.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/feyabloom/studio/pkg/configs"
)

var (
	logger   zerolog.Logger
	initOnce sync.Once
)

// Init 初始化全局 logger.
func Init() {
	initOnce.Do(initLogger)
}

// initLogger 实际执行一次的初始化函数.
func initLogger() {
	cfg := configs.GetConfig()
	logger = build(cfg.Log, cfg.Server.Debug, os.Stderr)

	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Logger = logger
}

// build 根据配置构造 logger，out 为标准输出目标.
func build(logCfg configs.LogConfig, debug bool, out io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(logCfg.Level))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q, defaulting to info\n", logCfg.Level)

		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)

	var writers []io.Writer

	if debug {
		writers = append(writers, zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = out
			w.TimeFormat = time.Kitchen
		}))
	} else {
		writers = append(writers, out)
	}

	if logCfg.EnableFile && logCfg.FilePath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   logCfg.FilePath,
			MaxSize:    logCfg.MaxSize,
			MaxBackups: logCfg.MaxBackups,
			MaxAge:     logCfg.MaxAge,
			Compress:   logCfg.Compress,
		})
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).With().Timestamp()
	if debug {
		ctx = ctx.Caller()
	}

	return ctx.Logger()
}

// Logger 返回全局 logger.
func Logger() *zerolog.Logger {
	initOnce.Do(initLogger)

	return &logger
}

// Component 返回带 component 字段的子 logger.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

// GinWriter 把 Gin 文本行转发为 zerolog 事件.
type GinWriter struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

func NewGinWriter(logger *zerolog.Logger, level zerolog.Level) *GinWriter {
	return &GinWriter{logger: logger, level: level}
}

func (w *GinWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}

	switch w.level {
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		w.logger.Error().Msg(msg)
	case zerolog.WarnLevel:
		w.logger.Warn().Msg(msg)
	default:
		w.logger.Info().Msg(msg)
	}

	return len(p), nil
}
