package mq

import (
	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// watermillLogger 把 watermill 的日志写入组件 logger.
// watermill 的 Info 日志（订阅启动、路由关闭等）非常频繁，降为 Debug.
type watermillLogger struct {
	l zerolog.Logger
}

func newWatermillLogger(l zerolog.Logger) watermill.LoggerAdapter {
	return &watermillLogger{l: l}
}

func withFields(ev *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}

	return ev
}

func (w *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	withFields(w.l.Error().Err(err), fields).Msg(msg)
}

func (w *watermillLogger) Info(msg string, fields watermill.LogFields) {
	withFields(w.l.Debug(), fields).Msg(msg)
}

func (w *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	withFields(w.l.Trace(), fields).Msg(msg)
}

func (w *watermillLogger) Trace(msg string, fields watermill.LogFields) {
	withFields(w.l.Trace(), fields).Msg(msg)
}

func (w *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{l: w.l.With().Fields(map[string]any(fields)).Logger()}
}
