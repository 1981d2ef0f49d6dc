package mq

import (
	"bytes"
	"errors"
	"testing"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// TestWatermillLogger 测试 watermill 日志级别映射与字段传递.
func TestWatermillLogger(t *testing.T) {
	var buf bytes.Buffer

	l := newWatermillLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	l.Info("subscriber started", watermill.LogFields{"topic": "project.saved"})
	assert.Contains(t, buf.String(), `"level":"debug"`)
	assert.Contains(t, buf.String(), `"topic":"project.saved"`)

	buf.Reset()
	l.Debug("noisy", nil)
	assert.Empty(t, buf.String())

	l.With(watermill.LogFields{"handler": "gallery"}).Error("handler failed", errors.New("boom"), nil)
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"handler":"gallery"`)
	assert.Contains(t, buf.String(), `"error":"boom"`)
}
