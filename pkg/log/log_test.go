package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/feyabloom/studio/pkg/configs"
)

// TestBuildJSON 非调试模式输出 JSON 行.
func TestBuildJSON(t *testing.T) {
	var buf bytes.Buffer

	l := build(configs.LogConfig{Level: "info"}, false, &buf)
	l.Info().Str("bucket", "media").Msg("listed")

	out := buf.String()
	if !strings.Contains(out, `"bucket":"media"`) || !strings.Contains(out, `"message":"listed"`) {
		t.Errorf("unexpected log output: %s", out)
	}
}

// TestBuildLevel 低于配置级别的日志被丢弃.
func TestBuildLevel(t *testing.T) {
	var buf bytes.Buffer

	l := build(configs.LogConfig{Level: "warn"}, false, &buf)
	l.Info().Msg("hidden")

	if buf.Len() != 0 {
		t.Errorf("info log should be filtered at warn level, got %s", buf.String())
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// TestGinWriter 测试 Gin 文本行被转发.
func TestGinWriter(t *testing.T) {
	var buf bytes.Buffer

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	l := zerolog.New(&buf)
	w := NewGinWriter(&l, zerolog.WarnLevel)

	n, err := w.Write([]byte("[GIN-debug] route registered\n"))
	if err != nil || n == 0 {
		t.Fatalf("Write() = %d, %v", n, err)
	}

	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Errorf("expected warn level, got %s", buf.String())
	}
}
