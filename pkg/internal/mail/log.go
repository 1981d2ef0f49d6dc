package mail

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"sync"

	"github.com/oklog/ulid"

	nlog "github.com/feyabloom/studio/pkg/log"
)

// logEntropy 单调熵源，只在持有 LogRelay.mu 时使用.
var logEntropy = ulid.Monotonic(crand.Reader, 0)

// LogRelay 只把邮件写入日志并保存在内存中，用于开发环境与测试.
type LogRelay struct {
	mu   sync.Mutex
	sent []Message
	// Fail 非空时 Send 返回该错误
	Fail error
}

// NewLogRelay 创建日志中继.
func NewLogRelay() *LogRelay {
	return &LogRelay{}
}

func (l *LogRelay) Name() string { return "log" }

// Send 记录邮件.
func (l *LogRelay) Send(_ context.Context, msg Message) (Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Fail != nil {
		return Receipt{}, l.Fail
	}

	l.sent = append(l.sent, msg)

	id := ulid.MustNew(ulid.Now(), logEntropy).String()

	nlog.Logger().Info().
		Str("id", id).
		Strs("to", msg.To).
		Str("reply_to", msg.ReplyTo).
		Str("subject", msg.Subject).
		Msg("mail relayed to log")

	return Receipt{ID: fmt.Sprintf("log-%s", id)}, nil
}

// Sent 返回已记录的邮件副本.
func (l *LogRelay) Sent() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]Message(nil), l.sent...)
}
