// Package mail 提供联系表单使用的事务邮件中继：Resend HTTP 接口、仅写日志的开发实现与熔断包装.
package mail

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sony/gobreaker"

	"github.com/feyabloom/studio/pkg/configs"
)

var (
	// ErrRelayUnavailable 中继被熔断或未配置.
	ErrRelayUnavailable = errors.New("email relay unavailable")
	// ErrMissingAPIKey 未配置 Resend 接口密钥.
	ErrMissingAPIKey = errors.New("RESEND_API_KEY is not configured")
)

// Message 一封待发送的邮件.
type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Receipt 中继返回的回执，原样返回给调用方.
type Receipt struct {
	ID string `json:"id"`
}

// Relay 邮件中继.
type Relay interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
	Name() string
}

// New 按配置创建中继；熔断开启时包装一层 gobreaker.
func New(cfg configs.MailConfig, cb configs.CircuitBreakerConfig) (Relay, error) {
	var (
		relay Relay
		err   error
	)

	switch cfg.Provider {
	case configs.MailProviderResend:
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("RESEND_API_KEY")
		}

		relay, err = NewResend(key, cfg.BaseURL, cfg.Timeout)
	case configs.MailProviderLog, "":
		relay = NewLogRelay()
	default:
		return nil, fmt.Errorf("unsupported mail provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, err
	}

	if cb.Enabled {
		relay = WithBreaker(relay, cb)
	}

	return relay, nil
}

// breakerRelay 在中继外包一层熔断器.
type breakerRelay struct {
	next Relay
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker 用熔断器包装中继，熔断打开时返回 ErrRelayUnavailable.
func WithBreaker(next Relay, cfg configs.CircuitBreakerConfig) Relay {
	settings := gobreaker.Settings{
		Name:        "mail-" + next.Name(),
		MaxRequests: cfg.MaxRequestsInHalf,
		Interval:    time.Duration(cfg.IntervalSeconds) * time.Second,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}

			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRate
		},
	}

	return &breakerRelay{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *breakerRelay) Name() string { return b.next.Name() }

func (b *breakerRelay) Send(ctx context.Context, msg Message) (Receipt, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.next.Send(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Receipt{}, fmt.Errorf("%w: %v", ErrRelayUnavailable, err)
	}

	if err != nil {
		return Receipt{}, err
	}

	r, _ := out.(Receipt)

	return r, nil
}
