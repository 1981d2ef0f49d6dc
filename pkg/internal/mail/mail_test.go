package mail_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feyabloom/studio/pkg/configs"
	"github.com/feyabloom/studio/pkg/internal/mail"
)

// TestResendRelay 测试 Resend 中继发送的请求体与回执.
func TestResendRelay(t *testing.T) {
	var got map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		_ = sonic.Unmarshal(body, &got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer srv.Close()

	relay, err := mail.NewResend("re_test", srv.URL+"/", 5*time.Second)
	require.NoError(t, err)

	receipt, err := relay.Send(context.Background(), mail.Message{
		From:    configs.DefaultMailFrom,
		To:      []string{configs.DefaultMailTo},
		ReplyTo: "ann@example.com",
		Subject: "Contact Form: hi",
		HTML:    "<p>hello</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "email_123", receipt.ID)
	assert.Equal(t, "Contact Form: hi", got["subject"])
	assert.Equal(t, configs.DefaultMailFrom, got["from"])
}

func TestNewResendRequiresKey(t *testing.T) {
	_, err := mail.NewResend("", "", time.Second)
	assert.ErrorIs(t, err, mail.ErrMissingAPIKey)
}

// TestBreakerOpens 测试连续失败后熔断打开，不再调用下游.
func TestBreakerOpens(t *testing.T) {
	inner := mail.NewLogRelay()
	inner.Fail = errors.New("boom")

	relay := mail.WithBreaker(inner, configs.CircuitBreakerConfig{
		Enabled:           true,
		FailureRate:       0.5,
		MinRequests:       2,
		IntervalSeconds:   60,
		TimeoutSeconds:    60,
		MaxRequestsInHalf: 1,
	})

	ctx := context.Background()

	for range 2 {
		_, err := relay.Send(ctx, mail.Message{})
		require.EqualError(t, err, "boom")
	}

	_, err := relay.Send(ctx, mail.Message{})
	assert.ErrorIs(t, err, mail.ErrRelayUnavailable)
}

func TestNewLogProvider(t *testing.T) {
	cfg := configs.Default()
	cfg.Mail.Provider = configs.MailProviderLog

	relay, err := mail.New(cfg.Mail, cfg.CircuitBreaker)
	require.NoError(t, err)
	assert.Equal(t, "log", relay.Name())

	receipt, err := relay.Send(context.Background(), mail.Message{To: []string{"a@b.co"}})
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.ID)
	assert.Len(t, relay.(*mail.LogRelay).Sent(), 1)
}
