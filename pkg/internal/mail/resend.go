package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendRelay 通过 Resend HTTP 接口发送邮件.
type ResendRelay struct {
	client *resend.Client
}

// NewResend 创建 Resend 中继，baseURL 为空时使用官方地址.
func NewResend(apiKey, baseURL string, timeout time.Duration) (*ResendRelay, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client := resend.NewCustomClient(&http.Client{Timeout: timeout}, apiKey)

	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse mail base url: %w", err)
		}

		client.BaseURL = u
	}

	return &ResendRelay{client: client}, nil
}

func (r *ResendRelay) Name() string { return "resend" }

// Send 发送一封邮件，失败时返回 Resend 给出的错误信息.
func (r *ResendRelay) Send(ctx context.Context, msg Message) (Receipt, error) {
	resp, err := r.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return Receipt{}, err
	}

	if resp == nil || resp.Id == "" {
		return Receipt{}, errors.New("Failed to send email")
	}

	return Receipt{ID: resp.Id}, nil
}
