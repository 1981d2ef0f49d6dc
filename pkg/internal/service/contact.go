package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/feyabloom/studio/pkg/configs"
	ctxPkg "github.com/feyabloom/studio/pkg/context"
	"github.com/feyabloom/studio/pkg/internal/mail"
	"github.com/feyabloom/studio/pkg/internal/types"
	nlog "github.com/feyabloom/studio/pkg/log"
	"github.com/feyabloom/studio/pkg/metrics"
	"github.com/feyabloom/studio/pkg/queue"
	"github.com/feyabloom/studio/pkg/rule"
)

// contactHTML 邮件正文，参数依次为姓名、邮箱、主题、留言，均已转义.
const contactHTML = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">New Contact Form Submission</h2>
  <div style="background-color: #f9f9f9; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <p style="margin: 10px 0;"><strong>Name:</strong> %s</p>
    <p style="margin: 10px 0;"><strong>Email:</strong> %s</p>
    <p style="margin: 10px 0;"><strong>Subject:</strong> %s</p>
  </div>
  <div style="background-color: #fff; padding: 20px; border-left: 4px solid #8B7355; margin: 20px 0;">
    <p style="margin: 0;"><strong>Message:</strong></p>
    <p style="margin: 10px 0; line-height: 1.6;">%s</p>
  </div>
</div>
`

// ContactService 校验联系表单并通过邮件中继转发.
type ContactService struct {
	relay  mail.Relay
	cfg    configs.MailConfig
	events *events
}

// NewContactService 从 context 获取依赖实例；没有 MQ 时不发布事件.
func NewContactService(c context.Context) *ContactService {
	cfg := configs.GetConfig()

	var ev *events
	if mgr := ctxPkg.GetManager(c); mgr != nil {
		ev = newEvents(mgr.MQ, cfg.Events)
	}

	return &ContactService{
		relay:  ctxPkg.GetMailRelay(c),
		cfg:    cfg.Mail,
		events: ev,
	}
}

// Send 校验表单并发送一封邮件；校验失败时不发出任何网络请求.
func (s *ContactService) Send(ctx context.Context, req *types.ContactRequest) (*types.ContactResponse, error) {
	if err := rule.ValidateStruct(req); err != nil {
		metrics.ContactMessages.WithLabelValues("invalid").Inc()

		if msg := rule.First(err); msg != "" {
			return nil, &ValidationError{Message: msg}
		}

		return nil, err
	}

	if s.relay == nil {
		metrics.ContactMessages.WithLabelValues("failed").Inc()
		return nil, mail.ErrRelayUnavailable
	}

	msg := BuildContactMessage(s.cfg, req)

	receipt, err := s.relay.Send(ctx, msg)
	if err != nil {
		metrics.ContactMessages.WithLabelValues("failed").Inc()
		nlog.Logger().Error().Err(err).Str("relay", s.relay.Name()).Msg("send contact email failed")

		return nil, err
	}

	metrics.ContactMessages.WithLabelValues("sent").Inc()
	nlog.Logger().Info().Str("relay", s.relay.Name()).Str("id", receipt.ID).Msg("contact email sent")

	if s.events != nil {
		emit(ctx, s.events, s.events.cfg.Contact.Sent, queue.TopicContactSent, queue.ContactSentPayload{
			ReplyTo:   msg.ReplyTo,
			Subject:   msg.Subject,
			ReceiptID: receipt.ID,
			Relay:     s.relay.Name(),
		})
	}

	return &types.ContactResponse{ID: receipt.ID}, nil
}

// BuildContactMessage 转义全部字段并生成邮件，留言中的换行转换为 <br>.
func BuildContactMessage(cfg configs.MailConfig, req *types.ContactRequest) mail.Message {
	safeName := html.EscapeString(strings.TrimSpace(req.Name))
	safeEmail := html.EscapeString(strings.TrimSpace(req.Email))
	safeSubject := html.EscapeString(strings.TrimSpace(req.Subject))
	safeMessage := strings.ReplaceAll(html.EscapeString(strings.TrimSpace(req.Message)), "\n", "<br>")

	return mail.Message{
		From:    cfg.From,
		To:      append([]string(nil), cfg.To...),
		ReplyTo: strings.TrimSpace(req.Email),
		Subject: cfg.SubjectPrefix + safeSubject,
		HTML:    fmt.Sprintf(contactHTML, safeName, safeEmail, safeSubject, safeMessage),
	}
}
