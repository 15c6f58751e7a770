package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vibast-solutions/ms-go-contacts/config"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// Mailer delivers transactional mail. Implementations must not share
// mutable global state; fallback handling happens per call.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

type resendSender struct {
	client *resend.Client
	from   string
}

// ResendMailer tries each configured delivery configuration in order and
// returns the last error when all fail.
type ResendMailer struct {
	senders []resendSender
}

func NewResendMailer(cfg config.MailConfig) *ResendMailer {
	senders := make([]resendSender, 0, len(cfg.Senders))
	for _, s := range cfg.Senders {
		senders = append(senders, resendSender{
			client: resend.NewClient(s.APIKey),
			from:   s.From,
		})
	}
	return &ResendMailer{senders: senders}
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, html string) error {
	if len(m.senders) == 0 {
		return errors.New("no mail delivery configuration available")
	}

	var lastErr error
	for i, sender := range m.senders {
		params := &resend.SendEmailRequest{
			From:    sender.from,
			To:      []string{to},
			Subject: subject,
			Html:    html,
		}

		_, err := sender.client.Emails.SendWithContext(ctx, params)
		if err == nil {
			if i > 0 {
				logrus.WithField("to", to).WithField("sender", i).Info("Mail delivered via fallback configuration")
			}
			return nil
		}

		lastErr = err
		logrus.WithError(err).WithField("to", to).WithField("sender", i).Warn("Mail delivery attempt failed")
	}

	return lastErr
}

// LogMailer writes mail to the log instead of sending it. Used in dev
// mode so signup flows work without a delivery provider.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, html string) error {
	logrus.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
		"body":    html,
	}).Info("Mail delivery skipped (dev mode)")
	return nil
}

func NewMailer(cfg config.MailConfig) Mailer {
	if cfg.DevMode {
		return LogMailer{}
	}
	return NewResendMailer(cfg)
}

func otpEmailBody(otp string, ttlMinutes int) (subject, html string) {
	subject = "Your OTP Code"
	html = fmt.Sprintf(`<h2>Your One-Time Password (OTP)</h2>
<p>Use the following code to verify your identity:</p>
<h1>%s</h1>
<p>This code will expire in <strong>%d minutes</strong>.</p>
<p>If you didn't request this, please ignore this email.</p>`, otp, ttlMinutes)
	return subject, html
}
