// Package notify owns the outbound notification channels: transactional
// mail to customers (payment-retry notices) and Telegram messages to club
// admins. Both are optional integrations; when unconfigured their calls
// short-circuit and the caller logs and continues.
package notify

import (
	"context"

	"tryouts-intake/internal/config"
	"tryouts-intake/internal/remote"
)

type Mailer interface {
	Name() string
	SendMail(ctx context.Context, to, subject, body string) error
}

type AdminNotifier interface {
	Name() string
	NotifyAdmins(ctx context.Context, text string) error
}

type DisabledMailer struct {
	Err error
}

func (d DisabledMailer) Name() string { return "disabled" }

func (d DisabledMailer) SendMail(context.Context, string, string, string) error { return d.Err }

type DisabledAdmin struct {
	Err error
}

func (d DisabledAdmin) Name() string { return "disabled" }

func (d DisabledAdmin) NotifyAdmins(context.Context, string) error { return d.Err }

// NewMailer wires the SMTP mailer, or a disabled one when unconfigured.
func NewMailer(cfg config.Config) Mailer {
	if cfg.SMTPAddr == "" || cfg.SMTPFrom == "" {
		return DisabledMailer{Err: remote.NotConfigured("smtp", "SMTP_ADDR", "SMTP_FROM")}
	}
	return NewSMTPMailer(cfg)
}

// NewAdminNotifier wires the Telegram notifier. A missing token or empty
// admin list yields the disabled notifier; a present-but-broken token is
// an error the caller decides what to do with.
func NewAdminNotifier(cfg config.Config) (AdminNotifier, error) {
	if cfg.TelegramToken == "" || len(cfg.AdminTGIDs) == 0 {
		return DisabledAdmin{Err: remote.NotConfigured("telegram", "TELEGRAM_BOT_TOKEN", "ADMIN_TG_IDS")}, nil
	}
	return NewTelegram(cfg)
}
