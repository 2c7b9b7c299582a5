package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"tryouts-intake/internal/config"
	"tryouts-intake/internal/remote"
)

// SMTPMailer sends plain-text transactional mail over a single SMTP
// connection per message. No queue, no retries: a failed send is the
// caller's to log and drop.
type SMTPMailer struct {
	addr     string
	username string
	password string
	from     string
	timeout  time.Duration
}

func NewSMTPMailer(cfg config.Config) *SMTPMailer {
	timeout := cfg.RemoteTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMTPMailer{
		addr:     cfg.SMTPAddr,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		timeout:  timeout,
	}
}

func (m *SMTPMailer) Name() string { return "smtp" }

func (m *SMTPMailer) SendMail(ctx context.Context, to, subject, body string) error {
	conn, err := net.DialTimeout("tcp", m.addr, m.timeout)
	if err != nil {
		return &remote.Error{Kind: remote.KindNetwork, Service: "smtp", Op: "send_mail", Err: err}
	}
	// One deadline covers the whole exchange; net/smtp itself has no
	// context support.
	_ = conn.SetDeadline(time.Now().Add(m.timeout))

	host, _, err := net.SplitHostPort(m.addr)
	if err != nil {
		host = m.addr
	}
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return &remote.Error{Kind: remote.KindNetwork, Service: "smtp", Op: "send_mail", Err: err}
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return &remote.Error{Kind: remote.KindNetwork, Service: "smtp", Op: "send_mail", Err: err}
		}
	}
	if m.username != "" {
		auth := smtp.PlainAuth("", m.username, m.password, host)
		if err := c.Auth(auth); err != nil {
			return &remote.Error{Kind: remote.KindAuth, Service: "smtp", Op: "send_mail", Err: err}
		}
	}

	if err := c.Mail(m.from); err != nil {
		return &remote.Error{Kind: remote.KindInvalidRequest, Service: "smtp", Op: "send_mail", Err: err}
	}
	if err := c.Rcpt(to); err != nil {
		return &remote.Error{Kind: remote.KindInvalidRequest, Service: "smtp", Op: "send_mail", Err: err}
	}
	w, err := c.Data()
	if err != nil {
		return &remote.Error{Kind: remote.KindNetwork, Service: "smtp", Op: "send_mail", Err: err}
	}
	if _, err := w.Write(buildMessage(m.from, to, subject, body)); err != nil {
		w.Close()
		return &remote.Error{Kind: remote.KindNetwork, Service: "smtp", Op: "send_mail", Err: err}
	}
	if err := w.Close(); err != nil {
		return &remote.Error{Kind: remote.KindNetwork, Service: "smtp", Op: "send_mail", Err: err}
	}
	return c.Quit()
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}
