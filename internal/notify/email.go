package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/jonesrussell/goleads/internal/domain"
)

// EmailConfig holds SMTP transport settings.
type EmailConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	From     string `mapstructure:"from" yaml:"from"`
	To       string `mapstructure:"to" yaml:"to"`
}

// Enabled reports whether the config carries enough to send mail.
func (c EmailConfig) Enabled() bool {
	return c.Host != "" && c.From != "" && c.To != ""
}

// sendMailFunc is swappable in tests.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailSink delivers lead events over SMTP.
type EmailSink struct {
	cfg      EmailConfig
	sendMail sendMailFunc
}

// NewEmailSink creates an email sink from cfg.
func NewEmailSink(cfg EmailConfig) *EmailSink {
	return &EmailSink{
		cfg:      cfg,
		sendMail: smtp.SendMail,
	}
}

// Name identifies the sink in logs.
func (s *EmailSink) Name() string { return "email" }

// Send mails the event. Only lead events produce mail; other event
// types are skipped silently.
func (s *EmailSink) Send(ctx context.Context, event domain.Event) error {
	if event.Lead == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	lead := event.Lead
	subject := fmt.Sprintf("New Lead: %s from %s", lead.Identifier, lead.Target)
	body := strings.Join([]string{
		"Identifier: " + lead.Identifier,
		"Target: " + lead.Target,
		"Platform: " + lead.Platform,
		"Price: " + lead.Price,
		"First seen: " + lead.FirstSeen.Format(time.RFC3339),
	}, "\r\n")

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.cfg.From, s.cfg.To, subject, body)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	if err := s.sendMail(addr, auth, s.cfg.From, []string{s.cfg.To}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
