// Package notify is the out-of-scope notification collaborator given a
// minimal concrete shape (§3.8): a narrow interface plus one real
// implementation over wneessen/go-mail and one no-op implementation for
// tests and offline operation. There is no teacher precedent for a
// standalone notification package — the teacher's internal/email drives
// SMTP per-tenant from a settings column; this collapses that down to one
// fixed SMTP config loaded from the environment at boot, matching the
// single-tenant shape the rest of this module already uses.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wneessen/go-mail"
)

// Notifier is the interface RequestWorkflow and the carry-over/five-day
// scheduler call against. Both only ever need a subject and a body; nothing
// downstream cares how or whether delivery happens.
type Notifier interface {
	Notify(ctx context.Context, subject, message string) error
}

// Config is the fixed SMTP configuration for the process, loaded once at
// boot. Recipients is the fixed distribution list for administrative
// notices (five-day non-compliance, carry-over lapses); RequestWorkflow's
// per-request notices go here too since there is no per-employee email
// column in the registers.
type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	UseTLS     bool
	FromEmail  string
	FromName   string
	Recipients []string
}

// LoadConfig reads SMTP settings from the environment. An empty Host means
// notifications are disabled; callers should fall back to NoopNotifier.
func LoadConfig() Config {
	cfg := Config{
		Host:      os.Getenv("SMTP_HOST"),
		Port:      587,
		Username:  os.Getenv("SMTP_USERNAME"),
		Password:  os.Getenv("SMTP_PASSWORD"),
		UseTLS:    true,
		FromEmail: os.Getenv("SMTP_FROM_EMAIL"),
		FromName:  os.Getenv("SMTP_FROM_NAME"),
	}
	if port := os.Getenv("SMTP_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			cfg.Port = n
		}
	}
	if v := os.Getenv("SMTP_USE_TLS"); v != "" {
		cfg.UseTLS = v != "false"
	}
	if v := os.Getenv("SMTP_RECIPIENTS"); v != "" {
		for _, r := range strings.Split(v, ",") {
			r = strings.TrimSpace(r)
			if r != "" {
				cfg.Recipients = append(cfg.Recipients, r)
			}
		}
	}
	return cfg
}

// IsConfigured reports whether enough of Config is present to attempt
// delivery.
func (c Config) IsConfigured() bool {
	return c.Host != "" && c.FromEmail != "" && len(c.Recipients) > 0
}

// MailNotifier sends notifications by email via go-mail. Construct it only
// when Config.IsConfigured(); callers that want best-effort operation
// without SMTP should use NoopNotifier instead.
type MailNotifier struct {
	cfg Config
}

func NewMailNotifier(cfg Config) *MailNotifier {
	return &MailNotifier{cfg: cfg}
}

// Notify sends subject/message to every configured recipient. It does not
// retry; callers that need delivery guarantees should queue externally.
func (n *MailNotifier) Notify(ctx context.Context, subject, message string) error {
	m := mail.NewMsg()
	if n.cfg.FromName != "" {
		if err := m.FromFormat(n.cfg.FromName, n.cfg.FromEmail); err != nil {
			return fmt.Errorf("notify: invalid from address: %w", err)
		}
	} else if err := m.From(n.cfg.FromEmail); err != nil {
		return fmt.Errorf("notify: invalid from address: %w", err)
	}
	if err := m.To(n.cfg.Recipients...); err != nil {
		return fmt.Errorf("notify: invalid recipient address: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, message)

	client, err := n.client()
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	if err := client.DialAndSend(m); err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	return nil
}

func (n *MailNotifier) client() (*mail.Client, error) {
	opts := []mail.Option{mail.WithPort(n.cfg.Port)}
	if n.cfg.Username != "" {
		opts = append(opts, mail.WithSMTPAuth(mail.SMTPAuthPlain))
		opts = append(opts, mail.WithUsername(n.cfg.Username))
		opts = append(opts, mail.WithPassword(n.cfg.Password))
	}
	if n.cfg.UseTLS {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
		opts = append(opts, mail.WithTLSConfig(&tls.Config{
			ServerName: n.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}))
	}
	return mail.NewClient(n.cfg.Host, opts...)
}

// NoopNotifier discards every notification. Used in tests and whenever SMTP
// is not configured, so RequestWorkflow and the scheduler can call a real
// Notifier without this package dictating delivery semantics.
type NoopNotifier struct{}

func (NoopNotifier) Notify(ctx context.Context, subject, message string) error { return nil }

// New picks MailNotifier when cfg is usable, NoopNotifier otherwise.
func New(cfg Config) Notifier {
	if cfg.IsConfigured() {
		return NewMailNotifier(cfg)
	}
	return NoopNotifier{}
}
