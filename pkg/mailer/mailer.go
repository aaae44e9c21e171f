// Package mailer delivers plain-text notifications over authenticated SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/wneessen/go-mail"
)

const (
	defaultHost = "smtp.gmail.com"
	defaultPort = 465

	envUsername = "GMAIL_USER"
	envPassword = "GMAIL_APP_PASSWORD"
)

// Sender is the behaviour the notifier depends on.
type Sender interface {
	Send(ctx context.Context, subject, body string) error
}

// Config holds SMTP transport settings. Username and app password default
// from the environment; From defaults to Username.
type Config struct {
	Host      string `json:",default=smtp.gmail.com"`
	Port      int    `json:",default=465"`
	Username  string `json:",optional,env=GMAIL_USER"`
	Password  string `json:",optional,env=GMAIL_APP_PASSWORD"`
	From      string `json:",optional"`
	Recipient string `json:",optional"`
}

// ResolveUsername returns the configured account username, falling back to
// the environment.
func (c *Config) ResolveUsername() string {
	if user := strings.TrimSpace(c.Username); user != "" {
		return user
	}
	return strings.TrimSpace(os.Getenv(envUsername))
}

// Validate checks that required credentials and addresses are present,
// falling back to the environment for account credentials.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		c.Host = defaultHost
	}
	if c.Port <= 0 {
		c.Port = defaultPort
	}
	if strings.TrimSpace(c.Username) == "" {
		c.Username = strings.TrimSpace(os.Getenv(envUsername))
	}
	if strings.TrimSpace(c.Password) == "" {
		c.Password = strings.TrimSpace(os.Getenv(envPassword))
	}
	if c.Username == "" || c.Password == "" {
		return errors.New("mailer config: account credentials are required (set GMAIL_USER and GMAIL_APP_PASSWORD)")
	}
	if strings.TrimSpace(c.From) == "" {
		c.From = c.Username
	}
	if strings.TrimSpace(c.Recipient) == "" {
		return errors.New("mailer config: recipient is required")
	}
	return nil
}

// Mailer sends single-recipient plain-text messages over implicit TLS.
type Mailer struct {
	cfg Config
}

var _ Sender = (*Mailer)(nil)

// New constructs a Mailer after validating configuration.
func New(cfg Config) (*Mailer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Mailer{cfg: cfg}, nil
}

// Recipient returns the configured destination address.
func (m *Mailer) Recipient() string {
	return m.cfg.Recipient
}

// Send delivers one plain-text message. The SMTP session is dialed per call;
// these pipelines send at most one message per run.
func (m *Mailer) Send(ctx context.Context, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("mailer: set from %q: %w", m.cfg.From, err)
	}
	if err := msg.To(m.cfg.Recipient); err != nil {
		return fmt.Errorf("mailer: set recipient %q: %w", m.cfg.Recipient, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("mailer: init smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", m.cfg.Recipient, err)
	}
	return nil
}
