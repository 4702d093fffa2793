// Package smtp implements the outgoing delivery session using go-mail.
package smtp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"
)

// Config holds connection settings for the submission server.
type Config struct {
	Host     string
	Port     int
	TLS      bool // Implicit TLS (SMTPS, port 465)
	STARTTLS bool // STARTTLS upgrade (port 587)
	Username string
	Password string
}

// DeliveryError reports a failed submission. Delivery failures are fatal for
// the operation and never retried here.
type DeliveryError struct {
	Host string
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("smtp: deliver via %s: %v", e.Host, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// port returns the configured port, defaulting by TLS mode: 465 for implicit
// TLS, 587 for STARTTLS submission, 25 otherwise.
func (c *Config) port() int {
	if c.Port != 0 {
		return c.Port
	}
	switch {
	case c.TLS:
		return 465
	case c.STARTTLS:
		return 587
	default:
		return 25
	}
}

// Option is a functional option for Sender.
type Option func(*Sender)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sender) { s.logger = logger }
}

// Sender owns the outgoing connection. The underlying client is built on
// the first Send, and each Send dials, submits and disconnects; no session
// state survives between calls.
type Sender struct {
	config *Config
	logger *slog.Logger
	client *mail.Client
}

// NewSender creates a Sender. No connection is made until the first Send.
func NewSender(cfg *Config, opts ...Option) *Sender {
	s := &Sender{
		config: cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sender) ensureClient() error {
	if s.client != nil {
		return nil
	}

	opts := []mail.Option{
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.config.Username),
		mail.WithPassword(s.config.Password),
		mail.WithPort(s.config.port()),
	}
	switch {
	case s.config.TLS:
		opts = append(opts, mail.WithSSL())
	case s.config.STARTTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(s.config.Host, opts...)
	if err != nil {
		return &DeliveryError{Host: s.config.Host, Err: err}
	}
	s.client = client
	return nil
}

// Send submits m. The connection is opened lazily on the first call.
func (s *Sender) Send(ctx context.Context, m *mail.Msg) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	s.logger.Debug("sending message", "host", s.config.Host, "subject", m.GetGenHeader(mail.HeaderSubject))
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return &DeliveryError{Host: s.config.Host, Err: err}
	}
	return nil
}

// Close releases the sender. Safe to call on every exit path; closing a
// never-connected sender is a no-op.
func (s *Sender) Close() error {
	// DialAndSend closes the SMTP connection per call; dropping the client
	// is all that is left to release. Idempotent.
	s.client = nil
	return nil
}
