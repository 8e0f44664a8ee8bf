// Package mailer delivers composed invitation emails to candidates.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fmuoria/interview-invite-agent/internal/config"
)

// Subject is used for every invitation
const Subject = "Interview Invitation"

// DefaultTimeout bounds a single send
const DefaultTimeout = 30 * time.Second

var (
	// ErrConfig indicates the sender address or credential is missing.
	ErrConfig = config.ErrConfig

	// ErrAuth indicates the mail service rejected the sender credentials.
	ErrAuth = errors.New("mail authentication failed")

	// ErrConnect indicates the mail service could not be reached.
	ErrConnect = errors.New("failed to connect to mail server")

	// ErrSend indicates any other delivery failure.
	ErrSend = errors.New("failed to send email")
)

// Sender is the authenticated identity mail is sent from
type Sender struct {
	Address string
	Secret  string
}

// Message is a single-part plain text email to one recipient
type Message struct {
	From    string
	To      string
	ToName  string
	Subject string
	Body    string
}

// Transport delivers a prepared message
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher validates sender secrets and hands messages to a Transport
type Dispatcher struct {
	sender    Sender
	transport Transport
	timeout   time.Duration
	log       *slog.Logger
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithTimeout bounds a single send
func WithTimeout(d time.Duration) Option {
	return func(ds *Dispatcher) {
		if d > 0 {
			ds.timeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(ds *Dispatcher) {
		if l != nil {
			ds.log = l
		}
	}
}

// NewDispatcher creates a dispatcher sending as sender through transport
func NewDispatcher(sender Sender, transport Transport, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sender:    sender,
		transport: transport,
		timeout:   DefaultTimeout,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send emails body to recipientEmail. Missing sender secrets fail with ErrConfig before
// the transport is touched. Transport failures are reported as ErrAuth, ErrConnect or ErrSend.
func (d *Dispatcher) Send(ctx context.Context, recipientName, recipientEmail, body string) error {
	if strings.TrimSpace(d.sender.Address) == "" || strings.TrimSpace(d.sender.Secret) == "" {
		return fmt.Errorf("%w: missing sender email or password", ErrConfig)
	}
	if strings.TrimSpace(recipientEmail) == "" {
		return fmt.Errorf("%w: candidate %q has no email address", ErrSend, recipientName)
	}
	if d.transport == nil {
		return fmt.Errorf("%w: no mail transport configured", ErrConfig)
	}

	msg := Message{
		From:    d.sender.Address,
		To:      recipientEmail,
		ToName:  recipientName,
		Subject: Subject,
		Body:    body,
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	log := d.log.With(slog.String("recipient", recipientEmail))
	if err := d.transport.Send(ctx, msg); err != nil {
		err = normalize(err)
		log.Error("failed to send email", slog.String("error", err.Error()))
		return err
	}

	log.Info("email sent", slog.String("candidate", recipientName))
	return nil
}

// normalize makes sure err matches exactly one of the dispatcher sentinels
func normalize(err error) error {
	switch {
	case errors.Is(err, ErrConfig), errors.Is(err, ErrAuth), errors.Is(err, ErrConnect), errors.Is(err, ErrSend):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrSend, err)
	}
}

// Describe turns a dispatcher error into a message for the user
func Describe(err error) string {
	switch {
	case err == nil:
		return "Email sent successfully!"
	case errors.Is(err, ErrConfig):
		return "Missing sender email or password in configuration."
	case errors.Is(err, ErrAuth):
		return "Authentication with the mail server failed. Check your email credentials."
	case errors.Is(err, ErrConnect):
		return "Failed to connect to the mail server. Check your internet connection."
	default:
		return fmt.Sprintf("Failed to send email: %v", err)
	}
}
