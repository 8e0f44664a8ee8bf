package mailer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the relay settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// SMTPTransport sends mail through an authenticated STARTTLS relay
type SMTPTransport struct {
	cfg SMTPConfig
}

var _ Transport = (*SMTPTransport)(nil)

// NewSMTPTransport creates a transport for the given relay
func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &SMTPTransport{cfg: cfg}
}

// Send dials the relay, upgrades with STARTTLS, authenticates and transmits msg
func (s *SMTPTransport) Send(ctx context.Context, msg Message) error {
	m, err := buildMsg(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTimeout(s.cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to create SMTP client: %w", ErrSend, err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return classifySMTP(err)
	}
	return nil
}

// buildMsg renders msg as a go-mail message
func buildMsg(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("%w: invalid sender address %q: %w", ErrConfig, msg.From, err)
	}
	if err := m.AddToFormat(msg.ToName, msg.To); err != nil {
		return nil, fmt.Errorf("%w: invalid recipient address %q: %w", ErrSend, msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}

// SMTP reply codes that mean the credentials were rejected
var smtpAuthCodes = map[int]bool{
	530: true, // authentication required
	534: true, // authentication mechanism too weak / app password required
	535: true, // credentials invalid
}

// classifySMTP maps a go-mail error onto the dispatcher sentinels
func classifySMTP(err error) error {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) && smtpAuthCodes[tpErr.Code] {
		return fmt.Errorf("%w: %w", ErrAuth, err)
	}

	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "smtp auth") || strings.Contains(lower, "authentication failed") ||
		strings.Contains(lower, "username and password not accepted") {
		return fmt.Errorf("%w: %w", ErrAuth, err)
	}

	var netErr net.Error
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}
	if strings.Contains(lower, "dial") || strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "no such host") {
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}

	return fmt.Errorf("%w: %w", ErrSend, err)
}
