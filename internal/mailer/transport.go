package mailer

import (
	"fmt"
	"log/slog"

	"github.com/fmuoria/interview-invite-agent/internal/config"
)

// NewTransport builds the transport selected by cfg.Transport
func NewTransport(cfg config.MailConfig, log *slog.Logger) (Transport, error) {
	switch cfg.Transport {
	case config.TransportSMTP, "":
		return NewSMTPTransport(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SenderEmail,
			Password: cfg.SenderPassword,
			Timeout:  cfg.Timeout(),
		}), nil
	case config.TransportGmail:
		return NewGmailTransport(GmailConfig{
			CredentialsPath: cfg.GmailCredentialsPath,
			TokenPath:       cfg.GmailTokenPath,
			Log:             log,
		}), nil
	case config.TransportResend:
		return NewResendTransport(cfg.ResendAPIKey), nil
	default:
		return nil, fmt.Errorf("%w: unknown mail transport %q", ErrConfig, cfg.Transport)
	}
}

// NewFromConfig builds a dispatcher and its transport from cfg
func NewFromConfig(cfg config.MailConfig, log *slog.Logger) (*Dispatcher, error) {
	transport, err := NewTransport(cfg, log)
	if err != nil {
		return nil, err
	}
	sender := Sender{Address: cfg.SenderEmail, Secret: cfg.Secret()}
	return NewDispatcher(sender, transport, WithTimeout(cfg.Timeout()), WithLogger(log)), nil
}
