package mailer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"strings"

	"github.com/resend/resend-go/v3"
)

// ResendTransport sends mail through the Resend HTTP API
type ResendTransport struct {
	client *resend.Client
}

var _ Transport = (*ResendTransport)(nil)

// NewResendTransport creates a transport authenticated with apiKey
func NewResendTransport(apiKey string) *ResendTransport {
	return &ResendTransport{client: resend.NewClient(apiKey)}
}

// Send implements Transport
func (r *ResendTransport) Send(ctx context.Context, msg Message) error {
	req := &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{recipient(msg)},
		Subject: msg.Subject,
		Text:    msg.Body,
	}

	if _, err := r.client.Emails.SendWithContext(ctx, req); err != nil {
		return classifyResend(err)
	}
	return nil
}

// recipient renders the To address, quoting the display name when it needs it
func recipient(msg Message) string {
	if msg.ToName == "" {
		return msg.To
	}
	return (&mail.Address{Name: msg.ToName, Address: msg.To}).String()
}

// classifyResend maps Resend client errors onto the dispatcher sentinels. The client
// reports API failures as plain errors, so the message is inspected.
func classifyResend(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}

	lower := strings.ToLower(err.Error())
	for _, marker := range []string{"api key", "unauthorized", "forbidden", "401", "403"} {
		if strings.Contains(lower, marker) {
			return fmt.Errorf("%w: %w", ErrAuth, err)
		}
	}

	return fmt.Errorf("%w: resend: %w", ErrSend, err)
}
