// =============================================================================
// Automated Invoice Generator - SMTP Transport
// =============================================================================

package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPConfig carries the connection settings for the SMTP transport.
// Username and password are optional; when empty, no authentication is
// negotiated (the local-relay case).
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPTransport sends messages through an SMTP server using go-mail.
type SMTPTransport struct {
	client *mail.Client
}

// NewSMTPTransport creates the production transport.
func NewSMTPTransport(cfg SMTPConfig) (*SMTPTransport, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return &SMTPTransport{client: client}, nil
}

// Send delivers one message, blocking until the server accepts or rejects it.
func (t *SMTPTransport) Send(ctx context.Context, msg *mail.Msg) error {
	return t.client.DialAndSendWithContext(ctx, msg)
}
