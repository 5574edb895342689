// Package resend delivers rendered notification emails through the Resend
// API.
package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/alquipy/notifier/internal/domain"
)

var _ domain.MessageSender = (*Sender)(nil)

// Sender sends one email per dispatch, with every recipient on the same
// message.
type Sender struct {
	client *resend.Client
	from   string
}

// New returns a sender using the given API key. from is the sending
// identity, e.g. "AlquiPY <notificaciones@alquipy.com>".
func New(apiKey, from string) *Sender {
	return &Sender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *Sender) Send(ctx context.Context, subject, body string, to []string) error {
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    body,
	})
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}
