package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var ErrMissingAPIKey = errors.New("mail: sendgrid api key is required")

// SendGridTransport delivers messages through the SendGrid v3 API.
type SendGridTransport struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

// NewSendGridTransport creates a transport sending as fromName <from>.
func NewSendGridTransport(apiKey, from, fromName string) (*SendGridTransport, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	return &SendGridTransport{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail(fromName, from),
	}, nil
}

// WithBaseURL points the transport at another API host (a regional
// endpoint, or a stub in tests).
func (t *SendGridTransport) WithBaseURL(host string) *SendGridTransport {
	t.client.BaseURL = strings.TrimRight(host, "/") + "/v3/mail/send"
	return t
}

func (t *SendGridTransport) Send(ctx context.Context, msg Message) error {
	m := sgmail.NewSingleEmail(t.from, msg.Subject, sgmail.NewEmail("", msg.To), msg.Text, msg.HTML)

	resp, err := t.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
