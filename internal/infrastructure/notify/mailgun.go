package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/yamdb/catalogue-api/pkg/metrics"
)

const mailgunTimeout = 10 * time.Second

// MailgunNotifier sends plain-text email through the Mailgun API.
type MailgunNotifier struct {
	client *mailgun.MailgunImpl
	sender string
}

func NewMailgunNotifier(domain, apiKey, sender string) *MailgunNotifier {
	return &MailgunNotifier{client: mailgun.NewMailgun(domain, apiKey), sender: sender}
}

func (n *MailgunNotifier) Send(ctx context.Context, to, subject, body string) error {
	msg := n.client.NewMessage(n.sender, subject, body, to)

	ctx, cancel := context.WithTimeout(ctx, mailgunTimeout)
	defer cancel()

	if _, _, err := n.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}
	metrics.NotificationsSentTotal.WithLabelValues("mailgun").Inc()
	return nil
}
