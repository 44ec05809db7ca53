package notify

import (
	"time"

	"github.com/google/uuid"
)

// EmailJob is the broker payload for one outgoing email. ID makes delivery
// idempotent across redeliveries.
type EmailJob struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func NewEmailJob(to, subject, text string) EmailJob {
	return EmailJob{
		ID:        uuid.NewString(),
		To:        to,
		Subject:   subject,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}
