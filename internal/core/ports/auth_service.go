package ports

import (
	"context"

	"github.com/yamdb/catalogue-api/internal/core/domain"
)

// SignupResult echoes the identity a confirmation code was issued for.
type SignupResult struct {
	Username string
	Email    string
}

// ConfirmationService issues confirmation codes on signup.
type ConfirmationService interface {
	RequestConfirmation(ctx context.Context, username, email string) (*SignupResult, error)
}

// TokenService exchanges confirmation codes for access tokens and verifies
// presented tokens.
type TokenService interface {
	Exchange(ctx context.Context, username, confirmationCode string) (string, error)
	Verify(token string) (domain.Principal, error)
}

// Notifier delivers a message to an email address.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}
