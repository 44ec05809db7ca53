package ports

import (
	"context"

	"github.com/yamdb/catalogue-api/internal/core/domain"
)

// UserFilter narrows a user listing. Search is a case-insensitive substring
// of the username.
type UserFilter struct {
	Search string
	PageRequest
}

// UserRepository is the identity store. Username and email uniqueness are
// enforced independently: Create and Update report domain.ErrUsernameTaken or
// domain.ErrEmailTaken.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]*domain.User, int64, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error

	// SetConfirmationHash replaces the stored confirmation hash in a single
	// write. Concurrent calls for the same user resolve last-writer-wins.
	SetConfirmationHash(ctx context.Context, userID, hash string) error
}
