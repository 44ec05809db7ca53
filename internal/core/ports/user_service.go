package ports

import (
	"context"

	"github.com/yamdb/catalogue-api/internal/core/domain"
)

// CreateUserInput is what an admin supplies to create an account.
type CreateUserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      domain.Role // empty means user
}

// UserPatch is a partial update. Nil fields are left untouched.
type UserPatch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *domain.Role
}

// UserService covers user administration and the self-profile endpoint.
// Every method takes the calling principal and enforces the policy itself.
type UserService interface {
	List(ctx context.Context, caller domain.Principal, filter UserFilter) (Page[*domain.User], error)
	Create(ctx context.Context, caller domain.Principal, in CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, caller domain.Principal, username string) (*domain.User, error)
	Update(ctx context.Context, caller domain.Principal, username string, patch UserPatch) (*domain.User, error)
	Delete(ctx context.Context, caller domain.Principal, username string) error

	Me(ctx context.Context, caller domain.Principal) (*domain.User, error)
	UpdateMe(ctx context.Context, caller domain.Principal, patch UserPatch) (*domain.User, error)
}
