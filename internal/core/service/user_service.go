package service

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

// UserService implements user administration and the self-profile endpoint.
type UserService struct {
	users ports.UserRepository
	log   zerolog.Logger
}

func NewUserService(users ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{users: users, log: log}
}

func (s *UserService) List(ctx context.Context, caller domain.Principal, filter ports.UserFilter) (ports.Page[*domain.User], error) {
	if err := authorize(caller, false, http.MethodGet, domain.ResourceUsers); err != nil {
		return ports.Page[*domain.User]{}, err
	}
	filter.PageRequest = filter.PageRequest.Normalize()
	items, total, err := s.users.List(ctx, filter)
	if err != nil {
		return ports.Page[*domain.User]{}, err
	}
	return ports.NewPage(items, total, filter.PageRequest), nil
}

func (s *UserService) Create(ctx context.Context, caller domain.Principal, in ports.CreateUserInput) (*domain.User, error) {
	if err := authorize(caller, false, http.MethodPost, domain.ResourceUsers); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = domain.RoleUser
	}

	ve := &domain.ValidationError{}
	domain.ValidateUsername(in.Username, ve)
	domain.ValidateEmail(in.Email, ve)
	domain.ValidateProfile(in.FirstName, in.LastName, ve)
	domain.ValidateRole(in.Role, ve)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user, err := s.users.Create(ctx, &domain.User{
		Username:  in.Username,
		Email:     in.Email,
		Role:      in.Role,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("user created by admin")
	return user, nil
}

func (s *UserService) Get(ctx context.Context, caller domain.Principal, username string) (*domain.User, error) {
	if err := authorize(caller, false, http.MethodGet, domain.ResourceUsers); err != nil {
		return nil, err
	}
	return s.users.FindByUsername(ctx, username)
}

func (s *UserService) Update(ctx context.Context, caller domain.Principal, username string, patch ports.UserPatch) (*domain.User, error) {
	if err := authorize(caller, false, http.MethodPatch, domain.ResourceUsers); err != nil {
		return nil, err
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, user, patch)
}

func (s *UserService) Delete(ctx context.Context, caller domain.Principal, username string) error {
	if err := authorize(caller, false, http.MethodDelete, domain.ResourceUsers); err != nil {
		return err
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}
	s.log.Info().Str("username", username).Msg("user deleted")
	return nil
}

// Me returns the caller's own record.
func (s *UserService) Me(ctx context.Context, caller domain.Principal) (*domain.User, error) {
	if err := authorize(caller, true, http.MethodGet, domain.ResourceSelf); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, caller.UserID)
}

// UpdateMe applies a partial update to the caller's own record. A submitted
// role is replaced by the stored one: the request succeeds and the role does
// not change.
func (s *UserService) UpdateMe(ctx context.Context, caller domain.Principal, patch ports.UserPatch) (*domain.User, error) {
	if err := authorize(caller, true, http.MethodPatch, domain.ResourceSelf); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if patch.Role != nil && *patch.Role != user.Role {
		s.log.Warn().Str("username", user.Username).Str("requested_role", string(*patch.Role)).
			Msg("self role change ignored")
	}
	current := user.Role
	patch.Role = &current
	return s.apply(ctx, user, patch)
}

func (s *UserService) apply(ctx context.Context, user *domain.User, patch ports.UserPatch) (*domain.User, error) {
	updated := *user
	if patch.Username != nil {
		updated.Username = *patch.Username
	}
	if patch.Email != nil {
		updated.Email = *patch.Email
	}
	if patch.FirstName != nil {
		updated.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		updated.LastName = *patch.LastName
	}
	if patch.Bio != nil {
		updated.Bio = *patch.Bio
	}
	if patch.Role != nil {
		updated.Role = *patch.Role
	}

	ve := &domain.ValidationError{}
	domain.ValidateUsername(updated.Username, ve)
	domain.ValidateEmail(updated.Email, ve)
	domain.ValidateProfile(updated.FirstName, updated.LastName, ve)
	domain.ValidateRole(updated.Role, ve)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	updated.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, &updated)
}
