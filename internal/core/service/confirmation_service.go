package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
	"github.com/yamdb/catalogue-api/pkg/metrics"
)

const confirmationSubject = "YaMDb confirmation code"

// ConfirmationService registers users on first signup and (re)issues their
// confirmation code on every signup call.
type ConfirmationService struct {
	users    ports.UserRepository
	notifier ports.Notifier
	log      zerolog.Logger

	newCode  func() string
	hashCost int
}

func NewConfirmationService(users ports.UserRepository, notifier ports.Notifier, log zerolog.Logger) *ConfirmationService {
	return &ConfirmationService{
		users:    users,
		notifier: notifier,
		log:      log,
		newCode:  uuid.NewString,
		hashCost: bcrypt.DefaultCost,
	}
}

// RequestConfirmation validates the pair, gets or creates the matching user,
// stores a fresh code and hands it to the notifier. A notifier failure is
// logged and does not undo the stored code.
func (s *ConfirmationService) RequestConfirmation(ctx context.Context, username, email string) (*ports.SignupResult, error) {
	ve := &domain.ValidationError{}
	domain.ValidateUsername(username, ve)
	domain.ValidateEmail(email, ve)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	user, err := s.getOrCreate(ctx, username, email)
	if err != nil {
		return nil, err
	}

	code := s.newCode()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash confirmation code: %w", err)
	}
	if err := s.users.SetConfirmationHash(ctx, user.ID, string(hash)); err != nil {
		return nil, fmt.Errorf("store confirmation code: %w", err)
	}
	metrics.ConfirmationsIssuedTotal.Inc()

	if err := s.notifier.Send(ctx, user.Email, confirmationSubject, confirmationBody(user.Username, code)); err != nil {
		metrics.NotificationsFailedTotal.WithLabelValues("enqueue").Inc()
		s.log.Error().Err(err).Str("username", user.Username).Msg("confirmation code dispatch failed")
	}

	s.log.Info().Str("username", user.Username).Msg("confirmation code issued")
	return &ports.SignupResult{Username: user.Username, Email: user.Email}, nil
}

// getOrCreate resolves the exact (username, email) pair. Either half
// belonging to a different account is a conflict.
func (s *ConfirmationService) getOrCreate(ctx context.Context, username, email string) (*domain.User, error) {
	byName, err := s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if byName.Email != email {
			return nil, domain.ErrUsernameTaken
		}
		return byName, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:  username,
		Email:     email,
		Role:      domain.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, domain.ErrConflict) {
		// A concurrent signup may have created the very same pair.
		if winner, ferr := s.users.FindByUsername(ctx, username); ferr == nil && winner.Email == email {
			return winner, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	metrics.SignupsTotal.Inc()
	return created, nil
}

func confirmationBody(username, code string) string {
	return fmt.Sprintf("Hello, %s!\n\nYour confirmation code: %s\n\n"+
		"Exchange it for an access token at POST /api/v1/auth/token/.\n", username, code)
}
