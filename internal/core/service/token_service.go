package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
	"github.com/yamdb/catalogue-api/pkg/metrics"
)

const (
	defaultTokenTTL = 24 * time.Hour
	tokenLeeway     = 30 * time.Second
)

// Claims is the payload of an access token. The role is a snapshot taken at
// mint time; role changes apply from the next exchange on.
type Claims struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenConfig holds the signing parameters.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// TokenService mints and verifies HS256 access tokens.
type TokenService struct {
	users  ports.UserRepository
	cfg    TokenConfig
	log    zerolog.Logger
	now    func() time.Time
	secret []byte
}

func NewTokenService(users ports.UserRepository, cfg TokenConfig, log zerolog.Logger) *TokenService {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTokenTTL
	}
	return &TokenService{users: users, cfg: cfg, log: log, now: time.Now, secret: []byte(cfg.Secret)}
}

// Exchange verifies the confirmation code of username and returns a signed
// token. The stored code stays valid after a successful exchange.
func (s *TokenService) Exchange(ctx context.Context, username, code string) (string, error) {
	ve := &domain.ValidationError{}
	if username == "" {
		ve.Add("username", "this field is required")
	}
	if code == "" {
		ve.Add("confirmation_code", "this field is required")
	}
	if err := ve.OrNil(); err != nil {
		return "", err
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.TokenExchangesTotal.WithLabelValues("unknown_user").Inc()
		}
		return "", err
	}

	if user.ConfirmationHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.ConfirmationHash), []byte(code)) != nil {
		metrics.TokenExchangesTotal.WithLabelValues("invalid_code").Inc()
		s.log.Warn().Str("username", username).Msg("confirmation code mismatch")
		return "", domain.ErrInvalidCredential
	}

	token, err := s.mint(user)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	metrics.TokenExchangesTotal.WithLabelValues("ok").Inc()
	return token, nil
}

func (s *TokenService) mint(user *domain.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature, issuer and expiry and returns the principal the
// token was minted for. Any failure is domain.ErrInvalidCredential.
func (s *TokenService) Verify(token string) (domain.Principal, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(tokenLeeway),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return domain.Principal{}, domain.ErrInvalidCredential
	}
	if claims.UserID == "" || !claims.Role.Valid() {
		return domain.Principal{}, domain.ErrInvalidCredential
	}
	return domain.Principal{UserID: claims.UserID, Role: claims.Role}, nil
}
