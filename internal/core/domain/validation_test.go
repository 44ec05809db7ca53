package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	ve := &ValidationError{}
	require.NoError(t, ve.OrNil())

	ve.Add("score", "out of range")
	ve.Add("name", "required")
	ve.Add("score", "not a number")

	err := ve.OrNil()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "validation failed: name: required; score: out of range, not a number", err.Error())
}

func TestErrorKinds(t *testing.T) {
	assert.ErrorIs(t, ErrDuplicateReview, ErrValidation)
	assert.ErrorIs(t, ErrUsernameTaken, ErrConflict)
	assert.ErrorIs(t, ErrTitleNotFound, ErrNotFound)
	assert.NotErrorIs(t, ErrDuplicateReview, ErrConflict)
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		username string
		ok       bool
	}{
		{"neo", true},
		{"j.doe+test@x-y_z", true},
		{"Иван", true},
		{"me", false},
		{"", false},
		{"has space", false},
		{"semi;colon", false},
		{strings.Repeat("a", MaxUsernameLen), true},
		{strings.Repeat("a", MaxUsernameLen+1), false},
	}
	for _, tt := range tests {
		ve := &ValidationError{}
		ValidateUsername(tt.username, ve)
		assert.Equal(t, tt.ok, ve.OrNil() == nil, "username %q", tt.username)
	}
}

func TestValidateEmail(t *testing.T) {
	for email, ok := range map[string]bool{
		"neo@matrix.io": true,
		"":              false,
		"neo":           false,
		strings.Repeat("a", MaxEmailLen) + "@x.io": false,
	} {
		ve := &ValidationError{}
		ValidateEmail(email, ve)
		assert.Equal(t, ok, ve.OrNil() == nil, "email %q", email)
	}
}

func TestValidateScore(t *testing.T) {
	for score := -1; score <= 12; score++ {
		ve := &ValidationError{}
		ValidateScore(score, ve)
		assert.Equal(t, score >= MinScore && score <= MaxScore, ve.OrNil() == nil, "score %d", score)
	}
}

func TestValidateTitleYear(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	ve := &ValidationError{}
	ValidateTitleYear(2024, now, ve)
	assert.NoError(t, ve.OrNil())

	ValidateTitleYear(2025, now, ve)
	assert.Error(t, ve.OrNil())
}

func TestMeanScore(t *testing.T) {
	assert.Nil(t, MeanScore(0, 0))

	got := MeanScore(6, 2)
	require.NotNil(t, got)
	assert.InDelta(t, 3.0, *got, 1e-9)

	got = MeanScore(17, 3)
	require.NotNil(t, got)
	assert.InDelta(t, 5.6667, *got, 1e-4)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleModerator.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, RoleAnonymous.Valid())
	assert.False(t, Role("superuser").Valid())
}
