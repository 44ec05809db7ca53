package handler

import (
	"errors"
	"testing"

	"github.com/yamdb/catalogue-api/internal/core/domain"
)

func TestValidator_FieldNamesAndMessages(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&taxonRequest{Name: "", Slug: "no spaces"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := ve.Fields["name"]; len(got) != 1 || got[0] != "this field is required" {
		t.Fatalf("unexpected name errors: %v", got)
	}
	if got := ve.Fields["slug"]; len(got) != 1 {
		t.Fatalf("unexpected slug errors: %v", got)
	}

	if err := v.Validate(&taxonRequest{Name: "Drama", Slug: "drama"}); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestValidator_OptionalPatchFields(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(&userPatchRequest{}); err != nil {
		t.Fatalf("empty patch should be valid: %v", err)
	}

	bad := "no spaces allowed"
	err := v.Validate(&userPatchRequest{Username: &bad})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || len(ve.Fields["username"]) == 0 {
		t.Fatalf("expected username error, got %v", err)
	}
}

func TestValidator_RoleOneOf(t *testing.T) {
	err := NewValidator().Validate(&userCreateRequest{Username: "neo", Email: "neo@matrix.io", Role: "root"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := ve.Fields["role"]; len(got) != 1 || got[0] != "must be one of: user, moderator, admin" {
		t.Fatalf("unexpected role errors: %v", got)
	}
}
