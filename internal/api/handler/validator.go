package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yamdb/catalogue-api/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field errors are reported under their JSON names and carry the same
// messages the domain validators produce.
func NewValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return domainMessages("username", fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return domainMessages("slug", fl.Field().String()) == nil
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return err
	}
	ve := &domain.ValidationError{}
	for _, fe := range fes {
		for _, msg := range fieldError(fe) {
			ve.Add(fe.Field(), msg)
		}
	}
	return ve
}

// fieldError converts a single FieldError into human-readable messages.
func fieldError(fe validator.FieldError) []string {
	switch fe.Tag() {
	case "required":
		return []string{"this field is required"}
	case "email":
		return []string{"enter a valid email address"}
	case "max":
		return []string{fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())}
	case "oneof":
		return []string{"must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")}
	case "username", "slug":
		if s, ok := fe.Value().(string); ok {
			return domainMessages(fe.Tag(), s)
		}
	}
	return []string{fmt.Sprintf("failed validation (%s)", fe.Tag())}
}

func domainMessages(tag, value string) []string {
	ve := &domain.ValidationError{}
	switch tag {
	case "username":
		domain.ValidateUsername(value, ve)
	case "slug":
		domain.ValidateSlug(tag, value, ve)
	}
	return ve.Fields[tag]
}
