package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/envis/envis/internal/model"
)

// Validation limits.
const (
	// MaxSlugLength is the maximum length of a blog post slug.
	MaxSlugLength = 200
)

// Slug validation errors.
var (
	ErrSlugEmpty   = errors.New("slug is empty")
	ErrSlugTooLong = errors.New("slug exceeds maximum length")
	ErrSlugInvalid = errors.New("slug contains invalid characters")
)

// validSlugPattern matches valid slug characters.
// Allowed: a-z, A-Z, 0-9, hyphen, underscore
var validSlugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateSlug validates a blog post slug used as a public URL segment.
func ValidateSlug(slug string) error {
	if slug == "" {
		return ErrSlugEmpty
	}
	if len(slug) > MaxSlugLength {
		return ErrSlugTooLong
	}
	if !validSlugPattern.MatchString(slug) {
		return ErrSlugInvalid
	}
	return nil
}

// FieldError describes one failed constraint.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates every failed constraint of a request body.
type ValidationError struct {
	Fields []FieldError
}

// Error renders the failures as
// `Validation error: <message> at "<field>"; <message> at "<field>"`.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s at %q", f.Message, f.Field))
	}
	return "Validation error: " + strings.Join(parts, "; ")
}

// Validator validates request DTOs through struct tags. Field names in
// messages are taken from the json tags.
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns a Validator with the custom "slug" and
// "family_size" tags registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return ValidateSlug(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("family_size", func(fl validator.FieldLevel) bool {
		return slices.Contains(model.FamilySizes, fl.Field().String())
	})

	return &Validator{validate: v}
}

// Struct validates s. Constraint failures are returned as *ValidationError.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "required_without":
		return fmt.Sprintf("Required when %s is not provided", jsonFieldName(fe.Param()))
	case "min":
		if fe.Param() == "1" {
			return "Must not be empty"
		}
		return fmt.Sprintf("String must contain at least %s character(s)", fe.Param())
	case "max":
		return fmt.Sprintf("String must contain at most %s character(s)", fe.Param())
	case "email":
		return "Invalid email"
	case "oneof":
		return enumMessage(strings.Fields(fe.Param()))
	case "family_size":
		return enumMessage(model.FamilySizes)
	case "slug":
		return "Slug may only contain letters, numbers, hyphens and underscores"
	default:
		return "Invalid value"
	}
}

func enumMessage(values []string) string {
	opts := make([]string, len(values))
	for i, v := range values {
		opts[i] = "'" + v + "'"
	}
	return "Invalid enum value. Expected " + strings.Join(opts, " | ")
}

// jsonFieldName turns a Go field name such as PlanID into planId.
func jsonFieldName(s string) string {
	if s == "" {
		return s
	}
	if strings.HasSuffix(s, "ID") {
		s = strings.TrimSuffix(s, "ID") + "Id"
	}
	return strings.ToLower(s[:1]) + s[1:]
}
