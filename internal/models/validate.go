package models

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrValidation wraps every input validation failure.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition is returned for a reservation status change that is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names so messages match what callers submitted.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validationError converts validator output into a single ErrValidation-wrapped error.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeField(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must match %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

// ValidateMenuItem checks the fields a menu item needs before it is stored.
// Category membership is checked separately against the live category list.
func ValidateMenuItem(item MenuItem) error {
	if math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
		return fmt.Errorf("%w: price must be a number", ErrValidation)
	}
	item.Name = strings.TrimSpace(item.Name)
	if err := validate.Struct(item); err != nil {
		return validationError(err)
	}
	return nil
}

// ValidateReservation checks a reservation's visitor-supplied fields and status.
func ValidateReservation(r Reservation) error {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	if r.Status != "" && !IsValidStatus(r.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, r.Status)
	}
	return nil
}

// ValidateCategories checks every category and that ids are unique.
func ValidateCategories(cats []Category) error {
	seen := make(map[string]bool, len(cats))
	for _, c := range cats {
		if err := validate.Struct(c); err != nil {
			return validationError(err)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate category id %q", ErrValidation, c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

// ValidateConfig checks the enumerated fields of a business config.
func ValidateConfig(cfg BusinessConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if cfg.Header.Style != "" && !IsValidHeaderStyle(cfg.Header.Style) {
		return fmt.Errorf("%w: header style must be solid, gradient or glass", ErrValidation)
	}
	if cfg.Email != "" {
		if err := validate.Var(cfg.Email, "email"); err != nil {
			return fmt.Errorf("%w: email must be a valid email address", ErrValidation)
		}
	}
	return nil
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a category id from a display name ("Cold Drinks" -> "cold-drinks").
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.NewReplacer(
		"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	).Replace(s)
	s = slugInvalid.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
