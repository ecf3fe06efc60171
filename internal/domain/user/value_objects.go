package user

import (
	"regexp"
	"strings"

	"storefront-core/internal/pkg/errs"
)

var (
	ErrInvalidEmail = errs.Define("invalid email format", errs.ErrInvalidInput)
	ErrInvalidRole  = errs.Define("invalid role", errs.ErrInvalidInput)
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type Email struct {
	value string
}

func NewEmail(s string) (Email, error) {
	s = strings.TrimSpace(s)
	if !emailRegex.MatchString(s) {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: strings.ToLower(s)}, nil
}

func (e Email) Value() string {
	return e.value
}
