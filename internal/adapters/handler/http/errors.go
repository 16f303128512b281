package http

import (
	"errors"

	"github.com/vncsmyrnk/survey/internal/core/domain"
)

var formMessages = []struct {
	err error
	msg string
}{
	{domain.ErrEmptyTitle, "Title is required"},
	{domain.ErrInsufficientOptions, "At least 2 options are required"},
	{domain.ErrOptionRequired, "Please select an option"},
	{domain.ErrMissingCredentials, "Email and password are required"},
	{domain.ErrEmailTaken, "Email already registered"},
	{domain.ErrInvalidCredentials, "Invalid email or password"},
}

// formMessage returns the text shown on a re-rendered form for errors caused
// by user input. ok is false for anything else.
func formMessage(err error) (string, bool) {
	for _, m := range formMessages {
		if errors.Is(err, m.err) {
			return m.msg, true
		}
	}
	return "", false
}
