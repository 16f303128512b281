package domain

import "errors"

var (
	ErrEmptyTitle          = errors.New("title is required")
	ErrInsufficientOptions = errors.New("at least 2 options are required")
	ErrOptionRequired      = errors.New("please select an option")
	ErrMissingCredentials  = errors.New("email and password are required")

	ErrSurveyNotFound    = errors.New("survey not found")
	ErrSurveyUnavailable = errors.New("survey not found or inactive")
	ErrOptionNotFound    = errors.New("option not found for this survey")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrUserNotFound       = errors.New("user not found")
)

var validationErrors = []error{
	ErrEmptyTitle,
	ErrInsufficientOptions,
	ErrOptionRequired,
	ErrMissingCredentials,
}

// IsValidation reports whether err is a user input problem that should be
// shown back on the submitted form.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
