package domain

import "errors"

// Registration failures. Messages are shown to the user as-is.
var (
	ErrMissingFields    = errors.New("Email, full name, and password are required")
	ErrInvalidEmail     = errors.New("Invalid email format")
	ErrPasswordMismatch = errors.New("Passwords do not match")
	ErrPasswordTooShort = errors.New("Password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("Password must be at most 72 bytes long")
	ErrEmailTaken       = errors.New("User with this email already exists")
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("Invalid email or password.")

// Guard failures.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnauthorized    = errors.New("unauthorized")
)

// Programmer errors; correct callers never see these.
var (
	ErrInvalidUserData = errors.New("invalid user data for session creation")
	ErrNoActiveSession = errors.New("no active session to extend")
)

var ErrUserNotFound = errors.New("user not found")

// IsRegistrationError reports whether err is one of the user-correctable signup failures.
func IsRegistrationError(err error) bool {
	return errors.Is(err, ErrMissingFields) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrPasswordMismatch) ||
		errors.Is(err, ErrPasswordTooShort) ||
		errors.Is(err, ErrPasswordTooLong) ||
		errors.Is(err, ErrEmailTaken)
}
