package user

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailAlreadyExists  = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrDemoUserMissing     = errors.New("demo user is not seeded")
	ErrInsufficientCredits = errors.New("insufficient generation credits")
)
