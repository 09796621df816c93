package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that the username or email is already taken
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidPassword indicates that a password does not meet the password policy
	ErrInvalidPassword = errors.New("password does not meet policy")

	// ErrInvalidClaim indicates that the identity store rejected a claim
	ErrInvalidClaim = errors.New("invalid claim")

	// ErrTokenNotFound indicates that refresh token was not found
	ErrTokenNotFound = errors.New("refresh token not found")
)
