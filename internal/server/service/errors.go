// Package service implements the token lifecycle and claim management on
// top of the storage contracts. Handlers translate its sentinel errors into
// HTTP statuses.
package service

import "errors"

var (
	// ErrNotFound means the user, claim or refresh token does not exist
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the credentials were rejected
	ErrForbidden = errors.New("forbidden")
	// ErrBadRequest means the input failed validation
	ErrBadRequest = errors.New("bad request")
	// ErrConflict means a user with the same username or email exists
	ErrConflict = errors.New("conflict")
)
