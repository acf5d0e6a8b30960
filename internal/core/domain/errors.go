package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrMemberExists       = errors.New("username already exists")
	ErrMemberNotFound     = errors.New("member not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenExpired is returned when a token was valid but its exp has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers every other token failure: malformed input, bad
	// signature, unexpected algorithm, unknown claims.
	ErrTokenInvalid = errors.New("invalid token")
)
