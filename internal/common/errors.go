// Package common contains shared sentinel errors and helpers used across
// CredShield components.
package common

import "errors"

var (

	// repository specific errors
	ErrNotFound         = errors.New("not found")
	ErrIncompleteRecord = errors.New("incomplete credential record")
	ErrDuplicateUser    = errors.New("username already exists")

	// protocol specific errors
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIntegrityFault     = errors.New("credential integrity fault")
	ErrOracleUnavailable  = errors.New("crypto oracle unavailable")
	ErrInternal           = errors.New("internal error")

	// token specific errors
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)
