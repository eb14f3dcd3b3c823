package oracle

import (
	"errors"
	"fmt"

	"github.com/itoqsky/credshield/internal/common"
)

// ErrDecryptionFailed is reported when the oracle rejects a decrypt call,
// typically an authentication-tag mismatch. It does not necessarily mean
// "wrong password"; the protocol layer decides how to classify it.
var ErrDecryptionFailed = errors.New("oracle decryption failed")

// Error is an error reported by the oracle itself (a non-2xx JSON response).
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("oracle error %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("oracle error %d", e.StatusCode)
}

// TransportError is a network-level failure reaching the oracle, including
// per-call timeouts. It matches common.ErrOracleUnavailable via errors.Is.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("oracle unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool {
	return target == common.ErrOracleUnavailable
}
