// Package credentials contains the credential store implementations. The
// store is the single point of shared state: one composite credential record
// per username, created exactly once and never mutated afterwards.
package credentials

import (
	"context"

	"github.com/itoqsky/credshield/internal/server/models"
)

// Repository persists composite credential records.
//
// CreateIfAbsent must enforce username uniqueness atomically at write time:
// two concurrent registrations may both pass the protocol's pre-check, and
// exactly one of them may win here (the loser gets common.ErrDuplicateUser).
//
// FindByUsername returns common.ErrNotFound for unknown usernames and
// common.ErrIncompleteRecord when a stored record is missing any derived
// field; partial records are never handed to callers.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*models.CredentialRecord, error)
	CreateIfAbsent(ctx context.Context, rec *models.CredentialRecord) (*models.CredentialRecord, error)
}
