// Package services contains server-side business logic. This file implements
// ProtocolService, the orchestrator of the credential protection protocol:
// registration derives and assembles the composite credential record through
// a fixed sequence of oracle calls, and login reverses and cross-validates
// every step before a session token is issued.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/itoqsky/credshield/internal/common"
	"github.com/itoqsky/credshield/internal/logging"
	"github.com/itoqsky/credshield/internal/server/auth"
	"github.com/itoqsky/credshield/internal/server/credentials"
	"github.com/itoqsky/credshield/internal/server/oracle"
	credrepo "github.com/itoqsky/credshield/internal/server/repositories/credentials"
)

// ivSize is the width of the locally generated AES IV in bytes. The IV is
// the one value produced locally rather than by the oracle: it must be
// unpredictable and unique per record, and generating it here avoids an
// oracle round-trip.
const ivSize = 16

// Oracle is the subset of the crypto oracle client the protocol consumes.
type Oracle interface {
	HashPassword(ctx context.Context, password string) (hash, saltHex string, err error)
	EncryptPassword(ctx context.Context, password, saltHex, ivB64 string) (string, error)
	DecryptPassword(ctx context.Context, cipherB64, saltHex, ivB64, passwordForKDF string) (string, error)
	GenerateHMAC(ctx context.Context, dataB64, keyMaterial string) (string, error)
	VerifyHash(ctx context.Context, password, hash string) (bool, error)
}

// ProtocolService drives the registration and login state machines. Oracle
// calls execute strictly sequentially, fail-fast: a failed step aborts the
// run and no partial credential is ever stored.
type ProtocolService struct {
	oracle                Oracle
	repo                  credrepo.Repository
	logger                logging.Logger
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

func NewProtocolService(o Oracle, r credrepo.Repository, l logging.Logger, secretKey string, tokenValidity time.Duration) *ProtocolService {
	return &ProtocolService{
		oracle:                o,
		repo:                  r,
		logger:                l.With("module", "protocol"),
		jwtSecret:             []byte(secretKey),
		tokenValidityDuration: tokenValidity,
	}
}

// Register runs the registration protocol and returns the new user's id.
//
// Order matters: the hash must exist before the HMAC key material does, and
// the IV must exist before encryption. The store re-checks uniqueness
// atomically at write time, so the early existence check is purely a
// cost-avoidance step that skips the oracle round-trips.
func (s *ProtocolService) Register(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", common.ErrValidation
	}

	// step 1: cheap duplicate pre-check before any oracle work
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return "", common.ErrDuplicateUser
	} else if !errors.Is(err, common.ErrNotFound) && !errors.Is(err, common.ErrIncompleteRecord) {
		return "", fmt.Errorf("error checking username: %w", err)
	}

	// step 2: memory-hard hash plus the KDF salt that also keys the cipher
	hash, saltHex, err := s.oracle.HashPassword(ctx, password)
	if err != nil {
		return "", s.oracleFailure(ctx, "hash", err)
	}

	// step 3: fresh IV, locally generated
	iv := common.GenerateRandByteArray(ivSize)
	ivB64 := credentials.ToStorageEncoding(iv)

	// step 4: encrypt the plaintext under the salt-derived key
	cipherB64, err := s.oracle.EncryptPassword(ctx, password, saltHex, ivB64)
	if err != nil {
		return "", s.oracleFailure(ctx, "encrypt", err)
	}

	// step 5: bind the ciphertext to the hash
	tagHex, err := s.oracle.GenerateHMAC(ctx, cipherB64, hash)
	if err != nil {
		return "", s.oracleFailure(ctx, "hmac", err)
	}

	// step 6: convert to storage encoding and assemble
	rec, err := credentials.AssembleRecord(username, hash, saltHex, ivB64, cipherB64, tagHex)
	if err != nil {
		return "", fmt.Errorf("error assembling record: %w", err)
	}

	// step 7: atomic insert-if-absent; a concurrent winner surfaces here
	created, err := s.repo.CreateIfAbsent(ctx, rec)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUser) {
			return "", common.ErrDuplicateUser
		}
		return "", fmt.Errorf("error creating credential: %w", err)
	}

	s.logger.Info(ctx, "user registered", "username", username, "userId", created.ID)
	return created.ID, nil
}

// Login runs the login protocol: load, decode, verify hash, decrypt,
// double-check the plaintext, recompute the HMAC, then issue a token.
// A missing or incomplete record, a failed hash check and a failed
// decryption all collapse into ErrInvalidCredentials so the caller learns
// nothing about which step failed.
func (s *ProtocolService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", common.ErrValidation
	}

	// step 1: load the record
	rec, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrInvalidCredentials
		}
		if errors.Is(err, common.ErrIncompleteRecord) {
			s.logger.Warn(ctx, "incomplete credential record", "username", username)
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("error loading credential: %w", err)
	}

	// step 2: decode back to oracle-facing encodings; a decode failure here
	// means the stored record is corrupt
	fields, err := credentials.DisassembleRecord(rec)
	if err != nil {
		s.logger.Error(ctx, "credential record failed decoding", "username", username, "error", err)
		return "", common.ErrIntegrityFault
	}

	// step 3: memory-hard hash check
	valid, err := s.oracle.VerifyHash(ctx, password, fields.PasswordHash)
	if err != nil {
		return "", s.oracleFailure(ctx, "verify-hash", err)
	}
	if !valid {
		return "", common.ErrInvalidCredentials
	}

	// step 4: decrypt with a key derived from the login attempt
	decrypted, err := s.oracle.DecryptPassword(ctx, fields.CipherTextB64, fields.SaltHex, fields.IVB64, password)
	if err != nil {
		if errors.Is(err, oracle.ErrDecryptionFailed) {
			return "", common.ErrInvalidCredentials
		}
		return "", s.oracleFailure(ctx, "decrypt", err)
	}

	// step 5: the decrypted plaintext must equal the attempt. Steps 3 and 4
	// already both passed, so a mismatch here means the stored ciphertext no
	// longer encrypts what the hash was computed from.
	decryptedBytes := []byte(decrypted)
	match := subtle.ConstantTimeCompare(decryptedBytes, []byte(password)) == 1
	common.WipeByteArray(decryptedBytes)
	if !match {
		s.logger.Error(ctx, "decrypted password mismatch after successful verification", "username", username)
		return "", common.ErrIntegrityFault
	}

	// step 6: recompute the HMAC and compare against the stored tag
	tagHex, err := s.oracle.GenerateHMAC(ctx, fields.CipherTextB64, fields.PasswordHash)
	if err != nil {
		return "", s.oracleFailure(ctx, "hmac", err)
	}
	if !equalTags(tagHex, fields.TagHex) {
		s.logger.Error(ctx, "integrity tag mismatch", "username", username)
		return "", common.ErrIntegrityFault
	}

	// step 7: mint the session token
	token, err := auth.GenerateToken(rec.ID, rec.Username, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", common.ErrInternal
	}

	return token, nil
}

func (s *ProtocolService) oracleFailure(ctx context.Context, step string, err error) error {
	if errors.Is(err, common.ErrOracleUnavailable) {
		s.logger.Warn(ctx, "oracle unavailable", "step", step, "error", err)
		return common.ErrOracleUnavailable
	}
	s.logger.Error(ctx, "oracle call failed", "step", step, "error", err)
	return fmt.Errorf("oracle %s: %w", step, err)
}

func equalTags(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
