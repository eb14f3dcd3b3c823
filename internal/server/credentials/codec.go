// Package credentials implements the pure codec between the crypto oracle's
// wire encodings (hex for salts and HMAC tags, base64 for IVs and ciphertext)
// and the storage encoding (base64 for every binary field), plus assembly and
// disassembly of the composite credential record.
package credentials

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/itoqsky/credshield/internal/server/models"
)

// ErrEncoding reports a field that is not valid under its expected encoding.
// Records written by this system always decode cleanly, so hitting this on a
// stored record signals storage corruption.
var ErrEncoding = errors.New("credential encoding error")

// ToStorageEncoding encodes raw bytes into the at-rest representation.
func ToStorageEncoding(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// FromStorageEncoding decodes an at-rest value back into raw bytes.
func FromStorageEncoding(s string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return raw, nil
}

// HexToStorage converts an oracle hex value into the storage encoding.
func HexToStorage(hexStr string) (string, error) {
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return ToStorageEncoding(raw), nil
}

// StorageToHex converts a stored value back to the hex encoding the oracle
// expects.
func StorageToHex(b64 string) (string, error) {
	raw, err := FromStorageEncoding(b64)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// OracleFields is a credential record disassembled back into the encodings
// the oracle consumes at login time.
type OracleFields struct {
	PasswordHash  string // encoded hash string, verbatim
	SaltHex       string
	IVB64         string
	CipherTextB64 string
	TagHex        string
}

// AssembleRecord builds a storable CredentialRecord from the outputs of the
// registration steps: the oracle's hash and hex salt, the locally generated
// base64 IV, the oracle's base64 ciphertext and hex HMAC tag.
func AssembleRecord(username, passwordHash, saltHex, ivB64, cipherB64, tagHex string) (*models.CredentialRecord, error) {
	salt, err := HexToStorage(saltHex)
	if err != nil {
		return nil, fmt.Errorf("kdf salt: %w", err)
	}
	tag, err := HexToStorage(tagHex)
	if err != nil {
		return nil, fmt.Errorf("integrity tag: %w", err)
	}

	// IV and ciphertext arrive base64 already; decode to validate.
	if _, err := FromStorageEncoding(ivB64); err != nil {
		return nil, fmt.Errorf("cipher iv: %w", err)
	}
	if _, err := FromStorageEncoding(cipherB64); err != nil {
		return nil, fmt.Errorf("cipher text: %w", err)
	}

	return &models.CredentialRecord{
		Username:     username,
		PasswordHash: passwordHash,
		KDFSalt:      salt,
		CipherIV:     ivB64,
		CipherText:   cipherB64,
		IntegrityTag: tag,
	}, nil
}

// DisassembleRecord converts a stored record back into oracle-facing
// encodings for the login-time calls.
func DisassembleRecord(rec *models.CredentialRecord) (*OracleFields, error) {
	saltHex, err := StorageToHex(rec.KDFSalt)
	if err != nil {
		return nil, fmt.Errorf("kdf salt: %w", err)
	}
	tagHex, err := StorageToHex(rec.IntegrityTag)
	if err != nil {
		return nil, fmt.Errorf("integrity tag: %w", err)
	}
	if _, err := FromStorageEncoding(rec.CipherIV); err != nil {
		return nil, fmt.Errorf("cipher iv: %w", err)
	}
	if _, err := FromStorageEncoding(rec.CipherText); err != nil {
		return nil, fmt.Errorf("cipher text: %w", err)
	}

	return &OracleFields{
		PasswordHash:  rec.PasswordHash,
		SaltHex:       saltHex,
		IVB64:         rec.CipherIV,
		CipherTextB64: rec.CipherText,
		TagHex:        tagHex,
	}, nil
}
