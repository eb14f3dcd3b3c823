package models

import "time"

// CredentialRecord is the composite credential persisted for one user.
// All binary fields are stored base64-encoded; PasswordHash keeps the encoded
// Argon2id string exactly as the crypto oracle returned it, since it doubles
// as the HMAC key material at login.
type CredentialRecord struct {
	ID           string
	Username     string
	PasswordHash string
	KDFSalt      string
	CipherIV     string
	CipherText   string
	IntegrityTag string
	CreatedAt    time.Time
}

// Complete reports whether all five derived fields are present. Partial
// records are invalid and must never be accepted on the read path.
func (r *CredentialRecord) Complete() bool {
	return r.PasswordHash != "" &&
		r.KDFSalt != "" &&
		r.CipherIV != "" &&
		r.CipherText != "" &&
		r.IntegrityTag != ""
}
