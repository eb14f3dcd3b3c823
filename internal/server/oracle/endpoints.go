package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// HashPassword asks the oracle for a memory-hard hash of the plaintext.
// It returns the encoded hash string and the hex-encoded KDF salt the oracle
// used, which later also derives the symmetric encryption key.
func (c *Client) HashPassword(ctx context.Context, password string) (hash string, saltHex string, err error) {
	var result struct {
		HashedPassword string `json:"hashed_password"`
		SaltHex        string `json:"salt_hex"`
	}
	if err := c.do(ctx, "/auth/hash", map[string]string{"password": password}, &result); err != nil {
		return "", "", err
	}
	if result.HashedPassword == "" || result.SaltHex == "" {
		return "", "", &Error{StatusCode: 200, Detail: "hash response missing fields"}
	}
	return result.HashedPassword, result.SaltHex, nil
}

// EncryptPassword encrypts the plaintext under a key the oracle re-derives
// from saltHex; the caller supplies a fresh base64 IV. Returns base64
// ciphertext.
func (c *Client) EncryptPassword(ctx context.Context, password, saltHex, ivB64 string) (string, error) {
	var result struct {
		CipherdataB64 string `json:"cipherdata_b64"`
	}
	body := map[string]string{
		"password":     password,
		"salt_for_kdf": saltHex,
		"iv_b64":       ivB64,
	}
	if err := c.do(ctx, "/data/encrypt", body, &result); err != nil {
		return "", err
	}
	if result.CipherdataB64 == "" {
		return "", &Error{StatusCode: 200, Detail: "encrypt response missing cipherdata"}
	}
	return result.CipherdataB64, nil
}

// DecryptPassword reverses EncryptPassword. The oracle derives the symmetric
// key from saltHex using passwordForKDF as KDF input. An oracle-reported
// rejection (4xx, a MAC or padding failure) surfaces as ErrDecryptionFailed;
// oracle breakdowns (5xx) and transport failures pass through unchanged.
func (c *Client) DecryptPassword(ctx context.Context, cipherB64, saltHex, ivB64, passwordForKDF string) (string, error) {
	var result struct {
		DecryptedData string `json:"decrypted_data"`
	}
	body := map[string]string{
		"cipherdata_b64":   cipherB64,
		"salt_for_kdf":     saltHex,
		"iv_b64":           ivB64,
		"password_for_kdf": passwordForKDF,
	}
	if err := c.do(ctx, "/data/decrypt", body, &result); err != nil {
		var oerr *Error
		if errors.As(err, &oerr) && oerr.StatusCode < http.StatusInternalServerError {
			return "", fmt.Errorf("%w: %s", ErrDecryptionFailed, oerr.Detail)
		}
		return "", err
	}
	return result.DecryptedData, nil
}

// GenerateHMAC computes an HMAC over dataB64 keyed by keyMaterial and returns
// the hex-encoded tag.
func (c *Client) GenerateHMAC(ctx context.Context, dataB64, keyMaterial string) (string, error) {
	var result struct {
		CombinedHashHex string `json:"combined_hash_hex"`
	}
	body := map[string]string{
		"data_to_hmac_b64":  dataB64,
		"hmac_key_material": keyMaterial,
	}
	if err := c.do(ctx, "/integrity/hmac-generate", body, &result); err != nil {
		return "", err
	}
	if result.CombinedHashHex == "" {
		return "", &Error{StatusCode: 200, Detail: "hmac response missing tag"}
	}
	return result.CombinedHashHex, nil
}

// VerifyHMAC asks the oracle to check a previously generated tag.
func (c *Client) VerifyHMAC(ctx context.Context, dataB64, keyMaterial, tagHex string) (bool, error) {
	var result struct {
		Valid bool `json:"valid"`
	}
	body := map[string]string{
		"data_to_verify_b64": dataB64,
		"hmac_key_material":  keyMaterial,
		"received_hmac_hex":  tagHex,
	}
	if err := c.do(ctx, "/integrity/hmac-verify", body, &result); err != nil {
		return false, err
	}
	return result.Valid, nil
}

// VerifyHash checks a candidate plaintext against a stored hash.
func (c *Client) VerifyHash(ctx context.Context, password, hash string) (bool, error) {
	var result struct {
		Valid bool `json:"valid"`
	}
	body := map[string]string{
		"password": password,
		"hash":     hash,
	}
	if err := c.do(ctx, "/auth/verify-hash", body, &result); err != nil {
		return false, err
	}
	return result.Valid, nil
}
