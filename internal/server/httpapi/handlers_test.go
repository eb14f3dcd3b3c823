package httpapi

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itoqsky/credshield/internal/logging"
	"github.com/itoqsky/credshield/internal/server/oracle"
	credrepo "github.com/itoqsky/credshield/internal/server/repositories/credentials"
	"github.com/itoqsky/credshield/internal/server/services"
)

// stubOracle is a self-consistent crypto oracle stand-in, enough for the
// register/login round trip to hold.
type stubOracle struct{}

func stubKeyID(kdfInput, saltHex string) string {
	sum := sha256.Sum256([]byte(kdfInput + saltHex))
	return hex.EncodeToString(sum[:])
}

func (stubOracle) HashPassword(ctx context.Context, password string) (string, string, error) {
	saltHex := "73616c7473616c74"
	sum := sha256.Sum256([]byte(password + saltHex))
	return "stub$" + saltHex + "$" + hex.EncodeToString(sum[:]), saltHex, nil
}

func (stubOracle) VerifyHash(ctx context.Context, password, hash string) (bool, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 3 {
		return false, nil
	}
	sum := sha256.Sum256([]byte(password + parts[1]))
	return hex.EncodeToString(sum[:]) == parts[2], nil
}

func (stubOracle) EncryptPassword(ctx context.Context, password, saltHex, ivB64 string) (string, error) {
	plain := fmt.Sprintf("enc|%s|%s|%s", password, stubKeyID(password, saltHex), ivB64)
	return base64.StdEncoding.EncodeToString([]byte(plain)), nil
}

func (stubOracle) DecryptPassword(ctx context.Context, cipherB64, saltHex, ivB64, passwordForKDF string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(cipherB64)
	if err != nil {
		return "", fmt.Errorf("%w: bad ciphertext", oracle.ErrDecryptionFailed)
	}
	parts := strings.Split(string(raw), "|")
	if len(parts) != 4 || stubKeyID(passwordForKDF, saltHex) != parts[2] {
		return "", fmt.Errorf("%w: key mismatch", oracle.ErrDecryptionFailed)
	}
	return parts[1], nil
}

func (stubOracle) GenerateHMAC(ctx context.Context, dataB64, keyMaterial string) (string, error) {
	sum := sha256.Sum256([]byte(dataB64 + "|" + keyMaterial))
	return hex.EncodeToString(sum[:]), nil
}

const testSecret = "gateway-test-secret"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	protocol := services.NewProtocolService(stubOracle{}, credrepo.NewMemoryRepository(), logger, testSecret, time.Hour)
	return NewServer(":0", logger, protocol, testSecret)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	router := newTestServer(t).Router()
	rec := doJSON(t, router, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestRegister_Success(t *testing.T) {
	router := newTestServer(t).Router()

	rec := doJSON(t, router, http.MethodPost, "/auth/register",
		map[string]string{"username": "alice", "password": "Str0ng!Pass"}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["userId"])
}

func TestRegister_MalformedBody(t *testing.T) {
	router := newTestServer(t).Router()

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	router := newTestServer(t).Router()

	rec := doJSON(t, router, http.MethodPost, "/auth/register",
		map[string]string{"username": "alice"}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_Duplicate(t *testing.T) {
	router := newTestServer(t).Router()

	body := map[string]string{"username": "alice", "password": "Str0ng!Pass"}
	rec := doJSON(t, router, http.MethodPost, "/auth/register", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/auth/register", body, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Username already exists", decodeBody(t, rec)["error"])
}

func TestLogin_SuccessAndTokenWorks(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/auth/register",
		map[string]string{"username": "alice", "password": "Str0ng!Pass"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	userID := decodeBody(t, rec)["userId"]

	rec = doJSON(t, router, http.MethodPost, "/auth/login",
		map[string]string{"username": "alice", "password": "Str0ng!Pass"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody(t, rec)["token"]
	require.NotEmpty(t, token)

	rec = doJSON(t, router, http.MethodGet, "/auth/me", nil,
		map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody(t, rec)
	assert.Equal(t, userID, me["userId"])
	assert.Equal(t, "alice", me["username"])
}

func TestLogin_WrongPassword(t *testing.T) {
	router := newTestServer(t).Router()

	rec := doJSON(t, router, http.MethodPost, "/auth/register",
		map[string]string{"username": "alice", "password": "Str0ng!Pass"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/auth/login",
		map[string]string{"username": "alice", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decodeBody(t, rec)["error"])
}

func TestLogin_UnknownUser_SameResponse(t *testing.T) {
	router := newTestServer(t).Router()

	rec := doJSON(t, router, http.MethodPost, "/auth/login",
		map[string]string{"username": "ghost", "password": "whatever"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decodeBody(t, rec)["error"])
}
