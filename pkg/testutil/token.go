package testutil

import (
	"net/http"
	"testing"
	"time"

	jwttoken "civiceye/internal/jwt_token"

	"github.com/stretchr/testify/require"
)

// TestSigningKey is the shared secret handler tests sign with.
const TestSigningKey = "test-signing-key"

// NewTokenService returns a token service suitable for handler tests.
func NewTokenService() *jwttoken.Service {
	return jwttoken.NewService(TestSigningKey, "civiceye-test", time.Hour)
}

// Authorize signs a token for the given principal and sets it as the request's
// Bearer credential. This exercises the real auth middleware path instead of
// injecting context values directly.
func Authorize(t *testing.T, req *http.Request, tokens *jwttoken.Service, userID, role string) *http.Request {
	t.Helper()
	token, err := tokens.GenerateAccessToken(userID, role)
	require.NoError(t, err, "failed to sign test token")
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
