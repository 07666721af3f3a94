package out

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "watchless/internal/platform/errors"
)

type stubClock struct{ now time.Time }

func (c stubClock) Now() time.Time { return c.now }

type googleFixture struct {
	key     *rsa.PrivateKey
	server  *httptest.Server
	fetches *atomic.Int32
}

func newGoogleFixture(t *testing.T) googleFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	fetches := &atomic.Int32{}
	doc := map[string]any{"keys": []map[string]string{{
		"kty": "RSA",
		"kid": "kid-1",
		"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
		"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
	}}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(server.Close)
	return googleFixture{key: key, server: server, fetches: fetches}
}

func (f googleFixture) sign(t *testing.T, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(f.key)
	require.NoError(t, err)
	return signed
}

func googleClaims(overrides map[string]any) jwt.MapClaims {
	claims := jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            "client-123",
		"sub":            "1098765",
		"email":          "Viewer@Example.com",
		"email_verified": true,
		"name":           "Vi Ewer",
		"iat":            loginAt.Add(-time.Minute).Unix(),
		"exp":            loginAt.Add(time.Hour).Unix(),
	}
	for k, v := range overrides {
		claims[k] = v
	}
	return claims
}

func TestGoogleVerifierAcceptsValidToken(t *testing.T) {
	t.Parallel()
	fx := newGoogleFixture(t)
	verifier := NewGoogleVerifier(GoogleVerifierConfig{ClientID: "client-123", JWKSURL: fx.server.URL, Clock: stubClock{loginAt}})

	identity, err := verifier.Verify(context.Background(), fx.sign(t, "kid-1", googleClaims(nil)))
	require.NoError(t, err)
	assert.Equal(t, "1098765", identity.Subject)
	assert.Equal(t, "viewer@example.com", identity.Email)
	assert.True(t, identity.EmailVerified)
	assert.Equal(t, "Vi Ewer", identity.Name)

	_, err = verifier.Verify(context.Background(), fx.sign(t, "kid-1", googleClaims(map[string]any{"iss": "accounts.google.com"})))
	require.NoError(t, err)
	assert.EqualValues(t, 1, fx.fetches.Load(), "keys should be cached")
}

func TestGoogleVerifierRejects(t *testing.T) {
	t.Parallel()
	fx := newGoogleFixture(t)
	verifier := NewGoogleVerifier(GoogleVerifierConfig{ClientID: "client-123", JWKSURL: fx.server.URL, Clock: stubClock{loginAt}})
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	forged := jwt.NewWithClaims(jwt.SigningMethodRS256, googleClaims(nil))
	forged.Header["kid"] = "kid-1"
	forgedToken, err := forged.SignedString(other)
	require.NoError(t, err)

	cases := map[string]string{
		"wrong audience": fx.sign(t, "kid-1", googleClaims(map[string]any{"aud": "someone-else"})),
		"wrong issuer":   fx.sign(t, "kid-1", googleClaims(map[string]any{"iss": "https://evil.example"})),
		"expired":        fx.sign(t, "kid-1", googleClaims(map[string]any{"exp": loginAt.Add(-time.Hour).Unix()})),
		"unknown kid":    fx.sign(t, "kid-2", googleClaims(nil)),
		"no subject":     fx.sign(t, "kid-1", googleClaims(map[string]any{"sub": ""})),
		"forged":         forgedToken,
		"garbage":        "abc",
	}
	for name, token := range cases {
		_, err := verifier.Verify(context.Background(), token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredential, name)
	}
}

func TestGoogleVerifierRequiresClientID(t *testing.T) {
	t.Parallel()
	fx := newGoogleFixture(t)
	verifier := NewGoogleVerifier(GoogleVerifierConfig{JWKSURL: fx.server.URL, Clock: stubClock{loginAt}})
	_, err := verifier.Verify(context.Background(), fx.sign(t, "kid-1", googleClaims(nil)))
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredential)
	assert.EqualValues(t, 0, fx.fetches.Load())
}
