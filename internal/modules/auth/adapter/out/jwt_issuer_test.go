package out

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchless/internal/modules/auth/domain"
	apperrors "watchless/internal/platform/errors"
)

type fixedID string

func (f fixedID) New() string { return string(f) }

var loginAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestIssueThenVerify(t *testing.T) {
	t.Parallel()
	issuer, err := NewHS256Issuer("s3cret", 24*time.Hour, fixedID("jti-1"))
	require.NoError(t, err)

	token, claims, err := issuer.Issue(domain.User{ID: "google-1", Email: "a@b.c"}, loginAt)
	require.NoError(t, err)
	assert.Equal(t, loginAt.Add(24*time.Hour), claims.ExpiresAt)

	got, err := Verify([]byte("s3cret"), token, loginAt.Add(23*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "google-1", got.UserID)
	assert.Equal(t, "a@b.c", got.Email)
	assert.Equal(t, "jti-1", got.TokenID)
	assert.True(t, got.ExpiresAt.Equal(claims.ExpiresAt))
}

func TestVerifyRejects(t *testing.T) {
	t.Parallel()
	issuer, err := NewHS256Issuer("s3cret", time.Hour, fixedID("jti-1"))
	require.NoError(t, err)
	token, _, err := issuer.Issue(domain.User{ID: "u", Email: "e"}, loginAt)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": "u"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": loginAt.Add(time.Hour).Unix()}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"userId": "u", "exp": loginAt.Add(time.Hour).Unix()}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]struct {
		secret string
		token  string
		now    time.Time
	}{
		"expired":      {"s3cret", token, loginAt.Add(2 * time.Hour)},
		"wrong secret": {"other", token, loginAt},
		"garbage":      {"s3cret", "not.a.token", loginAt},
		"missing exp":  {"s3cret", noExp, loginAt},
		"missing user": {"s3cret", noUser, loginAt},
		"alg none":     {"s3cret", unsigned, loginAt},
	}
	for name, tc := range cases {
		_, err := Verify([]byte(tc.secret), tc.token, tc.now)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken, name)
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	t.Parallel()
	_, err := NewHS256Issuer("", time.Hour, fixedID("x"))
	assert.Error(t, err)
	_, err = NewHS256Issuer("s", 0, fixedID("x"))
	assert.Error(t, err)
}
