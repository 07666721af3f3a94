package out

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"watchless/internal/modules/auth/domain"
	authout "watchless/internal/modules/auth/port/out"
	apperrors "watchless/internal/platform/errors"
	"watchless/internal/platform/id"
)

const tokenLeeway = 30 * time.Second

// HS256Issuer signs bearer tokens with a shared secret.
type HS256Issuer struct {
	secret []byte
	ttl    time.Duration
	ids    id.Generator
}

var _ authout.TokenIssuer = (*HS256Issuer)(nil)

func NewHS256Issuer(secret string, ttl time.Duration, ids id.Generator) (*HS256Issuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &HS256Issuer{secret: []byte(secret), ttl: ttl, ids: ids}, nil
}

type tokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func (i *HS256Issuer) Issue(user domain.User, now time.Time) (string, domain.Claims, error) {
	claims := domain.Claims{
		UserID:    user.ID,
		Email:     user.Email,
		TokenID:   i.ids.New(),
		IssuedAt:  now.Truncate(time.Second),
		ExpiresAt: now.Add(i.ttl).Truncate(time.Second),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        claims.TokenID,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", domain.Claims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

func (i *HS256Issuer) Verify(raw string, now time.Time) (domain.Claims, error) {
	return Verify(i.secret, raw, now)
}

// Verify checks signature and expiry of an HS256 token against now. Every
// failure wraps apperrors.ErrInvalidToken.
func Verify(secret []byte, raw string, now time.Time) (domain.Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &tokenClaims{}, func(token *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(tokenLeeway),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return domain.Claims{}, fmt.Errorf("%w: invalid claims", apperrors.ErrInvalidToken)
	}
	out := domain.Claims{UserID: claims.UserID, Email: claims.Email, TokenID: claims.ID}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
