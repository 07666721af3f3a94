package out

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"watchless/internal/modules/auth/domain"
	authout "watchless/internal/modules/auth/port/out"
	"watchless/internal/platform/clock"
	apperrors "watchless/internal/platform/errors"
)

const (
	DefaultGoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
	jwksCacheTTL         = time.Hour
)

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

type GoogleVerifierConfig struct {
	ClientID   string
	JWKSURL    string
	HTTPClient *http.Client
	Clock      clock.Clock
}

// GoogleVerifier validates Google Sign-In ID tokens against Google's
// published RSA keys, which are cached for an hour.
type GoogleVerifier struct {
	clientID   string
	jwksURL    string
	httpClient *http.Client
	clock      clock.Clock

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

var _ authout.IdentityVerifier = (*GoogleVerifier)(nil)

func NewGoogleVerifier(cfg GoogleVerifierConfig) *GoogleVerifier {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 8 * time.Second}
	}
	jwksURL := strings.TrimSpace(cfg.JWKSURL)
	if jwksURL == "" {
		jwksURL = DefaultGoogleJWKSURL
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &GoogleVerifier{
		clientID:   strings.TrimSpace(cfg.ClientID),
		jwksURL:    jwksURL,
		httpClient: httpClient,
		clock:      clk,
	}
}

type jwksDocument struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (domain.Identity, error) {
	if v.clientID == "" {
		return domain.Identity{}, fmt.Errorf("%w: google client id is not configured", apperrors.ErrInvalidCredential)
	}
	keys, err := v.keySet(ctx)
	if err != nil {
		return domain.Identity{}, err
	}
	now := v.clock.Now()
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(credential, claims, func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		key, ok := keys[kid]
		if !ok {
			return nil, fmt.Errorf("unknown key id: %s", kid)
		}
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(tokenLeeway),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidCredential, err)
	}
	if !parsed.Valid {
		return domain.Identity{}, fmt.Errorf("%w: invalid id token", apperrors.ErrInvalidCredential)
	}
	if !googleIssuers[stringClaim(claims, "iss")] {
		return domain.Identity{}, fmt.Errorf("%w: unexpected issuer", apperrors.ErrInvalidCredential)
	}
	subject := strings.TrimSpace(stringClaim(claims, "sub"))
	if subject == "" {
		return domain.Identity{}, fmt.Errorf("%w: id token missing sub", apperrors.ErrInvalidCredential)
	}
	return domain.Identity{
		Subject:       subject,
		Email:         strings.ToLower(strings.TrimSpace(stringClaim(claims, "email"))),
		EmailVerified: boolClaim(claims["email_verified"]),
		Name:          strings.TrimSpace(stringClaim(claims, "name")),
	}, nil
}

func (v *GoogleVerifier) keySet(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.keys != nil && v.clock.Now().Sub(v.fetchedAt) < jwksCacheTTL {
		return v.keys, nil
	}
	keys, err := v.fetchJWKS(ctx)
	if err != nil {
		if v.keys != nil {
			// keep serving stale keys while Google is unreachable
			return v.keys, nil
		}
		return nil, err
	}
	v.keys = keys
	v.fetchedAt = v.clock.Now()
	return keys, nil
}

func (v *GoogleVerifier) fetchJWKS(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("jwks fetch failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode jwks: %w", err)
	}
	keys := make(map[string]*rsa.PublicKey)
	for _, key := range doc.Keys {
		if strings.ToUpper(strings.TrimSpace(key.Kty)) != "RSA" {
			continue
		}
		nBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(key.N))
		if err != nil {
			return nil, fmt.Errorf("decode jwks n: %w", err)
		}
		eBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(key.E))
		if err != nil {
			return nil, fmt.Errorf("decode jwks e: %w", err)
		}
		e := new(big.Int).SetBytes(eBytes)
		if !e.IsInt64() || e.Int64() <= 1 {
			return nil, fmt.Errorf("invalid jwks exponent for key %s", key.Kid)
		}
		keys[strings.TrimSpace(key.Kid)] = &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: int(e.Int64())}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no RSA keys found in jwks")
	}
	return keys, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

func boolClaim(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	default:
		return false
	}
}
