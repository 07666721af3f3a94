package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"watchless/internal/modules/auth/domain"
	authout "watchless/internal/modules/auth/port/out"
	"watchless/internal/platform/clock"
	apperrors "watchless/internal/platform/errors"
	"watchless/internal/platform/logging"
)

type AuthService struct {
	clock       clock.Clock
	verifier    authout.IdentityVerifier
	users       authout.UserStore
	tokens      authout.TokenIssuer
	revocations authout.RevocationStore
	logger      *slog.Logger
}

func NewAuthService(clk clock.Clock, verifier authout.IdentityVerifier, users authout.UserStore, tokens authout.TokenIssuer, revocations authout.RevocationStore) *AuthService {
	return &AuthService{
		clock:       clk,
		verifier:    verifier,
		users:       users,
		tokens:      tokens,
		revocations: revocations,
		logger:      logging.For("auth", "service"),
	}
}

// Login exchanges a Google ID token for a profile and a bearer token. A new
// profile starts with default preferences; an existing one is kept.
func (s *AuthService) Login(ctx context.Context, credential string) (domain.User, string, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return domain.User{}, "", fmt.Errorf("%w: credential is required", apperrors.ErrInvalidInput)
	}
	identity, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		s.logger.Warn("identity verification failed", "operation", "login", "outcome", "rejected", "error", err.Error())
		if errors.Is(err, apperrors.ErrInvalidCredential) {
			return domain.User{}, "", err
		}
		return domain.User{}, "", fmt.Errorf("%w: %v", apperrors.ErrInvalidCredential, err)
	}
	if identity.Subject == "" {
		return domain.User{}, "", fmt.Errorf("%w: token has no subject", apperrors.ErrInvalidCredential)
	}
	now := s.clock.Now()
	user, err := s.users.Upsert(ctx, domain.NewUser(identity, now))
	if err != nil {
		return domain.User{}, "", fmt.Errorf("save user: %w", err)
	}
	token, claims, err := s.tokens.Issue(user, now)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	s.logger.Info("user logged in", "operation", "login", "outcome", "success", "user_id", user.ID, "token_id", claims.TokenID)
	return user, token, nil
}

// Authenticate resolves a bearer token into its claims.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Claims, error) {
	if strings.TrimSpace(token) == "" {
		return domain.Claims{}, apperrors.ErrMissingToken
	}
	claims, err := s.tokens.Verify(token, s.clock.Now())
	if err != nil {
		return domain.Claims{}, err
	}
	if s.revocations != nil && claims.TokenID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			return domain.Claims{}, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return domain.Claims{}, fmt.Errorf("%w: token revoked", apperrors.ErrInvalidToken)
		}
	}
	return claims, nil
}

// Logout revokes a valid token. Missing or invalid tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.revocations == nil || strings.TrimSpace(token) == "" {
		return nil
	}
	claims, err := s.tokens.Verify(token, s.clock.Now())
	if err != nil || claims.TokenID == "" {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.logger.Info("user logged out", "operation", "logout", "outcome", "success", "user_id", claims.UserID, "token_id", claims.TokenID)
	return nil
}

// Profile returns the stored profile, or one derived from the token when the
// user has no stored profile.
func (s *AuthService) Profile(ctx context.Context, claims domain.Claims) (domain.User, error) {
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return domain.User{}, err
	}
	return domain.User{
		ID:          claims.UserID,
		Email:       claims.Email,
		DisplayName: claims.Email,
		CreatedAt:   claims.IssuedAt,
		Preferences: domain.DefaultPreferences(),
	}, nil
}
