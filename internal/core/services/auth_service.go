package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/platform/config"
	"github.com/SscSPs/travel_backoffice/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// authService signs principals in with a password or a verified Google identity.
type authService struct {
	BaseService
	principalRepo portsrepo.PrincipalReader
	identity      portssvc.IdentityProvider
}

// NewAuthService creates a new instance of authService.
func NewAuthService(principalRepo portsrepo.PrincipalReader, identity portssvc.IdentityProvider, storeTimeout time.Duration) portssvc.AuthSvcFacade {
	return &authService{
		BaseService:   BaseService{StoreTimeout: storeTimeout},
		principalRepo: principalRepo,
		identity:      identity,
	}
}

// SignIn verifies the password and returns the active principal bound to the
// credential. All failures look the same to the caller.
func (s *authService) SignIn(ctx context.Context, email, password string) (*domain.Principal, error) {
	identityID, err := s.identity.VerifyCredential(ctx, email, password)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUnauthorized) {
			s.LogError(ctx, err, "Failed to verify credential")
		}
		return nil, err
	}

	principal, err := s.findPrincipalByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if principal.IdentityID != identityID || !principal.Active {
		s.LogWarn(ctx, "Sign in refused", slog.String("principal_id", principal.ID), slog.Bool("active", principal.Active))
		return nil, apperrors.ErrUnauthorized
	}
	return principal, nil
}

// SignInWithGoogle admits an existing, active principal whose email Google has verified.
func (s *authService) SignInWithGoogle(ctx context.Context, identity domain.GoogleIdentity) (*domain.Principal, error) {
	if !identity.EmailVerified || identity.Email == "" {
		return nil, apperrors.ErrUnauthorized
	}
	principal, err := s.findPrincipalByEmail(ctx, identity.Email)
	if err != nil {
		return nil, err
	}
	if !principal.Active {
		return nil, apperrors.ErrUnauthorized
	}
	return principal, nil
}

func (s *authService) findPrincipalByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	principal, err := s.principalRepo.FindPrincipalByEmail(storeCtx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load principal: %w", err)
	}
	return principal, nil
}

// tokenService implements the TokenSvcFacade for issuing access tokens.
type tokenService struct {
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg}
}

// GenerateAccessToken creates a new JWT access token for the given principal.
func (s *tokenService) GenerateAccessToken(ctx context.Context, principal *domain.Principal) (string, time.Time, error) {
	expiryTime := time.Now().Add(s.cfg.JWTExpiryDuration)

	accessToken, err := utils.GenerateJWT(principal.ID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return accessToken, expiryTime, nil
}

// googleOAuthService implements the GoogleOAuthSvcFacade.
type googleOAuthService struct {
	cfg          *config.Config
	oauth2Config *oauth2.Config
}

// NewGoogleOAuthService creates a new instance of googleOAuthService.
func NewGoogleOAuthService(cfg *config.Config) portssvc.GoogleOAuthSvcFacade {
	return &googleOAuthService{
		cfg: cfg,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// Enabled reports whether Google sign-in is configured.
func (s *googleOAuthService) Enabled() bool {
	return s.cfg.GoogleClientID != "" && s.cfg.GoogleClientSecret != ""
}

// GenerateStateString creates a secure random string to be used as a CSRF token for OAuth flow.
func (s *googleOAuthService) GenerateStateString(ctx context.Context) (string, error) {
	state, err := utils.NewOAuthState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state string for OAuth: %w", err)
	}
	return state, nil
}

// GetGoogleLoginURL returns the URL to redirect the user to for Google login.
func (s *googleOAuthService) GetGoogleLoginURL(ctx context.Context, state string) string {
	return s.oauth2Config.AuthCodeURL(state)
}

// ExchangeCode trades the authorization code for tokens and validates the ID token.
func (s *googleOAuthService) ExchangeCode(ctx context.Context, code string) (*domain.GoogleIdentity, error) {
	if !s.Enabled() {
		return nil, errors.New("google sign-in is not configured")
	}
	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange oauth code: %v", apperrors.ErrUnauthorized, err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%w: id_token missing from google response", apperrors.ErrUnauthorized)
	}

	payload, err := idtoken.Validate(ctx, rawIDToken, s.cfg.GoogleClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: google ID token validation failed: %v", apperrors.ErrUnauthorized, err)
	}
	return identityFromClaims(payload.Subject, payload.Claims), nil
}

func identityFromClaims(subject string, claims map[string]interface{}) *domain.GoogleIdentity {
	identity := &domain.GoogleIdentity{Subject: subject}
	if email, ok := claims["email"].(string); ok {
		identity.Email = domain.NormalizeEmail(email)
	}
	if verified, ok := claims["email_verified"].(bool); ok {
		identity.EmailVerified = verified
	}
	if name, ok := claims["name"].(string); ok {
		identity.Name = name
	}
	return identity
}
