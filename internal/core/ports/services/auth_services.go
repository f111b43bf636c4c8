package services

import (
	"context"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
)

// IdentityProvider manages sign-in credentials. The identity id it returns is opaque.
type IdentityProvider interface {
	CreateCredential(ctx context.Context, email, password string) (string, error)

	// VerifyCredential returns the identity id, or apperrors.ErrUnauthorized for any mismatch.
	VerifyCredential(ctx context.Context, email, password string) (string, error)

	DeleteCredential(ctx context.Context, identityID string) error
}

// AuthSvcFacade signs principals in.
type AuthSvcFacade interface {
	// SignIn returns the active principal for the credential. Every failure is
	// reported as apperrors.ErrUnauthorized so callers cannot tell which part was wrong.
	SignIn(ctx context.Context, email, password string) (*domain.Principal, error)

	// SignInWithGoogle maps a verified Google identity to an existing active principal.
	SignInWithGoogle(ctx context.Context, identity domain.GoogleIdentity) (*domain.Principal, error)
}

// TokenSvcFacade defines the interface for token management services.
type TokenSvcFacade interface {
	GenerateAccessToken(ctx context.Context, principal *domain.Principal) (string, time.Time, error)
}

// GoogleOAuthSvcFacade defines the interface for Google OAuth operations.
type GoogleOAuthSvcFacade interface {
	// Enabled reports whether a client id is configured.
	Enabled() bool

	// GenerateStateString creates a secure random string to be used as a CSRF token for OAuth flow.
	GenerateStateString(ctx context.Context) (string, error)

	// GetGoogleLoginURL returns the URL to redirect the user to for Google login.
	GetGoogleLoginURL(ctx context.Context, state string) string

	// ExchangeCode exchanges an authorization code and validates the returned ID token.
	ExchangeCode(ctx context.Context, code string) (*domain.GoogleIdentity, error)
}
