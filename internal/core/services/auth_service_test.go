package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/core/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/platform/config"
	"github.com/SscSPs/travel_backoffice/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	identity := services.NewPasswordIdentityProvider(w.store, 0)
	employees := services.NewPrincipalService(w.store, w.store, identity,
		services.WithPrincipalAuthorizer(services.NewAuthorizationService(w.store)))
	auth := services.NewAuthService(w.store, identity, 0)

	emp, err := employees.CreateEmployee(ctx, w.manager, dto.CreateEmployeeRequest{
		Name: "Huda", Email: "huda@agency.example", Password: "s3cret-pass", PermissionGroupID: clerkGroupID,
	})
	require.NoError(t, err)

	signedIn, err := auth.SignIn(ctx, "HUDA@agency.example", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, emp.ID, signedIn.ID)

	_, err = auth.SignIn(ctx, "huda@agency.example", "wrong-pass")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = auth.SignIn(ctx, "nobody@agency.example", "s3cret-pass")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	require.NoError(t, employees.DeactivateEmployee(ctx, w.manager, emp.ID))
	_, err = auth.SignIn(ctx, "huda@agency.example", "s3cret-pass")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSignInWithGoogle(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	auth := services.NewAuthService(w.store, services.NewPasswordIdentityProvider(w.store, 0), 0)

	p, err := auth.SignInWithGoogle(ctx, domain.GoogleIdentity{Email: w.viewer.Email, EmailVerified: true})
	require.NoError(t, err)
	assert.Equal(t, w.viewer.ID, p.ID)

	_, err = auth.SignInWithGoogle(ctx, domain.GoogleIdentity{Email: w.viewer.Email})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = auth.SignInWithGoogle(ctx, domain.GoogleIdentity{Email: "stranger@gmail.example", EmailVerified: true})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTokenService(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiryDuration: time.Hour, JWTIssuer: "backoffice-test"}
	tokens := services.NewTokenService(cfg)

	token, expiresAt, err := tokens.GenerateAccessToken(context.Background(), &domain.Principal{ID: "p-1"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := utils.ParseAndValidateJWT(token, "test-secret", "backoffice-test")
	require.NoError(t, err)
	assert.Equal(t, "p-1", claims.Subject)
}

func TestGoogleOAuthDisabledWithoutClientID(t *testing.T) {
	svc := services.NewGoogleOAuthService(&config.Config{})
	assert.False(t, svc.Enabled())
}
