package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/utils"
	"github.com/google/uuid"
)

// passwordIdentityProvider keeps bcrypt credentials in the credential store.
type passwordIdentityProvider struct {
	BaseService
	credentialRepo portsrepo.CredentialRepositoryFacade
}

// NewPasswordIdentityProvider creates an identity provider backed by bcrypt hashes.
func NewPasswordIdentityProvider(credentialRepo portsrepo.CredentialRepositoryFacade, storeTimeout time.Duration) portssvc.IdentityProvider {
	return &passwordIdentityProvider{
		BaseService:    BaseService{StoreTimeout: storeTimeout},
		credentialRepo: credentialRepo,
	}
}

var _ portssvc.IdentityProvider = (*passwordIdentityProvider)(nil)

func (p *passwordIdentityProvider) CreateCredential(ctx context.Context, email, password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", apperrors.Validationf("password must be at least %d characters", MinPasswordLength)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return "", apperrors.Validationf("%s", err.Error())
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	credential := domain.Credential{
		ID:           uuid.NewString(),
		Email:        domain.NormalizeEmail(email),
		PasswordHash: hash,
		CreatedAt:    p.now(),
	}

	storeCtx, cancel := p.storeContext(ctx)
	defer cancel()
	if err := p.credentialRepo.SaveCredential(storeCtx, credential); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return "", fmt.Errorf("%w: a credential already exists for this email", apperrors.ErrDuplicate)
		}
		return "", fmt.Errorf("failed to save credential: %w", err)
	}
	return credential.ID, nil
}

func (p *passwordIdentityProvider) VerifyCredential(ctx context.Context, email, password string) (string, error) {
	storeCtx, cancel := p.storeContext(ctx)
	defer cancel()

	credential, err := p.credentialRepo.FindCredentialByEmail(storeCtx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			utils.BurnPasswordCheck(password)
			return "", apperrors.ErrUnauthorized
		}
		return "", fmt.Errorf("failed to load credential: %w", err)
	}
	if !utils.CheckPasswordHash(password, credential.PasswordHash) {
		return "", apperrors.ErrUnauthorized
	}
	return credential.ID, nil
}

func (p *passwordIdentityProvider) DeleteCredential(ctx context.Context, identityID string) error {
	storeCtx, cancel := p.storeContext(ctx)
	defer cancel()

	if err := p.credentialRepo.DeleteCredential(storeCtx, identityID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
