package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MinPasswordLength is the shortest password accepted for a new credential.
const MinPasswordLength = 8

// bootstrapService creates the first administrator of an empty deployment.
type bootstrapService struct {
	BaseService
	principalRepo portsrepo.PrincipalReader
	systemRepo    portsrepo.SystemStateRepositoryFacade
	identity      portssvc.IdentityProvider
	validate      *validator.Validate
}

// BootstrapOption configures the bootstrap service
type BootstrapOption func(*bootstrapService)

// WithBootstrapStoreTimeout bounds each store call made while bootstrapping.
func WithBootstrapStoreTimeout(d time.Duration) BootstrapOption {
	return func(s *bootstrapService) {
		s.StoreTimeout = d
	}
}

// WithBootstrapClock overrides the time source.
func WithBootstrapClock(clock func() time.Time) BootstrapOption {
	return func(s *bootstrapService) {
		s.Clock = clock
	}
}

// NewBootstrapService creates the bootstrap initializer.
func NewBootstrapService(
	principalRepo portsrepo.PrincipalReader,
	systemRepo portsrepo.SystemStateRepositoryFacade,
	identity portssvc.IdentityProvider,
	options ...BootstrapOption,
) portssvc.BootstrapSvc {
	svc := &bootstrapService{
		principalRepo: principalRepo,
		systemRepo:    systemRepo,
		identity:      identity,
		validate:      validator.New(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.BootstrapSvc = (*bootstrapService)(nil)

type bootstrapInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Name     string `validate:"required,max=200"`
}

// IsEmpty reports whether no principal exists yet.
func (s *bootstrapService) IsEmpty(ctx context.Context) (bool, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	state, err := s.systemRepo.FindSystemState(storeCtx)
	if err != nil {
		return false, fmt.Errorf("failed to read system state: %w", err)
	}
	if state.Initialized {
		return false, nil
	}

	count, err := s.principalRepo.CountPrincipals(storeCtx)
	if err != nil {
		return false, fmt.Errorf("failed to count principals: %w", err)
	}
	return count == 0, nil
}

// Initialize creates the super_admin group and its first principal. Concurrent
// calls are serialized by the store: at most one succeeds, the rest report
// "already initialized". A credential created by a losing call is removed again.
func (s *bootstrapService) Initialize(ctx context.Context, email, password, name string) (*domain.Principal, error) {
	logger := s.GetLogger(ctx)
	input := bootstrapInput{
		Email:    domain.NormalizeEmail(email),
		Password: password,
		Name:     strings.TrimSpace(name),
	}
	if err := s.validate.Struct(input); err != nil {
		reason := invalidInputReason(err)
		return nil, apperrors.NewInitializationError(apperrors.StageCheck, reason, apperrors.Validationf("%s", reason))
	}

	empty, err := s.IsEmpty(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to check bootstrap state")
		return nil, apperrors.NewInitializationError(apperrors.StageCheck, "could not read system state", err)
	}
	if !empty {
		return nil, apperrors.NewInitializationError(apperrors.StageCheck, apperrors.ReasonAlreadyInitialized, apperrors.ErrAlreadyInitialized)
	}

	credCtx, cancel := s.storeContext(ctx)
	identityID, err := s.identity.CreateCredential(credCtx, input.Email, input.Password)
	cancel()
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Another caller with the same email may have won in the meantime.
			if stillEmpty, checkErr := s.IsEmpty(ctx); checkErr == nil && !stillEmpty {
				return nil, apperrors.NewInitializationError(apperrors.StageCredential, apperrors.ReasonAlreadyInitialized, apperrors.ErrAlreadyInitialized)
			}
			return nil, apperrors.NewInitializationError(apperrors.StageCredential, "a credential already exists for this email", err)
		}
		s.LogError(ctx, err, "Failed to create bootstrap credential")
		return nil, apperrors.NewInitializationError(apperrors.StageCredential, "could not create credential", err)
	}

	now := s.now()
	principalID := uuid.NewString()
	group := domain.NewSuperAdminGroup(uuid.NewString(), principalID, now)
	principal := domain.Principal{
		ID:                principalID,
		Name:              input.Name,
		Email:             input.Email,
		PermissionGroupID: group.ID,
		Active:            true,
		IdentityID:        identityID,
		AuditFields:       domain.NewAuditFields(principalID, now),
	}

	persistCtx, cancel := s.storeContext(ctx)
	stored, err := s.systemRepo.InitializeSystem(persistCtx, group, principal)
	cancel()
	if err != nil {
		return nil, s.compensate(ctx, identityID, err)
	}

	principal.PermissionGroupID = stored.ID
	logger.Info("System initialized",
		slog.String("principal_id", principal.ID),
		slog.String("group_id", stored.ID))
	return &principal, nil
}

// compensate removes the credential of a failed attempt. Cancellation of the
// caller's context does not abort the cleanup.
func (s *bootstrapService) compensate(ctx context.Context, identityID string, cause error) error {
	reason := "could not persist administrator"
	if errors.Is(cause, apperrors.ErrAlreadyInitialized) {
		reason = apperrors.ReasonAlreadyInitialized
	} else {
		s.LogError(ctx, cause, "Failed to persist bootstrap administrator")
	}
	initErr := apperrors.NewInitializationError(apperrors.StagePersist, reason, cause)

	cleanupCtx, cancel := s.storeContext(context.WithoutCancel(ctx))
	defer cancel()
	if err := s.identity.DeleteCredential(cleanupCtx, identityID); err != nil {
		s.LogError(ctx, err, "Failed to remove orphaned bootstrap credential",
			slog.String("identity_id", identityID))
		initErr.Stage = apperrors.StageCompensate
		initErr.IdentityID = identityID
		initErr.Err = errors.Join(cause, err)
	}
	return initErr
}

func invalidInputReason(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid input"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("missing %s", field)
	case "email":
		return "invalid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("invalid %s", field)
	}
}
