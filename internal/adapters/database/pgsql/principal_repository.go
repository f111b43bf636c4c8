package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	"github.com/SscSPs/travel_backoffice/internal/models"
	"github.com/SscSPs/travel_backoffice/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const principalColumns = `principal_id, name, email, permission_group_id, is_active, identity_id, created_at, created_by, last_updated_at, last_updated_by`

// PgxPrincipalRepository stores employees.
type PgxPrincipalRepository struct {
	BaseRepository
}

func newPgxPrincipalRepository(pool *pgxpool.Pool) *PgxPrincipalRepository {
	return &PgxPrincipalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PrincipalRepositoryFacade = (*PgxPrincipalRepository)(nil)

func scanPrincipal(row pgx.Row) (*domain.Principal, error) {
	var m models.Principal
	if err := row.Scan(
		&m.PrincipalID,
		&m.Name,
		&m.Email,
		&m.PermissionGroupID,
		&m.IsActive,
		&m.IdentityID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	); err != nil {
		return nil, err
	}
	principal := mapping.ToDomainPrincipal(m)
	return &principal, nil
}

func (r *PgxPrincipalRepository) FindPrincipalByID(ctx context.Context, principalID string) (*domain.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE principal_id = $1`
	principal, err := scanPrincipal(r.Pool.QueryRow(ctx, query, principalID))
	if err != nil {
		return nil, translateError(err, "failed to find principal")
	}
	return principal, nil
}

func (r *PgxPrincipalRepository) FindPrincipalByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE lower(email) = lower($1)`
	principal, err := scanPrincipal(r.Pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, translateError(err, "failed to find principal by email")
	}
	return principal, nil
}

func (r *PgxPrincipalRepository) ListPrincipals(ctx context.Context, limit int, offset int) ([]domain.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals ORDER BY created_at, principal_id LIMIT $1 OFFSET $2`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, translateError(err, "failed to list principals")
	}
	defer rows.Close()

	principals := []domain.Principal{}
	for rows.Next() {
		principal, err := scanPrincipal(rows)
		if err != nil {
			return nil, translateError(err, "failed to scan principal")
		}
		principals = append(principals, *principal)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to iterate principals")
	}
	return principals, nil
}

func (r *PgxPrincipalRepository) CountPrincipals(ctx context.Context) (int, error) {
	var count int
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM principals`).Scan(&count); err != nil {
		return 0, translateError(err, "failed to count principals")
	}
	return count, nil
}

func (r *PgxPrincipalRepository) CountPrincipalsByGroup(ctx context.Context, groupID string) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM principals WHERE permission_group_id = $1`, groupID).Scan(&count)
	if err != nil {
		return 0, translateError(err, "failed to count principals by group")
	}
	return count, nil
}

func (r *PgxPrincipalRepository) SavePrincipal(ctx context.Context, principal domain.Principal) error {
	return insertPrincipal(ctx, r.Pool, principal)
}

func insertPrincipal(ctx context.Context, db dbExecutor, principal domain.Principal) error {
	m := mapping.ToModelPrincipal(principal)
	query := `INSERT INTO principals (` + principalColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := db.Exec(ctx, query,
		m.PrincipalID,
		m.Name,
		m.Email,
		m.PermissionGroupID,
		m.IsActive,
		m.IdentityID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return translateError(err, "failed to save principal "+m.PrincipalID)
	}
	return nil
}

func (r *PgxPrincipalRepository) UpdatePrincipal(ctx context.Context, principal domain.Principal) error {
	m := mapping.ToModelPrincipal(principal)
	query := `
		UPDATE principals
		SET name = $2, permission_group_id = $3, is_active = $4, last_updated_at = $5, last_updated_by = $6
		WHERE principal_id = $1`
	tag, err := r.Pool.Exec(ctx, query,
		m.PrincipalID,
		m.Name,
		m.PermissionGroupID,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return translateError(err, "failed to update principal "+m.PrincipalID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("principal %s: %w", m.PrincipalID, apperrors.ErrNotFound)
	}
	return nil
}

// PgxCredentialRepository stores password hashes for the identity provider.
type PgxCredentialRepository struct {
	BaseRepository
}

func newPgxCredentialRepository(pool *pgxpool.Pool) *PgxCredentialRepository {
	return &PgxCredentialRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CredentialRepositoryFacade = (*PgxCredentialRepository)(nil)

func (r *PgxCredentialRepository) SaveCredential(ctx context.Context, credential domain.Credential) error {
	m := mapping.ToModelCredential(credential)
	_, err := r.Pool.Exec(ctx,
		`INSERT INTO credentials (credential_id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		m.CredentialID, m.Email, m.PasswordHash, m.CreatedAt,
	)
	if err != nil {
		return translateError(err, "failed to save credential")
	}
	return nil
}

func (r *PgxCredentialRepository) FindCredentialByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	var m models.Credential
	err := r.Pool.QueryRow(ctx,
		`SELECT credential_id, email, password_hash, created_at FROM credentials WHERE lower(email) = lower($1)`,
		email,
	).Scan(&m.CredentialID, &m.Email, &m.PasswordHash, &m.CreatedAt)
	if err != nil {
		return nil, translateError(err, "failed to find credential")
	}
	credential := mapping.ToDomainCredential(m)
	return &credential, nil
}

func (r *PgxCredentialRepository) DeleteCredential(ctx context.Context, credentialID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM credentials WHERE credential_id = $1`, credentialID)
	if err != nil {
		return translateError(err, "failed to delete credential")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("credential: %w", apperrors.ErrNotFound)
	}
	return nil
}

// PgxSystemStateRepository guards the one-time bootstrap with the system_state singleton row.
type PgxSystemStateRepository struct {
	BaseRepository
}

func newPgxSystemStateRepository(pool *pgxpool.Pool) *PgxSystemStateRepository {
	return &PgxSystemStateRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SystemStateRepositoryFacade = (*PgxSystemStateRepository)(nil)

func (r *PgxSystemStateRepository) FindSystemState(ctx context.Context) (*domain.SystemState, error) {
	var m models.SystemState
	err := r.Pool.QueryRow(ctx, `SELECT id, initialized_at, initialized_by FROM system_state WHERE id = 1`).
		Scan(&m.ID, &m.InitializedAt, &m.InitializedBy)
	if err != nil {
		if translated := translateError(err, "system state"); isNotFound(translated) {
			return &domain.SystemState{}, nil
		}
		return nil, translateError(err, "failed to read system state")
	}
	return &domain.SystemState{
		Initialized:   true,
		InitializedAt: m.InitializedAt.UTC(),
		InitializedBy: m.InitializedBy,
	}, nil
}

// InitializeSystem claims the singleton row and writes the group and principal
// in one transaction. Only one concurrent caller can claim the row.
func (r *PgxSystemStateRepository) InitializeSystem(ctx context.Context, group domain.PermissionGroup, principal domain.Principal) (*domain.PermissionGroup, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO system_state (id, initialized_at, initialized_by) VALUES (1, $1, $2) ON CONFLICT (id) DO NOTHING`,
		time.Now().UTC(), principal.ID,
	)
	if err != nil {
		return nil, translateError(err, "failed to claim system state")
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrAlreadyInitialized
	}

	// A super_admin group left over from an earlier deployment is reused.
	stored := group
	var existingID string
	err = tx.QueryRow(ctx, `SELECT group_id FROM permission_groups WHERE lower(name) = lower($1)`, group.Name).Scan(&existingID)
	switch {
	case err == nil:
		stored.ID = existingID
		if _, err := tx.Exec(ctx, `UPDATE permission_groups SET is_admin = TRUE WHERE group_id = $1`, existingID); err != nil {
			return nil, translateError(err, "failed to promote existing admin group")
		}
	case isNotFound(translateError(err, "admin group")):
		if err := insertGroup(ctx, tx, group); err != nil {
			return nil, err
		}
	default:
		return nil, translateError(err, "failed to look up admin group")
	}

	principal.PermissionGroupID = stored.ID
	if err := insertPrincipal(ctx, tx, principal); err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &stored, nil
}
