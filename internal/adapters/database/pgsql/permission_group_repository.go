package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	"github.com/SscSPs/travel_backoffice/internal/models"
	"github.com/SscSPs/travel_backoffice/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const groupColumns = `group_id, name, is_admin, grants, catalog_version, created_at, created_by, last_updated_at, last_updated_by`

// PgxPermissionGroupRepository stores permission groups with their grants as JSONB.
type PgxPermissionGroupRepository struct {
	BaseRepository
}

func newPgxPermissionGroupRepository(pool *pgxpool.Pool) *PgxPermissionGroupRepository {
	return &PgxPermissionGroupRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PermissionGroupRepositoryFacade = (*PgxPermissionGroupRepository)(nil)

func scanGroup(row pgx.Row) (*domain.PermissionGroup, error) {
	var m models.PermissionGroup
	if err := row.Scan(
		&m.GroupID,
		&m.Name,
		&m.IsAdmin,
		&m.Grants,
		&m.CatalogVersion,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	); err != nil {
		return nil, err
	}
	group, err := mapping.ToDomainPermissionGroup(m)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *PgxPermissionGroupRepository) FindGroupByID(ctx context.Context, groupID string) (*domain.PermissionGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM permission_groups WHERE group_id = $1`
	group, err := scanGroup(r.Pool.QueryRow(ctx, query, groupID))
	if err != nil {
		return nil, translateError(err, "failed to find permission group")
	}
	return group, nil
}

func (r *PgxPermissionGroupRepository) FindGroupByName(ctx context.Context, name string) (*domain.PermissionGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM permission_groups WHERE lower(name) = lower($1)`
	group, err := scanGroup(r.Pool.QueryRow(ctx, query, name))
	if err != nil {
		return nil, translateError(err, "failed to find permission group by name")
	}
	return group, nil
}

func (r *PgxPermissionGroupRepository) ListGroups(ctx context.Context) ([]domain.PermissionGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM permission_groups ORDER BY name`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, translateError(err, "failed to list permission groups")
	}
	defer rows.Close()

	groups := []domain.PermissionGroup{}
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, translateError(err, "failed to scan permission group")
		}
		groups = append(groups, *group)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to iterate permission groups")
	}
	return groups, nil
}

func (r *PgxPermissionGroupRepository) SaveGroup(ctx context.Context, group domain.PermissionGroup) error {
	return insertGroup(ctx, r.Pool, group)
}

// dbExecutor is satisfied by both the pool and a transaction.
type dbExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func insertGroup(ctx context.Context, db dbExecutor, group domain.PermissionGroup) error {
	m, err := mapping.ToModelPermissionGroup(group)
	if err != nil {
		return err
	}
	query := `INSERT INTO permission_groups (` + groupColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = db.Exec(ctx, query,
		m.GroupID,
		m.Name,
		m.IsAdmin,
		m.Grants,
		m.CatalogVersion,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return translateError(err, "failed to save permission group "+m.GroupID)
	}
	return nil
}

func (r *PgxPermissionGroupRepository) UpdateGroup(ctx context.Context, group domain.PermissionGroup) error {
	m, err := mapping.ToModelPermissionGroup(group)
	if err != nil {
		return err
	}
	query := `
		UPDATE permission_groups
		SET name = $2, is_admin = $3, grants = $4, catalog_version = $5, last_updated_at = $6, last_updated_by = $7
		WHERE group_id = $1`
	tag, err := r.Pool.Exec(ctx, query,
		m.GroupID,
		m.Name,
		m.IsAdmin,
		m.Grants,
		m.CatalogVersion,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return translateError(err, "failed to update permission group "+m.GroupID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("permission group %s: %w", m.GroupID, apperrors.ErrNotFound)
	}
	return nil
}

// DeleteGroup relies on the principals foreign key to refuse groups still in use.
func (r *PgxPermissionGroupRepository) DeleteGroup(ctx context.Context, groupID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM permission_groups WHERE group_id = $1`, groupID)
	if err != nil {
		return translateError(err, "failed to delete permission group "+groupID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("permission group %s: %w", groupID, apperrors.ErrNotFound)
	}
	return nil
}
