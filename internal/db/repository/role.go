package repository

import (
	"context"
	"database/sql"
	"time"

	"platform-registry/internal/domain"
)

type RoleRepo struct {
	db *sql.DB
}

func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{db: db}
}

const roleColumns = `id, name, is_registry_admin, is_platform,
	manage_users, manage_roles, manage_platforms, manage_access_keys, manage_projects,
	created_at, modified_at`

func scanRole(row interface{ Scan(...any) error }) (*domain.Role, error) {
	var r domain.Role
	err := row.Scan(&r.ID, &r.Name, &r.IsRegistryAdmin, &r.IsPlatform,
		&r.ManageUsers, &r.ManageRoles, &r.ManagePlatforms, &r.ManageAccessKeys, &r.ManageProjects,
		&r.CreatedAt, &r.ModifiedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &r, nil
}

func (r *RoleRepo) Create(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	role.ID = domain.NewID()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO roles (id, name, is_registry_admin, is_platform,
			manage_users, manage_roles, manage_platforms, manage_access_keys, manage_projects,
			created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		role.ID, role.Name, role.IsRegistryAdmin, role.IsPlatform,
		role.ManageUsers, role.ManageRoles, role.ManagePlatforms, role.ManageAccessKeys, role.ManageProjects,
		now, now)
	if err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByID(ctx, role.ID)
}

func (r *RoleRepo) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = ?`, id)
	return scanRole(row)
}

func (r *RoleRepo) GetByConfiguration(ctx context.Context, isRegistryAdmin, isPlatform bool) (*domain.Role, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE is_registry_admin = ? AND is_platform = ?`,
		isRegistryAdmin, isPlatform)
	return scanRole(row)
}

func (r *RoleRepo) List(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, rows.Err()
}

func (r *RoleRepo) Update(ctx context.Context, role *domain.Role) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE roles SET
			manage_users = ?, manage_roles = ?, manage_platforms = ?,
			manage_access_keys = ?, manage_projects = ?, modified_at = ?
		WHERE id = ?`,
		role.ManageUsers, role.ManageRoles, role.ManagePlatforms,
		role.ManageAccessKeys, role.ManageProjects, time.Now().UTC(), role.ID)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("role %s not found", role.ID)
	}
	return nil
}
