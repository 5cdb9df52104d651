package repository

import (
	"context"
	"database/sql"
	"time"

	"platform-registry/internal/domain"
)

type PrincipalRepo struct {
	db *sql.DB
}

func NewPrincipalRepo(db *sql.DB) *PrincipalRepo {
	return &PrincipalRepo{db: db}
}

const principalColumns = `id, username, email, first_name, last_name, hashed_password,
	expiration_date, last_login, role_id, platform_id, created_at, modified_at`

func scanPrincipal(row interface{ Scan(...any) error }) (*domain.Principal, error) {
	var (
		p          domain.Principal
		lastLogin  sql.NullTime
		roleID     sql.NullString
		platformID sql.NullString
	)
	err := row.Scan(&p.ID, &p.Username, &p.Email, &p.FirstName, &p.LastName, &p.HashedPassword,
		&p.ExpirationDate, &lastLogin, &roleID, &platformID, &p.CreatedAt, &p.ModifiedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	p.LastLogin = timePtr(lastLogin)
	p.RoleID = strPtr(roleID)
	p.PlatformID = strPtr(platformID)
	return &p, nil
}

func (r *PrincipalRepo) Create(ctx context.Context, p *domain.Principal) (*domain.Principal, error) {
	p.ID = domain.NewID()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO principals (id, username, email, first_name, last_name, hashed_password,
			expiration_date, role_id, platform_id, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Username, p.Email, p.FirstName, p.LastName, p.HashedPassword,
		p.ExpirationDate, nullStr(p.RoleID), nullStr(p.PlatformID), now, now)
	if err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByID(ctx, p.ID)
}

func (r *PrincipalRepo) GetByID(ctx context.Context, id string) (*domain.Principal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE id = ?`, id)
	return scanPrincipal(row)
}

func (r *PrincipalRepo) GetByUsername(ctx context.Context, username string) (*domain.Principal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE username = ?`, username)
	return scanPrincipal(row)
}

func (r *PrincipalRepo) GetAccountForPlatform(ctx context.Context, platformID string) (*domain.Principal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE platform_id = ?`, platformID)
	return scanPrincipal(row)
}

func (r *PrincipalRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Principal, int64, error) {
	return r.list(ctx, page, false)
}

func (r *PrincipalRepo) ListRegular(ctx context.Context, page domain.PageRequest) ([]domain.Principal, int64, error) {
	return r.list(ctx, page, true)
}

func (r *PrincipalRepo) list(ctx context.Context, page domain.PageRequest, regularOnly bool) ([]domain.Principal, int64, error) {
	where := ""
	if regularOnly {
		// Regular users must have no role attached to them.
		where = ` WHERE role_id IS NULL`
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM principals`+where).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+principalColumns+` FROM principals`+where+` ORDER BY username LIMIT ? OFFSET ?`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var principals []domain.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, 0, err
		}
		principals = append(principals, *p)
	}
	return principals, total, rows.Err()
}

func (r *PrincipalRepo) Update(ctx context.Context, p *domain.Principal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE principals SET
			email = ?, first_name = ?, last_name = ?, hashed_password = ?,
			expiration_date = ?, modified_at = ?
		WHERE id = ?`,
		p.Email, p.FirstName, p.LastName, p.HashedPassword,
		p.ExpirationDate, time.Now().UTC(), p.ID)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("principal %s not found", p.ID)
	}
	return nil
}

func (r *PrincipalRepo) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE principals SET last_login = ?, modified_at = ? WHERE id = ?`,
		time.Now().UTC(), time.Now().UTC(), id)
	return mapDBError(err)
}

func (r *PrincipalRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM principals WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("principal %s not found", id)
	}
	return nil
}
