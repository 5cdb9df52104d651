package repository

import (
	"context"
	"database/sql"
	"time"

	"platform-registry/internal/domain"
)

type PlatformRepo struct {
	db *sql.DB
}

func NewPlatformRepo(db *sql.DB) *PlatformRepo {
	return &PlatformRepo{db: db}
}

func scanPlatform(row interface{ Scan(...any) error }) (*domain.Platform, error) {
	var p domain.Platform
	if err := row.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.ModifiedAt); err != nil {
		return nil, mapDBError(err)
	}
	return &p, nil
}

func (r *PlatformRepo) Create(ctx context.Context, p *domain.Platform) (*domain.Platform, error) {
	p.ID = domain.NewID()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO platforms (id, name, created_at, modified_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, now, now)
	if err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByID(ctx, p.ID)
}

func (r *PlatformRepo) GetByID(ctx context.Context, id string) (*domain.Platform, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, modified_at FROM platforms WHERE id = ?`, id)
	return scanPlatform(row)
}

func (r *PlatformRepo) GetByName(ctx context.Context, name string) (*domain.Platform, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, modified_at FROM platforms WHERE name = ?`, name)
	return scanPlatform(row)
}

func (r *PlatformRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Platform, int64, error) {
	return r.list(ctx, page, "")
}

func (r *PlatformRepo) ListExcept(ctx context.Context, platformID string, page domain.PageRequest) ([]domain.Platform, int64, error) {
	return r.list(ctx, page, platformID)
}

func (r *PlatformRepo) list(ctx context.Context, page domain.PageRequest, exceptID string) ([]domain.Platform, int64, error) {
	where := ""
	args := []any{}
	if exceptID != "" {
		where = ` WHERE id != ?`
		args = append(args, exceptID)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM platforms`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, page.Limit(), page.Offset())
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at, modified_at FROM platforms`+where+` ORDER BY name LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var platforms []domain.Platform
	for rows.Next() {
		p, err := scanPlatform(rows)
		if err != nil {
			return nil, 0, err
		}
		platforms = append(platforms, *p)
	}
	return platforms, total, rows.Err()
}

func (r *PlatformRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM platforms WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("platform %s not found", id)
	}
	return nil
}
