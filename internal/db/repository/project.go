package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"platform-registry/internal/domain"
)

type ProjectRepo struct {
	db *sql.DB
}

func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

const projectColumns = `id, code, name, description, start_date, end_date,
	owner_platform_id, created_at, modified_at`

func scanProject(row interface{ Scan(...any) error }) (*domain.Project, error) {
	var (
		p          domain.Project
		start, end sql.NullTime
	)
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &start, &end,
		&p.OwnerPlatformID, &p.CreatedAt, &p.ModifiedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	p.StartDate = timePtr(start)
	p.EndDate = timePtr(end)
	return &p, nil
}

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create project tx: %w", err)
	}
	defer tx.Rollback()

	p.ID = domain.NewID()
	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (id, code, name, description, start_date, end_date,
			owner_platform_id, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Code, p.Name, p.Description, nullTime(p.StartDate), nullTime(p.EndDate),
		p.OwnerPlatformID, now, now)
	if err != nil {
		return nil, mapDBError(err)
	}

	if err := replaceInvolvedUsers(ctx, tx, p.ID, p.InvolvedUserIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create project tx: %w", err)
	}
	return r.GetByID(ctx, p.ID)
}

func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err != nil {
		return nil, err
	}
	p.InvolvedUserIDs, err = r.involvedUsers(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepo) involvedUsers(ctx context.Context, projectID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT principal_id FROM project_users WHERE project_id = ? ORDER BY principal_id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func replaceInvolvedUsers(ctx context.Context, tx *sql.Tx, projectID string, userIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM project_users WHERE project_id = ?`, projectID); err != nil {
		return err
	}
	for _, uid := range userIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO project_users (project_id, principal_id) VALUES (?, ?)`, projectID, uid); err != nil {
			return mapDBError(err)
		}
	}
	return nil
}

// Update persists the patchable fields of a project. Ownership is immutable
// and never written. A nil InvolvedUserIDs leaves involvement unchanged.
func (r *ProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update project tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE projects SET name = ?, description = ?, start_date = ?, end_date = ?, modified_at = ?
		WHERE id = ?`,
		p.Name, p.Description, nullTime(p.StartDate), nullTime(p.EndDate), time.Now().UTC(), p.ID)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("project %s not found", p.ID)
	}

	if p.InvolvedUserIDs != nil {
		if err := replaceInvolvedUsers(ctx, tx, p.ID, p.InvolvedUserIDs); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("project %s not found", id)
	}
	return nil
}

func (r *ProjectRepo) ListAll(ctx context.Context, page domain.PageRequest) ([]domain.Project, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY code LIMIT ? OFFSET ?`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return collectProjects(rows, total)
}

func (r *ProjectRepo) ListVisible(ctx context.Context, platformID string, page domain.PageRequest) ([]domain.Project, int64, error) {
	where := ` WHERE owner_platform_id = ?
		OR id IN (SELECT project_id FROM shared_projects WHERE platform_id = ?)`

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects`+where, platformID, platformID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects`+where+` ORDER BY code LIMIT ? OFFSET ?`,
		platformID, platformID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return collectProjects(rows, total)
}

func collectProjects(rows *sql.Rows, total int64) ([]domain.Project, int64, error) {
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, err
		}
		projects = append(projects, *p)
	}
	return projects, total, rows.Err()
}

func (r *ProjectRepo) GrantsForProject(ctx context.Context, projectID string) ([]domain.ShareGrant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, platform_id, readonly, created_at
		FROM shared_projects WHERE project_id = ? ORDER BY created_at`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []domain.ShareGrant
	for rows.Next() {
		var g domain.ShareGrant
		if err := rows.Scan(&g.ID, &g.ProjectID, &g.PlatformID, &g.ReadOnly, &g.CreatedAt); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func (r *ProjectRepo) AddShareGrant(ctx context.Context, g *domain.ShareGrant) (*domain.ShareGrant, error) {
	g.ID = domain.NewID()
	g.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO shared_projects (id, project_id, platform_id, readonly, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.ProjectID, g.PlatformID, g.ReadOnly, g.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	return g, nil
}
