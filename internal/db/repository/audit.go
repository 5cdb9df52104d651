package repository

import (
	"context"
	"database/sql"
	"time"

	"platform-registry/internal/domain"
)

type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	e.ID = domain.NewID()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audits (id, principal_name, action, resource_type, resource_id, status, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.PrincipalName, e.Action, nullStr(e.ResourceType), nullStr(e.ResourceID),
		e.Status, nullStr(e.ErrorMessage), time.Now().UTC())
	return mapDBError(err)
}

func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.PrincipalName != nil {
		where += ` AND principal_name = ?`
		args = append(args, *filter.PrincipalName)
	}
	if filter.Action != nil {
		where += ` AND action = ?`
		args = append(args, *filter.Action)
	}
	if filter.Status != nil {
		where += ` AND status = ?`
		args = append(args, *filter.Status)
	}
	if filter.Since != nil {
		where += ` AND created_at >= ?`
		args = append(args, *filter.Since)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audits`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Page.Limit(), filter.Page.Offset())
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, principal_name, action, resource_type, resource_id, status, error_message, created_at
		FROM audits`+where+` ORDER BY created_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var (
			e          domain.AuditEntry
			rtype, rid sql.NullString
			errMsg     sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.PrincipalName, &e.Action, &rtype, &rid, &e.Status, &errMsg, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		e.ResourceType = strPtr(rtype)
		e.ResourceID = strPtr(rid)
		e.ErrorMessage = strPtr(errMsg)
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
