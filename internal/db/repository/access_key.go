package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"platform-registry/internal/domain"
)

type AccessKeyRepo struct {
	db *sql.DB
}

// NewAccessKeyRepo creates an AccessKeyRepo. The pool must be the
// single-connection write pool: Issue relies on its serialized transactions
// to enforce the at-most-one-valid-key invariant.
func NewAccessKeyRepo(db *sql.DB) *AccessKeyRepo {
	return &AccessKeyRepo{db: db}
}

const accessKeyColumns = `id, label, secret, start_at, end_at, platform_id,
	created_at, modified_at, deleted_at`

func scanAccessKey(row interface{ Scan(...any) error }) (*domain.AccessKey, error) {
	var (
		k       domain.AccessKey
		deleted sql.NullTime
	)
	err := row.Scan(&k.ID, &k.Label, &k.Secret, &k.StartAt, &k.EndAt, &k.PlatformID,
		&k.CreatedAt, &k.ModifiedAt, &deleted)
	if err != nil {
		return nil, mapDBError(err)
	}
	k.DeletedAt = timePtr(deleted)
	return &k, nil
}

// rowQuerier is satisfied by both *sql.DB and *sql.Tx, so the validity
// predicate below can run standalone or inside Issue's transaction.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// currentValidKey is the single definition of "currently valid": not archived
// and now inside [start_at, end_at). Both CurrentValid and Issue's conflict
// check use it, so the invariant and the query can never drift apart.
func currentValidKey(ctx context.Context, q rowQuerier, platformID string, now time.Time) (*domain.AccessKey, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+accessKeyColumns+` FROM access_keys
		WHERE platform_id = ? AND deleted_at IS NULL AND start_at <= ? AND end_at > ?`,
		platformID, now, now)
	return scanAccessKey(row)
}

// Issue inserts a new key for the platform as one atomic unit: the check for
// a currently valid key, the insert, and the credential-hash replacement on
// the platform account all happen in the same transaction. Returns a
// ConflictError without writing anything when a valid key already exists.
func (r *AccessKeyRepo) Issue(ctx context.Context, key *domain.AccessKey, accountPrincipalID, hashedSecret string) (*domain.AccessKey, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin issue tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	switch _, err := currentValidKey(ctx, tx, key.PlatformID, now); {
	case err == nil:
		return nil, domain.ErrConflict("platform %s already has a valid access key", key.PlatformID)
	case !errors.As(err, new(*domain.NotFoundError)):
		return nil, fmt.Errorf("check current valid key: %w", err)
	}

	key.ID = domain.NewID()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO access_keys (id, label, secret, start_at, end_at, platform_id, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		key.ID, key.Label, key.Secret, key.StartAt.UTC(), key.EndAt.UTC(), key.PlatformID, now, now)
	if err != nil {
		return nil, mapDBError(err)
	}

	if accountPrincipalID != "" {
		res, err := tx.ExecContext(ctx,
			`UPDATE principals SET hashed_password = ?, modified_at = ? WHERE id = ?`,
			hashedSecret, now, accountPrincipalID)
		if err != nil {
			return nil, mapDBError(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, domain.ErrNotFound("platform account principal %s not found", accountPrincipalID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit issue tx: %w", err)
	}
	return r.GetByID(ctx, key.ID)
}

func (r *AccessKeyRepo) GetByID(ctx context.Context, id string) (*domain.AccessKey, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accessKeyColumns+` FROM access_keys WHERE id = ?`, id)
	return scanAccessKey(row)
}

func (r *AccessKeyRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.AccessKey, int64, error) {
	return r.list(ctx, page, "")
}

func (r *AccessKeyRepo) ListByPlatform(ctx context.Context, platformID string, page domain.PageRequest) ([]domain.AccessKey, int64, error) {
	return r.list(ctx, page, platformID)
}

func (r *AccessKeyRepo) list(ctx context.Context, page domain.PageRequest, platformID string) ([]domain.AccessKey, int64, error) {
	where := ""
	args := []any{}
	if platformID != "" {
		where = ` WHERE platform_id = ?`
		args = append(args, platformID)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM access_keys`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, page.Limit(), page.Offset())
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accessKeyColumns+` FROM access_keys`+where+` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var keys []domain.AccessKey
	for rows.Next() {
		k, err := scanAccessKey(rows)
		if err != nil {
			return nil, 0, err
		}
		keys = append(keys, *k)
	}
	return keys, total, rows.Err()
}

func (r *AccessKeyRepo) CurrentValid(ctx context.Context, platformID string) (*domain.AccessKey, error) {
	return currentValidKey(ctx, r.db, platformID, time.Now().UTC())
}

func (r *AccessKeyRepo) UpdateWindow(ctx context.Context, id string, key *domain.AccessKey) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE access_keys SET start_at = ?, end_at = ?, modified_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		key.StartAt.UTC(), key.EndAt.UTC(), time.Now().UTC(), id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("access key %s not found", id)
	}
	return nil
}

func (r *AccessKeyRepo) Archive(ctx context.Context, id string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE access_keys SET end_at = ?, deleted_at = ?, modified_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		now, now, now, id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Archiving an already-archived key is a no-op, but a missing key is
		// still reported.
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM access_keys WHERE id = ?`, id).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return domain.ErrNotFound("access key %s not found", id)
		}
	}
	return nil
}
