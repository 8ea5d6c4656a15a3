package postgres

import (
	"context"
	"database/sql"
	"time"

	"fxacademy/internal/model"
	"fxacademy/internal/repository"
)

const inviteColumns = `code, email, created_by, max_uses, used_count, expires_at, revoked, created_at`

func scanInvite(s rowScanner) (*model.Invite, error) {
	var inv model.Invite
	if err := s.Scan(
		&inv.Code,
		&inv.Email,
		&inv.CreatedBy,
		&inv.MaxUses,
		&inv.UsedCount,
		&inv.ExpiresAt,
		&inv.Revoked,
		&inv.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &inv, nil
}

// InvitePostgres is a PostgreSQL implementation of repository.InviteRepository.
type InvitePostgres struct {
	db *sql.DB
}

func NewInvitePostgres(db *sql.DB) *InvitePostgres {
	return &InvitePostgres{db: db}
}

var _ repository.InviteRepository = (*InvitePostgres)(nil)

func (r *InvitePostgres) Create(ctx context.Context, inv *model.Invite) (*model.Invite, error) {
	const q = `
		INSERT INTO invites (code, email, created_by, max_uses, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + inviteColumns
	row := r.db.QueryRowContext(ctx, q,
		inv.Code,
		inv.Email,
		inv.CreatedBy,
		inv.MaxUses,
		inv.ExpiresAt,
		inv.CreatedAt,
	)
	return scanInvite(row)
}

func (r *InvitePostgres) FindByCode(ctx context.Context, code string) (*model.Invite, error) {
	const q = `SELECT ` + inviteColumns + ` FROM invites WHERE code = $1`
	return scanInvite(r.db.QueryRowContext(ctx, q, code))
}

func (r *InvitePostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Invite], error) {
	const qCount = `SELECT COUNT(*) FROM invites`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + inviteColumns + `
		FROM invites
		ORDER BY created_at DESC, code DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Invite, 0)
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Invite]{Items: items, Total: total}, nil
}

func (r *InvitePostgres) Revoke(ctx context.Context, code string) error {
	const q = `UPDATE invites SET revoked = TRUE WHERE code = $1`
	return execOne(ctx, r.db, q, code)
}

// Claim increments used_count only while every redeemability condition holds, so two concurrent
// registrations cannot both take the last use.
func (r *InvitePostgres) Claim(ctx context.Context, code, email string, now time.Time) (*model.Invite, error) {
	const q = `
		UPDATE invites
		SET used_count = used_count + 1
		WHERE code = $1
		  AND NOT revoked
		  AND used_count < max_uses
		  AND (expires_at IS NULL OR expires_at > $3)
		  AND (email IS NULL OR email = '' OR lower(email) = lower($2))
		RETURNING ` + inviteColumns
	return scanInvite(r.db.QueryRowContext(ctx, q, code, email, now))
}

func (r *InvitePostgres) Release(ctx context.Context, code string) error {
	const q = `UPDATE invites SET used_count = GREATEST(used_count - 1, 0) WHERE code = $1`
	_, err := r.db.ExecContext(ctx, q, code)
	return err
}

// execOne runs a statement that must touch exactly one row; zero rows maps to sql.ErrNoRows.
func execOne(ctx context.Context, db *sql.DB, q string, args ...any) error {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
