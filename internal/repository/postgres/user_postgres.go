package postgres

import (
	"context"
	"database/sql"
	"time"

	"fxacademy/internal/model"
	"fxacademy/internal/repository"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const userColumns = `id, email, name, password_hash, role, status, invite_code,
		subscription_plan_id, subscription_expires_at, created_at, approved_at`

func scanUser(s rowScanner) (*model.User, error) {
	var u model.User
	if err := s.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.Status,
		&u.InviteCode,
		&u.SubscriptionPlanID,
		&u.SubscriptionExpiresAt,
		&u.CreatedAt,
		&u.ApprovedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, email, name, password_hash, role, status, invite_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Email,
		u.Name,
		u.PasswordHash,
		u.Role,
		u.Status,
		u.InviteCode,
		u.CreatedAt,
	)
	return scanUser(row)
}

func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

// List filters by status when one is given; an empty status disables the filter.
func (r *UserPostgres) List(ctx context.Context, status model.UserStatus, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	const qCount = `SELECT COUNT(*) FROM users WHERE ($1 = '' OR status = $1)`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, string(status)).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + userColumns + `
		FROM users
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, string(status), pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.User]{Items: items, Total: total}, nil
}

func (r *UserPostgres) SetStatus(ctx context.Context, id string, status model.UserStatus, approvedAt *time.Time) (*model.User, error) {
	const q = `
		UPDATE users SET status = $2, approved_at = $3
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, q, id, status, approvedAt))
}

func (r *UserPostgres) ExtendSubscription(ctx context.Context, id string, planID *string, expiresAt time.Time) (*model.User, error) {
	const q = `
		UPDATE users
		SET subscription_expires_at = GREATEST(COALESCE(subscription_expires_at, $3), $3),
		    subscription_plan_id = COALESCE($2, subscription_plan_id)
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, q, id, planID, expiresAt))
}

func (r *UserPostgres) SetSubscription(ctx context.Context, id string, planID *string, expiresAt *time.Time) (*model.User, error) {
	const q = `
		UPDATE users SET subscription_plan_id = $2, subscription_expires_at = $3
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, q, id, planID, expiresAt))
}

func (r *UserPostgres) AdminEmails(ctx context.Context) ([]string, error) {
	const q = `SELECT email FROM users WHERE role = 'admin' AND status = 'approved' ORDER BY email`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
