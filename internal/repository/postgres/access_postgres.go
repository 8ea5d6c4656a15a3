package postgres

import (
	"context"
	"database/sql"
	"time"

	"fxacademy/internal/model"
	"fxacademy/internal/repository"
)

// EnrollmentPostgres is a PostgreSQL implementation of repository.EnrollmentRepository.
type EnrollmentPostgres struct {
	db *sql.DB
}

func NewEnrollmentPostgres(db *sql.DB) *EnrollmentPostgres {
	return &EnrollmentPostgres{db: db}
}

var _ repository.EnrollmentRepository = (*EnrollmentPostgres)(nil)

// Enroll leaves enrolled_at of an existing row untouched so drip schedules do not restart.
func (r *EnrollmentPostgres) Enroll(ctx context.Context, userID, courseID string, at time.Time) (*model.Enrollment, error) {
	const q = `
		INSERT INTO enrollments (user_id, course_id, enrolled_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, course_id) DO UPDATE SET enrolled_at = enrollments.enrolled_at
		RETURNING user_id, course_id, enrolled_at
	`
	var e model.Enrollment
	if err := r.db.QueryRowContext(ctx, q, userID, courseID, at).Scan(&e.UserID, &e.CourseID, &e.EnrolledAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentPostgres) Find(ctx context.Context, userID, courseID string) (*model.Enrollment, error) {
	const q = `
		SELECT user_id, course_id, enrolled_at
		FROM enrollments
		WHERE user_id = $1 AND course_id = $2
	`
	var e model.Enrollment
	if err := r.db.QueryRowContext(ctx, q, userID, courseID).Scan(&e.UserID, &e.CourseID, &e.EnrolledAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentPostgres) ListByUser(ctx context.Context, userID string) ([]model.Enrollment, error) {
	const q = `
		SELECT user_id, course_id, enrolled_at
		FROM enrollments
		WHERE user_id = $1
		ORDER BY enrolled_at
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Enrollment, 0)
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(&e.UserID, &e.CourseID, &e.EnrolledAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// ProgressPostgres is a PostgreSQL implementation of repository.ProgressRepository.
type ProgressPostgres struct {
	db *sql.DB
}

func NewProgressPostgres(db *sql.DB) *ProgressPostgres {
	return &ProgressPostgres{db: db}
}

var _ repository.ProgressRepository = (*ProgressPostgres)(nil)

func (r *ProgressPostgres) Complete(ctx context.Context, userID, lessonID string, at time.Time) (*model.Progress, error) {
	const q = `
		INSERT INTO progress (user_id, lesson_id, completed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, lesson_id) DO UPDATE SET completed_at = progress.completed_at
		RETURNING user_id, lesson_id, completed_at
	`
	var p model.Progress
	if err := r.db.QueryRowContext(ctx, q, userID, lessonID, at).Scan(&p.UserID, &p.LessonID, &p.CompletedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressPostgres) CompletedInCourse(ctx context.Context, userID, courseID string) ([]string, error) {
	const q = `
		SELECT p.lesson_id
		FROM progress p
		JOIN lessons l ON l.id = p.lesson_id
		WHERE p.user_id = $1 AND l.course_id = $2
	`
	rows, err := r.db.QueryContext(ctx, q, userID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ProgressPostgres) CompletedCounts(ctx context.Context, userID string) (map[string]int, error) {
	const q = `
		SELECT l.course_id, COUNT(*)
		FROM progress p
		JOIN lessons l ON l.id = p.lesson_id
		WHERE p.user_id = $1
		GROUP BY l.course_id
	`
	return scanCounts(ctx, r.db, q, userID)
}

const adhocColumns = `id, user_id, lesson_id, COALESCE(granted_by::text, ''), starts_at, expires_at, note, created_at`

func scanAdhoc(s rowScanner) (*model.AdhocAccess, error) {
	var a model.AdhocAccess
	if err := s.Scan(
		&a.ID,
		&a.UserID,
		&a.LessonID,
		&a.GrantedBy,
		&a.StartsAt,
		&a.ExpiresAt,
		&a.Note,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// AdhocAccessPostgres is a PostgreSQL implementation of repository.AdhocAccessRepository.
type AdhocAccessPostgres struct {
	db *sql.DB
}

func NewAdhocAccessPostgres(db *sql.DB) *AdhocAccessPostgres {
	return &AdhocAccessPostgres{db: db}
}

var _ repository.AdhocAccessRepository = (*AdhocAccessPostgres)(nil)

func (r *AdhocAccessPostgres) Grant(ctx context.Context, a *model.AdhocAccess) (*model.AdhocAccess, error) {
	const q = `
		INSERT INTO adhoc_access (id, user_id, lesson_id, granted_by, starts_at, expires_at, note, created_at)
		VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6, $7, $8)
		RETURNING ` + adhocColumns
	row := r.db.QueryRowContext(ctx, q,
		a.ID,
		a.UserID,
		a.LessonID,
		a.GrantedBy,
		a.StartsAt,
		a.ExpiresAt,
		a.Note,
		a.CreatedAt,
	)
	return scanAdhoc(row)
}

func (r *AdhocAccessPostgres) ListByUser(ctx context.Context, userID string) ([]model.AdhocAccess, error) {
	const q = `
		SELECT ` + adhocColumns + `
		FROM adhoc_access
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, q, userID)
}

func (r *AdhocAccessPostgres) ActiveForUser(ctx context.Context, userID string, now time.Time) ([]model.AdhocAccess, error) {
	const q = `
		SELECT ` + adhocColumns + `
		FROM adhoc_access
		WHERE user_id = $1 AND starts_at <= $2 AND expires_at > $2
		ORDER BY expires_at DESC
	`
	return r.list(ctx, q, userID, now)
}

func (r *AdhocAccessPostgres) Revoke(ctx context.Context, id string) error {
	const q = `DELETE FROM adhoc_access WHERE id = $1`
	return execOne(ctx, r.db, q, id)
}

func (r *AdhocAccessPostgres) list(ctx context.Context, q string, args ...any) ([]model.AdhocAccess, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.AdhocAccess, 0)
	for rows.Next() {
		a, err := scanAdhoc(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}
