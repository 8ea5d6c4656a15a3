package postgres

import (
	"context"
	"database/sql"

	"fxacademy/internal/model"
	"fxacademy/internal/repository"
)

const courseColumns = `id, slug, title, description, cover_key, published, position, created_at, updated_at`

func scanCourse(s rowScanner) (*model.Course, error) {
	var c model.Course
	if err := s.Scan(
		&c.ID,
		&c.Slug,
		&c.Title,
		&c.Description,
		&c.CoverKey,
		&c.Published,
		&c.Position,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// CoursePostgres is a PostgreSQL implementation of repository.CourseRepository.
type CoursePostgres struct {
	db *sql.DB
}

func NewCoursePostgres(db *sql.DB) *CoursePostgres {
	return &CoursePostgres{db: db}
}

var _ repository.CourseRepository = (*CoursePostgres)(nil)

func (r *CoursePostgres) Create(ctx context.Context, c *model.Course) (*model.Course, error) {
	const q = `
		INSERT INTO courses (id, slug, title, description, published, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING ` + courseColumns
	row := r.db.QueryRowContext(ctx, q,
		c.ID,
		c.Slug,
		c.Title,
		c.Description,
		c.Published,
		c.Position,
		c.CreatedAt,
	)
	return scanCourse(row)
}

func (r *CoursePostgres) Update(ctx context.Context, c *model.Course) (*model.Course, error) {
	const q = `
		UPDATE courses
		SET slug = $2, title = $3, description = $4, published = $5, position = $6, updated_at = now()
		WHERE id = $1
		RETURNING ` + courseColumns
	row := r.db.QueryRowContext(ctx, q,
		c.ID,
		c.Slug,
		c.Title,
		c.Description,
		c.Published,
		c.Position,
	)
	return scanCourse(row)
}

func (r *CoursePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM courses WHERE id = $1`
	return execOne(ctx, r.db, q, id)
}

func (r *CoursePostgres) FindByID(ctx context.Context, id string) (*model.Course, error) {
	const q = `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	return scanCourse(r.db.QueryRowContext(ctx, q, id))
}

func (r *CoursePostgres) FindBySlug(ctx context.Context, slug string) (*model.Course, error) {
	const q = `SELECT ` + courseColumns + ` FROM courses WHERE slug = $1`
	return scanCourse(r.db.QueryRowContext(ctx, q, slug))
}

func (r *CoursePostgres) List(ctx context.Context, includeUnpublished bool) ([]model.Course, error) {
	const q = `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE published OR $1
		ORDER BY position, created_at
	`
	rows, err := r.db.QueryContext(ctx, q, includeUnpublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func (r *CoursePostgres) SetCover(ctx context.Context, id string, key *string) error {
	const q = `UPDATE courses SET cover_key = $2, updated_at = now() WHERE id = $1`
	return execOne(ctx, r.db, q, id, key)
}

func (r *CoursePostgres) LessonCounts(ctx context.Context) (map[string]int, error) {
	const q = `SELECT course_id, COUNT(*) FROM lessons GROUP BY course_id`
	return scanCounts(ctx, r.db, q)
}

// scanCounts reads (id, count) rows into a map.
func scanCounts(ctx context.Context, db *sql.DB, q string, args ...any) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}
