package postgres

import (
	"context"
	"database/sql"

	"fxacademy/internal/model"
	"fxacademy/internal/repository"
)

const lessonColumns = `id, course_id, title, description, video_url, position, drip_days, created_at, updated_at`

func scanLesson(s rowScanner) (*model.Lesson, error) {
	var l model.Lesson
	if err := s.Scan(
		&l.ID,
		&l.CourseID,
		&l.Title,
		&l.Description,
		&l.VideoURL,
		&l.Position,
		&l.DripDays,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}

// LessonPostgres is a PostgreSQL implementation of repository.LessonRepository.
type LessonPostgres struct {
	db *sql.DB
}

func NewLessonPostgres(db *sql.DB) *LessonPostgres {
	return &LessonPostgres{db: db}
}

var _ repository.LessonRepository = (*LessonPostgres)(nil)

func (r *LessonPostgres) Create(ctx context.Context, l *model.Lesson) (*model.Lesson, error) {
	const q = `
		INSERT INTO lessons (id, course_id, title, description, video_url, position, drip_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING ` + lessonColumns
	row := r.db.QueryRowContext(ctx, q,
		l.ID,
		l.CourseID,
		l.Title,
		l.Description,
		l.VideoURL,
		l.Position,
		l.DripDays,
		l.CreatedAt,
	)
	return scanLesson(row)
}

func (r *LessonPostgres) Update(ctx context.Context, l *model.Lesson) (*model.Lesson, error) {
	const q = `
		UPDATE lessons
		SET title = $2, description = $3, video_url = $4, position = $5, drip_days = $6, updated_at = now()
		WHERE id = $1
		RETURNING ` + lessonColumns
	row := r.db.QueryRowContext(ctx, q,
		l.ID,
		l.Title,
		l.Description,
		l.VideoURL,
		l.Position,
		l.DripDays,
	)
	return scanLesson(row)
}

func (r *LessonPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM lessons WHERE id = $1`
	return execOne(ctx, r.db, q, id)
}

func (r *LessonPostgres) FindByID(ctx context.Context, id string) (*model.Lesson, error) {
	const q = `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`
	return scanLesson(r.db.QueryRowContext(ctx, q, id))
}

func (r *LessonPostgres) ListByCourse(ctx context.Context, courseID string) ([]model.Lesson, error) {
	const q = `
		SELECT ` + lessonColumns + `
		FROM lessons
		WHERE course_id = $1
		ORDER BY position, created_at
	`
	rows, err := r.db.QueryContext(ctx, q, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Lesson, 0)
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *l)
	}
	return items, rows.Err()
}
