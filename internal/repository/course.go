package repository

import (
	"context"
	"time"

	"fxacademy/internal/model"
)

// CourseRepository defines data access for courses.
type CourseRepository interface {
	Create(ctx context.Context, c *model.Course) (*model.Course, error)

	// Update writes slug, title, description, published and position.
	Update(ctx context.Context, c *model.Course) (*model.Course, error)

	// Delete removes the course and, by cascade, its lessons. Returns sql.ErrNoRows when missing.
	Delete(ctx context.Context, id string) error

	FindByID(ctx context.Context, id string) (*model.Course, error)
	FindBySlug(ctx context.Context, slug string) (*model.Course, error)

	// List returns courses ordered by position; unpublished ones only when includeUnpublished is set.
	List(ctx context.Context, includeUnpublished bool) ([]model.Course, error)

	// SetCover stores the object key of the cover image (nil clears it).
	SetCover(ctx context.Context, id string, key *string) error

	// LessonCounts maps course id to its number of lessons.
	LessonCounts(ctx context.Context) (map[string]int, error)
}

// LessonRepository defines data access for lessons.
type LessonRepository interface {
	Create(ctx context.Context, l *model.Lesson) (*model.Lesson, error)

	// Update writes title, description, video_url, position and drip_days.
	Update(ctx context.Context, l *model.Lesson) (*model.Lesson, error)

	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Lesson, error)

	// ListByCourse returns the lessons of a course ordered by position.
	ListByCourse(ctx context.Context, courseID string) ([]model.Lesson, error)
}

// EnrollmentRepository defines data access for course enrollments.
type EnrollmentRepository interface {
	// Enroll is idempotent: an existing enrollment is returned unchanged.
	Enroll(ctx context.Context, userID, courseID string, at time.Time) (*model.Enrollment, error)

	Find(ctx context.Context, userID, courseID string) (*model.Enrollment, error)

	ListByUser(ctx context.Context, userID string) ([]model.Enrollment, error)
}

// ProgressRepository defines data access for lesson completion.
type ProgressRepository interface {
	// Complete is idempotent: the first completion time is kept.
	Complete(ctx context.Context, userID, lessonID string, at time.Time) (*model.Progress, error)

	// CompletedInCourse returns the ids of the course lessons the user completed.
	CompletedInCourse(ctx context.Context, userID, courseID string) ([]string, error)

	// CompletedCounts maps course id to the number of lessons the user completed in it.
	CompletedCounts(ctx context.Context, userID string) (map[string]int, error)
}

// AdhocAccessRepository defines data access for per-lesson access grants.
type AdhocAccessRepository interface {
	Grant(ctx context.Context, a *model.AdhocAccess) (*model.AdhocAccess, error)

	// ListByUser returns every grant of the user, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.AdhocAccess, error)

	// ActiveForUser returns the grants whose window contains now.
	ActiveForUser(ctx context.Context, userID string, now time.Time) ([]model.AdhocAccess, error)

	Revoke(ctx context.Context, id string) error
}
