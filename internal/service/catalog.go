package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"fxacademy/internal/database"
	"fxacademy/internal/logging"
	"fxacademy/internal/model"
	"fxacademy/internal/repository"
	"fxacademy/internal/storage"
)

type CourseInput struct {
	Slug        string
	Title       string
	Description string
	Published   bool
	Position    int
}

type LessonInput struct {
	CourseID    string
	Title       string
	Description string
	VideoURL    string
	Position    int
	DripDays    int
}

// AdminCourse is a course as shown to operators, with its cover resolved to a URL.
type AdminCourse struct {
	model.Course
	CoverURL    string `json:"cover_url,omitempty"`
	LessonCount int    `json:"lesson_count"`
}

// CatalogService manages courses, lessons and cover images.
type CatalogService interface {
	CreateCourse(ctx context.Context, in CourseInput) (*AdminCourse, error)
	UpdateCourse(ctx context.Context, id string, in CourseInput) (*AdminCourse, error)
	// DeleteCourse removes the course with its lessons and cover object.
	DeleteCourse(ctx context.Context, id string) error
	ListCourses(ctx context.Context) ([]AdminCourse, error)

	// UploadCover stores a new cover, swaps it in and deletes the previous object.
	// The uploaded object is removed again if the database update fails.
	UploadCover(ctx context.Context, courseID string, r io.Reader, filename, contentType string, size int64) (*AdminCourse, error)
	// OpenCover streams a course cover; the caller must close the reader.
	OpenCover(ctx context.Context, courseID string) (io.ReadCloser, storage.ObjectInfo, error)

	CreateLesson(ctx context.Context, in LessonInput) (*model.Lesson, error)
	UpdateLesson(ctx context.Context, id string, in LessonInput) (*model.Lesson, error)
	DeleteLesson(ctx context.Context, id string) error
	ListLessons(ctx context.Context, courseID string) ([]model.Lesson, error)
}

type catalogService struct {
	courses repository.CourseRepository
	lessons repository.LessonRepository
	store   storage.Storage
	log     *logging.Logger
	now     func() time.Time
}

func NewCatalogService(courses repository.CourseRepository, lessons repository.LessonRepository, store storage.Storage, log *logging.Logger) CatalogService {
	return &catalogService{courses: courses, lessons: lessons, store: store, log: log, now: time.Now}
}

// Slugify lower-cases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

func (in CourseInput) normalize() (CourseInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" {
		return in, ErrInvalidInput
	}
	in.Slug = Slugify(in.Slug)
	if in.Slug == "" {
		in.Slug = Slugify(in.Title)
	}
	if in.Slug == "" {
		return in, ErrInvalidInput
	}
	return in, nil
}

func (s *catalogService) CreateCourse(ctx context.Context, in CourseInput) (*AdminCourse, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	c, err := s.courses.Create(ctx, &model.Course{
		ID:          uuid.NewString(),
		Slug:        in.Slug,
		Title:       in.Title,
		Description: in.Description,
		Published:   in.Published,
		Position:    in.Position,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return s.present(ctx, c, 0), nil
}

func (s *catalogService) UpdateCourse(ctx context.Context, id string, in CourseInput) (*AdminCourse, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	c, err := s.courses.Update(ctx, &model.Course{
		ID:          id,
		Slug:        in.Slug,
		Title:       in.Title,
		Description: in.Description,
		Published:   in.Published,
		Position:    in.Position,
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrCourseNotFound
		case database.IsUniqueViolation(err):
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	counts, err := s.courses.LessonCounts(ctx)
	if err != nil {
		return nil, err
	}
	return s.present(ctx, c, counts[c.ID]), nil
}

func (s *catalogService) DeleteCourse(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	c, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCourseNotFound
		}
		return err
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCourseNotFound
		}
		return err
	}
	if c.CoverKey != nil {
		s.deleteObject(ctx, *c.CoverKey)
	}
	return nil
}

func (s *catalogService) ListCourses(ctx context.Context) ([]AdminCourse, error) {
	items, err := s.courses.List(ctx, true)
	if err != nil {
		return nil, err
	}
	counts, err := s.courses.LessonCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AdminCourse, 0, len(items))
	for i := range items {
		out = append(out, *s.present(ctx, &items[i], counts[items[i].ID]))
	}
	return out, nil
}

func (s *catalogService) UploadCover(ctx context.Context, courseID string, r io.Reader, filename, contentType string, size int64) (*AdminCourse, error) {
	if courseID == "" {
		return nil, ErrIDRequired
	}
	if r == nil {
		return nil, ErrReaderNil
	}
	if err := storage.ValidateCover(contentType, size); err != nil {
		return nil, err
	}
	c, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	key := storage.CoverKey(courseID, filename, contentType)
	if _, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": filename,
		},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	if err := s.courses.SetCover(ctx, courseID, &key); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	if c.CoverKey != nil && *c.CoverKey != key {
		s.deleteObject(ctx, *c.CoverKey)
	}
	c.CoverKey = &key

	counts, err := s.courses.LessonCounts(ctx)
	if err != nil {
		return nil, err
	}
	return s.present(ctx, c, counts[c.ID]), nil
}

func (s *catalogService) OpenCover(ctx context.Context, courseID string) (io.ReadCloser, storage.ObjectInfo, error) {
	if courseID == "" {
		return nil, storage.ObjectInfo{}, ErrIDRequired
	}
	c, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ObjectInfo{}, ErrCourseNotFound
		}
		return nil, storage.ObjectInfo{}, err
	}
	if c.CoverKey == nil {
		return nil, storage.ObjectInfo{}, ErrCourseNotFound
	}
	return s.store.Get(ctx, *c.CoverKey)
}

// deleteObject removes a stale object; failures only leave garbage behind and are logged.
func (s *catalogService) deleteObject(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn("cover_delete_failed", map[string]any{"component": "catalog", "key": key, "error": err.Error()})
	}
}

func (s *catalogService) present(ctx context.Context, c *model.Course, lessons int) *AdminCourse {
	return &AdminCourse{Course: *c, CoverURL: coverURL(ctx, s.store, s.log, c), LessonCount: lessons}
}

// coverURL presigns the course cover; an unreachable store yields an empty URL.
func coverURL(ctx context.Context, store storage.Storage, log *logging.Logger, c *model.Course) string {
	if c.CoverKey == nil || store == nil {
		return ""
	}
	u, err := store.PresignGet(ctx, *c.CoverKey, storage.CoverURLExpiry)
	if err != nil {
		log.Warn("cover_presign_failed", map[string]any{"course_id": c.ID, "error": err.Error()})
		return ""
	}
	return u
}

func (in LessonInput) validate() (LessonInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.VideoURL = strings.TrimSpace(in.VideoURL)
	if in.Title == "" || in.DripDays < 0 {
		return in, ErrInvalidInput
	}
	return in, nil
}

func (s *catalogService) CreateLesson(ctx context.Context, in LessonInput) (*model.Lesson, error) {
	if in.CourseID == "" {
		return nil, ErrIDRequired
	}
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	l, err := s.lessons.Create(ctx, &model.Lesson{
		ID:          uuid.NewString(),
		CourseID:    in.CourseID,
		Title:       in.Title,
		Description: in.Description,
		VideoURL:    in.VideoURL,
		Position:    in.Position,
		DripDays:    in.DripDays,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return l, nil
}

func (s *catalogService) UpdateLesson(ctx context.Context, id string, in LessonInput) (*model.Lesson, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	l, err := s.lessons.Update(ctx, &model.Lesson{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		VideoURL:    in.VideoURL,
		Position:    in.Position,
		DripDays:    in.DripDays,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	return l, nil
}

func (s *catalogService) DeleteLesson(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.lessons.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrLessonNotFound
		}
		return err
	}
	return nil
}

func (s *catalogService) ListLessons(ctx context.Context, courseID string) ([]model.Lesson, error) {
	if courseID == "" {
		return nil, ErrIDRequired
	}
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return s.lessons.ListByCourse(ctx, courseID)
}
