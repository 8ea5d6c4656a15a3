package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fxacademy/internal/logging"
	"fxacademy/internal/model"
	"fxacademy/internal/repository"
	"fxacademy/internal/storage"
	"fxacademy/internal/video"
)

// Viewer identifies the caller of a read path.
type Viewer struct {
	UserID string
	Admin  bool
}

type CourseSummary struct {
	model.Course
	CoverURL       string `json:"cover_url,omitempty"`
	Enrolled       bool   `json:"enrolled"`
	LessonCount    int    `json:"lesson_count"`
	CompletedCount int    `json:"completed_count"`
}

// LessonView is a lesson annotated for one viewer. VideoURL is blanked while locked.
type LessonView struct {
	model.Lesson
	LessonState
	Completed bool `json:"completed"`
}

type CourseDetail struct {
	CourseSummary
	EnrolledAt *time.Time   `json:"enrolled_at,omitempty"`
	Lessons    []LessonView `json:"lessons"`
}

type LessonDetail struct {
	LessonView
	CourseSlug string          `json:"course_slug"`
	Video      *video.Metadata `json:"video,omitempty"`
}

type Progress struct {
	CourseID  string `json:"course_id"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Percent   int    `json:"percent"`
}

// CourseService serves the catalogue to learners and enforces lesson visibility.
type CourseService interface {
	ListCourses(ctx context.Context, v Viewer) ([]CourseSummary, error)
	GetCourse(ctx context.Context, v Viewer, slug string) (*CourseDetail, error)

	// Enroll requires an active subscription unless the viewer is an admin. Enrolling twice keeps
	// the first enrollment date.
	Enroll(ctx context.Context, v Viewer, slug string) (*model.Enrollment, error)

	// GetLesson returns ErrLessonLocked when the lesson is not visible. Video metadata is best effort.
	GetLesson(ctx context.Context, v Viewer, lessonID string) (*LessonDetail, error)
	CompleteLesson(ctx context.Context, v Viewer, lessonID string) (*model.Progress, error)
	CourseProgress(ctx context.Context, v Viewer, slug string) (*Progress, error)

	// CanAccessLesson reports whether the lesson is visible to the viewer now.
	CanAccessLesson(ctx context.Context, v Viewer, lessonID string) (bool, error)
}

type courseService struct {
	users       repository.UserRepository
	courses     repository.CourseRepository
	lessons     repository.LessonRepository
	enrollments repository.EnrollmentRepository
	progress    repository.ProgressRepository
	grants      repository.AdhocAccessRepository
	store       storage.Storage
	videos      VideoResolver
	log         *logging.Logger
	now         func() time.Time
}

func NewCourseService(
	users repository.UserRepository,
	courses repository.CourseRepository,
	lessons repository.LessonRepository,
	enrollments repository.EnrollmentRepository,
	progress repository.ProgressRepository,
	grants repository.AdhocAccessRepository,
	store storage.Storage,
	videos VideoResolver,
	log *logging.Logger,
) CourseService {
	return &courseService{
		users:       users,
		courses:     courses,
		lessons:     lessons,
		enrollments: enrollments,
		progress:    progress,
		grants:      grants,
		store:       store,
		videos:      videos,
		log:         log,
		now:         time.Now,
	}
}

func (s *courseService) ListCourses(ctx context.Context, v Viewer) ([]CourseSummary, error) {
	items, err := s.courses.List(ctx, v.Admin)
	if err != nil {
		return nil, err
	}
	lessonCounts, err := s.courses.LessonCounts(ctx)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.enrollments.ListByUser(ctx, v.UserID)
	if err != nil {
		return nil, err
	}
	completed, err := s.progress.CompletedCounts(ctx, v.UserID)
	if err != nil {
		return nil, err
	}
	byCourse := make(map[string]bool, len(enrolled))
	for _, e := range enrolled {
		byCourse[e.CourseID] = true
	}

	out := make([]CourseSummary, 0, len(items))
	for i := range items {
		c := &items[i]
		out = append(out, CourseSummary{
			Course:         *c,
			CoverURL:       coverURL(ctx, s.store, s.log, c),
			Enrolled:       byCourse[c.ID],
			LessonCount:    lessonCounts[c.ID],
			CompletedCount: completed[c.ID],
		})
	}
	return out, nil
}

// findCourse resolves a slug; unpublished courses are hidden from non-admins.
func (s *courseService) findCourse(ctx context.Context, v Viewer, slug string) (*model.Course, error) {
	if slug == "" {
		return nil, ErrIDRequired
	}
	c, err := s.courses.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !c.Published && !v.Admin {
		return nil, ErrCourseNotFound
	}
	return c, nil
}

func (s *courseService) findEnrollment(ctx context.Context, userID, courseID string) (*model.Enrollment, error) {
	e, err := s.enrollments.Find(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

func (s *courseService) GetCourse(ctx context.Context, v Viewer, slug string) (*CourseDetail, error) {
	c, err := s.findCourse(ctx, v, slug)
	if err != nil {
		return nil, err
	}
	lessons, err := s.lessons.ListByCourse(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.findEnrollment(ctx, v.UserID, c.ID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	active, err := s.grants.ActiveForUser(ctx, v.UserID, now)
	if err != nil {
		return nil, err
	}
	granted := grantedLessons(active, now)
	done, err := s.progress.CompletedInCourse(ctx, v.UserID, c.ID)
	if err != nil {
		return nil, err
	}
	completed := make(map[string]bool, len(done))
	for _, id := range done {
		completed[id] = true
	}

	views := make([]LessonView, 0, len(lessons))
	for i := range lessons {
		views = append(views, lessonView(&lessons[i], v.Admin, enrollment, granted[lessons[i].ID], completed[lessons[i].ID], now))
	}

	detail := &CourseDetail{
		CourseSummary: CourseSummary{
			Course:         *c,
			CoverURL:       coverURL(ctx, s.store, s.log, c),
			Enrolled:       enrollment != nil,
			LessonCount:    len(lessons),
			CompletedCount: len(done),
		},
		Lessons: views,
	}
	if enrollment != nil {
		detail.EnrolledAt = &enrollment.EnrolledAt
	}
	return detail, nil
}

func lessonView(l *model.Lesson, admin bool, enrollment *model.Enrollment, granted, completed bool, now time.Time) LessonView {
	view := LessonView{
		Lesson:      *l,
		LessonState: LessonVisibility(l, admin, enrollment, granted, now),
		Completed:   completed,
	}
	if !view.Unlocked {
		view.VideoURL = ""
	}
	return view
}

func (s *courseService) Enroll(ctx context.Context, v Viewer, slug string) (*model.Enrollment, error) {
	c, err := s.findCourse(ctx, v, slug)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if !v.Admin {
		user, err := s.users.FindByID(ctx, v.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		if !user.IsAdmin() && !user.HasActiveSubscription(now) {
			return nil, ErrSubscriptionRequired
		}
	}
	return s.enrollments.Enroll(ctx, v.UserID, c.ID, now)
}

// visibility loads a lesson with its course and evaluates it for the viewer. Lessons of an
// unpublished course do not exist for non-admins, whatever their grants or enrollments say.
func (s *courseService) visibility(ctx context.Context, v Viewer, lessonID string) (*model.Lesson, *model.Course, LessonState, error) {
	if lessonID == "" {
		return nil, nil, LessonState{}, ErrIDRequired
	}
	l, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, LessonState{}, ErrLessonNotFound
		}
		return nil, nil, LessonState{}, err
	}
	c, err := s.courses.FindByID(ctx, l.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, LessonState{}, ErrLessonNotFound
		}
		return nil, nil, LessonState{}, err
	}
	if v.Admin {
		return l, c, LessonState{Unlocked: true}, nil
	}
	if !c.Published {
		return nil, nil, LessonState{}, ErrLessonNotFound
	}

	now := s.now().UTC()
	active, err := s.grants.ActiveForUser(ctx, v.UserID, now)
	if err != nil {
		return nil, nil, LessonState{}, err
	}
	enrollment, err := s.findEnrollment(ctx, v.UserID, l.CourseID)
	if err != nil {
		return nil, nil, LessonState{}, err
	}
	return l, c, LessonVisibility(l, false, enrollment, grantedLessons(active, now)[l.ID], now), nil
}

func (s *courseService) GetLesson(ctx context.Context, v Viewer, lessonID string) (*LessonDetail, error) {
	l, c, state, err := s.visibility(ctx, v, lessonID)
	if err != nil {
		return nil, err
	}
	if !state.Unlocked {
		return nil, ErrLessonLocked
	}

	done, err := s.progress.CompletedInCourse(ctx, v.UserID, l.CourseID)
	if err != nil {
		return nil, err
	}
	completed := false
	for _, id := range done {
		if id == l.ID {
			completed = true
			break
		}
	}

	detail := &LessonDetail{
		LessonView: LessonView{Lesson: *l, LessonState: state, Completed: completed},
		CourseSlug: c.Slug,
	}
	if l.VideoURL != "" && s.videos != nil {
		meta, err := s.videos.Lookup(ctx, l.VideoURL)
		if err != nil {
			s.log.Warn("video_metadata_unavailable", map[string]any{
				"component": "course",
				"lesson_id": l.ID,
				"error":     err.Error(),
			})
		} else {
			detail.Video = meta
		}
	}
	return detail, nil
}

func (s *courseService) CompleteLesson(ctx context.Context, v Viewer, lessonID string) (*model.Progress, error) {
	l, _, state, err := s.visibility(ctx, v, lessonID)
	if err != nil {
		return nil, err
	}
	if !state.Unlocked {
		return nil, ErrLessonLocked
	}
	return s.progress.Complete(ctx, v.UserID, l.ID, s.now().UTC())
}

func (s *courseService) CourseProgress(ctx context.Context, v Viewer, slug string) (*Progress, error) {
	c, err := s.findCourse(ctx, v, slug)
	if err != nil {
		return nil, err
	}
	counts, err := s.courses.LessonCounts(ctx)
	if err != nil {
		return nil, err
	}
	done, err := s.progress.CompletedInCourse(ctx, v.UserID, c.ID)
	if err != nil {
		return nil, err
	}
	p := &Progress{CourseID: c.ID, Completed: len(done), Total: counts[c.ID]}
	if p.Total > 0 {
		p.Percent = p.Completed * 100 / p.Total
	}
	return p, nil
}

func (s *courseService) CanAccessLesson(ctx context.Context, v Viewer, lessonID string) (bool, error) {
	_, _, state, err := s.visibility(ctx, v, lessonID)
	if err != nil {
		return false, err
	}
	return state.Unlocked, nil
}
