package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"fxacademy/internal/model"
)

type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) course(args mock.Arguments) (*model.Course, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockCourseRepository) Create(ctx context.Context, c *model.Course) (*model.Course, error) {
	return m.course(m.Called(ctx, c))
}

func (m *MockCourseRepository) Update(ctx context.Context, c *model.Course) (*model.Course, error) {
	return m.course(m.Called(ctx, c))
}

func (m *MockCourseRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCourseRepository) FindByID(ctx context.Context, id string) (*model.Course, error) {
	return m.course(m.Called(ctx, id))
}

func (m *MockCourseRepository) FindBySlug(ctx context.Context, slug string) (*model.Course, error) {
	return m.course(m.Called(ctx, slug))
}

func (m *MockCourseRepository) List(ctx context.Context, includeUnpublished bool) ([]model.Course, error) {
	args := m.Called(ctx, includeUnpublished)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Course), args.Error(1)
}

func (m *MockCourseRepository) SetCover(ctx context.Context, id string, key *string) error {
	return m.Called(ctx, id, key).Error(0)
}

func (m *MockCourseRepository) LessonCounts(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

type MockLessonRepository struct {
	mock.Mock
}

func (m *MockLessonRepository) lesson(args mock.Arguments) (*model.Lesson, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lesson), args.Error(1)
}

func (m *MockLessonRepository) Create(ctx context.Context, l *model.Lesson) (*model.Lesson, error) {
	return m.lesson(m.Called(ctx, l))
}

func (m *MockLessonRepository) Update(ctx context.Context, l *model.Lesson) (*model.Lesson, error) {
	return m.lesson(m.Called(ctx, l))
}

func (m *MockLessonRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLessonRepository) FindByID(ctx context.Context, id string) (*model.Lesson, error) {
	return m.lesson(m.Called(ctx, id))
}

func (m *MockLessonRepository) ListByCourse(ctx context.Context, courseID string) ([]model.Lesson, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lesson), args.Error(1)
}

type MockEnrollmentRepository struct {
	mock.Mock
}

func (m *MockEnrollmentRepository) Enroll(ctx context.Context, userID, courseID string, at time.Time) (*model.Enrollment, error) {
	args := m.Called(ctx, userID, courseID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) Find(ctx context.Context, userID, courseID string) (*model.Enrollment, error) {
	args := m.Called(ctx, userID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) ListByUser(ctx context.Context, userID string) ([]model.Enrollment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Enrollment), args.Error(1)
}

type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) Complete(ctx context.Context, userID, lessonID string, at time.Time) (*model.Progress, error) {
	args := m.Called(ctx, userID, lessonID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Progress), args.Error(1)
}

func (m *MockProgressRepository) CompletedInCourse(ctx context.Context, userID, courseID string) ([]string, error) {
	args := m.Called(ctx, userID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProgressRepository) CompletedCounts(ctx context.Context, userID string) (map[string]int, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

type MockAdhocAccessRepository struct {
	mock.Mock
}

func (m *MockAdhocAccessRepository) Grant(ctx context.Context, a *model.AdhocAccess) (*model.AdhocAccess, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdhocAccess), args.Error(1)
}

func (m *MockAdhocAccessRepository) ListByUser(ctx context.Context, userID string) ([]model.AdhocAccess, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AdhocAccess), args.Error(1)
}

func (m *MockAdhocAccessRepository) ActiveForUser(ctx context.Context, userID string, now time.Time) ([]model.AdhocAccess, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AdhocAccess), args.Error(1)
}

func (m *MockAdhocAccessRepository) Revoke(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
