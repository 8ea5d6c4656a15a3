package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fxacademy/internal/model"
	"fxacademy/internal/service"
)

type MockCourseService struct {
	mock.Mock
}

func (m *MockCourseService) ListCourses(ctx context.Context, v service.Viewer) ([]service.CourseSummary, error) {
	args := m.Called(ctx, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.CourseSummary), args.Error(1)
}

func (m *MockCourseService) GetCourse(ctx context.Context, v service.Viewer, slug string) (*service.CourseDetail, error) {
	args := m.Called(ctx, v, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CourseDetail), args.Error(1)
}

func (m *MockCourseService) Enroll(ctx context.Context, v service.Viewer, slug string) (*model.Enrollment, error) {
	args := m.Called(ctx, v, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Enrollment), args.Error(1)
}

func (m *MockCourseService) GetLesson(ctx context.Context, v service.Viewer, lessonID string) (*service.LessonDetail, error) {
	args := m.Called(ctx, v, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LessonDetail), args.Error(1)
}

func (m *MockCourseService) CompleteLesson(ctx context.Context, v service.Viewer, lessonID string) (*model.Progress, error) {
	args := m.Called(ctx, v, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Progress), args.Error(1)
}

func (m *MockCourseService) CourseProgress(ctx context.Context, v service.Viewer, slug string) (*service.Progress, error) {
	args := m.Called(ctx, v, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Progress), args.Error(1)
}

func (m *MockCourseService) CanAccessLesson(ctx context.Context, v service.Viewer, lessonID string) (bool, error) {
	args := m.Called(ctx, v, lessonID)
	return args.Bool(0), args.Error(1)
}
