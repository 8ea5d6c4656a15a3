package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"fxacademy/internal/model"
	"fxacademy/internal/service"
	"fxacademy/internal/storage"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) CreateCourse(ctx context.Context, in service.CourseInput) (*service.AdminCourse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AdminCourse), args.Error(1)
}

func (m *MockCatalogService) UpdateCourse(ctx context.Context, id string, in service.CourseInput) (*service.AdminCourse, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AdminCourse), args.Error(1)
}

func (m *MockCatalogService) DeleteCourse(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogService) ListCourses(ctx context.Context) ([]service.AdminCourse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.AdminCourse), args.Error(1)
}

func (m *MockCatalogService) UploadCover(ctx context.Context, courseID string, r io.Reader, filename, contentType string, size int64) (*service.AdminCourse, error) {
	args := m.Called(ctx, courseID, r, filename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AdminCourse), args.Error(1)
}

func (m *MockCatalogService) OpenCover(ctx context.Context, courseID string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, storage.ObjectInfo{}, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockCatalogService) CreateLesson(ctx context.Context, in service.LessonInput) (*model.Lesson, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lesson), args.Error(1)
}

func (m *MockCatalogService) UpdateLesson(ctx context.Context, id string, in service.LessonInput) (*model.Lesson, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lesson), args.Error(1)
}

func (m *MockCatalogService) DeleteLesson(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogService) ListLessons(ctx context.Context, courseID string) ([]model.Lesson, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lesson), args.Error(1)
}
