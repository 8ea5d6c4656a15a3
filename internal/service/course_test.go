package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fxacademy/internal/model"
	repoMocks "fxacademy/internal/repository/mocks"
	storeMocks "fxacademy/internal/storage/mocks"
	"fxacademy/internal/video"
)

type courseFixture struct {
	users       *repoMocks.MockUserRepository
	courses     *repoMocks.MockCourseRepository
	lessons     *repoMocks.MockLessonRepository
	enrollments *repoMocks.MockEnrollmentRepository
	progress    *repoMocks.MockProgressRepository
	grants      *repoMocks.MockAdhocAccessRepository
	store       *storeMocks.MockStorage
	videos      *mockVideos
	svc         *courseService
}

func newCourseFixture() (*courseFixture, func() string) {
	f := &courseFixture{
		users:       new(repoMocks.MockUserRepository),
		courses:     new(repoMocks.MockCourseRepository),
		lessons:     new(repoMocks.MockLessonRepository),
		enrollments: new(repoMocks.MockEnrollmentRepository),
		progress:    new(repoMocks.MockProgressRepository),
		grants:      new(repoMocks.MockAdhocAccessRepository),
		store:       new(storeMocks.MockStorage),
		videos:      new(mockVideos),
	}
	log, buf := testLogger()
	f.svc = NewCourseService(f.users, f.courses, f.lessons, f.enrollments, f.progress, f.grants,
		f.store, f.videos, log).(*courseService)
	f.svc.now = fixedNow
	return f, buf.String
}

var student = Viewer{UserID: "u1"}

func TestCourseService_ListCourses(t *testing.T) {
	ctx := context.Background()
	f, _ := newCourseFixture()
	f.courses.On("List", ctx, false).Return([]model.Course{{ID: "c1", Published: true}, {ID: "c2", Published: true}}, nil)
	f.courses.On("LessonCounts", ctx).Return(map[string]int{"c1": 3, "c2": 5}, nil)
	f.enrollments.On("ListByUser", ctx, "u1").Return([]model.Enrollment{{UserID: "u1", CourseID: "c2"}}, nil)
	f.progress.On("CompletedCounts", ctx, "u1").Return(map[string]int{"c2": 4}, nil)

	items, err := f.svc.ListCourses(ctx, student)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.False(t, items[0].Enrolled)
	assert.Equal(t, 3, items[0].LessonCount)
	assert.True(t, items[1].Enrolled)
	assert.Equal(t, 4, items[1].CompletedCount)
}

func TestCourseService_GetCourse_DripAndGrants(t *testing.T) {
	ctx := context.Background()
	f, _ := newCourseFixture()
	enrolledAt := testNow.Add(-3 * 24 * time.Hour)

	f.courses.On("FindBySlug", ctx, "basics").Return(&model.Course{ID: "c1", Slug: "basics", Published: true}, nil)
	f.lessons.On("ListByCourse", ctx, "c1").Return([]model.Lesson{
		{ID: "l1", CourseID: "c1", VideoURL: "https://vimeo.com/1", DripDays: 0},
		{ID: "l2", CourseID: "c1", VideoURL: "https://vimeo.com/2", DripDays: 7},
		{ID: "l3", CourseID: "c1", VideoURL: "https://vimeo.com/3", DripDays: 14},
	}, nil)
	f.enrollments.On("Find", ctx, "u1", "c1").Return(&model.Enrollment{UserID: "u1", CourseID: "c1", EnrolledAt: enrolledAt}, nil)
	f.grants.On("ActiveForUser", ctx, "u1", testNow).Return([]model.AdhocAccess{
		{LessonID: "l3", StartsAt: testNow.Add(-time.Hour), ExpiresAt: testNow.Add(time.Hour)},
	}, nil)
	f.progress.On("CompletedInCourse", ctx, "u1", "c1").Return([]string{"l1"}, nil)

	detail, err := f.svc.GetCourse(ctx, student, "basics")
	require.NoError(t, err)
	require.Len(t, detail.Lessons, 3)
	assert.True(t, detail.Enrolled)
	assert.Equal(t, 1, detail.CompletedCount)

	l1, l2, l3 := detail.Lessons[0], detail.Lessons[1], detail.Lessons[2]
	assert.True(t, l1.Unlocked)
	assert.True(t, l1.Completed)
	assert.Equal(t, "https://vimeo.com/1", l1.VideoURL)

	assert.False(t, l2.Unlocked)
	assert.Empty(t, l2.VideoURL)
	require.NotNil(t, l2.UnlockAt)
	assert.Equal(t, enrolledAt.Add(7*24*time.Hour), *l2.UnlockAt)

	assert.True(t, l3.Unlocked)
	assert.Nil(t, l3.UnlockAt)
}

func TestCourseService_GetCourse_UnpublishedHidden(t *testing.T) {
	ctx := context.Background()
	f, _ := newCourseFixture()
	f.courses.On("FindBySlug", ctx, "draft").Return(&model.Course{ID: "c9", Published: false}, nil)

	_, err := f.svc.GetCourse(ctx, student, "draft")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseService_Enroll(t *testing.T) {
	ctx := context.Background()
	active := testNow.Add(24 * time.Hour)
	lapsed := testNow.Add(-time.Hour)

	tests := []struct {
		name    string
		viewer  Viewer
		user    *model.User
		wantErr error
	}{
		{name: "active subscription", viewer: student, user: &model.User{ID: "u1", SubscriptionExpiresAt: &active}},
		{name: "lapsed subscription", viewer: student, user: &model.User{ID: "u1", SubscriptionExpiresAt: &lapsed}, wantErr: ErrSubscriptionRequired},
		{name: "no subscription", viewer: student, user: &model.User{ID: "u1"}, wantErr: ErrSubscriptionRequired},
		{name: "admin", viewer: Viewer{UserID: "u1", Admin: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newCourseFixture()
			f.courses.On("FindBySlug", ctx, "basics").Return(&model.Course{ID: "c1", Published: true}, nil)
			if tt.user != nil {
				f.users.On("FindByID", ctx, "u1").Return(tt.user, nil)
			}
			if tt.wantErr == nil {
				f.enrollments.On("Enroll", ctx, "u1", "c1", testNow).
					Return(&model.Enrollment{UserID: "u1", CourseID: "c1", EnrolledAt: testNow}, nil)
			}

			e, err := f.svc.Enroll(ctx, tt.viewer, "basics")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "c1", e.CourseID)
			}
			f.users.AssertExpectations(t)
			f.enrollments.AssertExpectations(t)
		})
	}
}

func TestCourseService_GetLesson(t *testing.T) {
	ctx := context.Background()
	lesson := &model.Lesson{ID: "l1", CourseID: "c1", VideoURL: "https://vimeo.com/76979871", DripDays: 2}

	t.Run("locked without enrollment", func(t *testing.T) {
		f, _ := newCourseFixture()
		f.lessons.On("FindByID", ctx, "l1").Return(lesson, nil)
		f.courses.On("FindByID", ctx, "c1").Return(&model.Course{ID: "c1", Slug: "basics", Published: true}, nil)
		f.grants.On("ActiveForUser", ctx, "u1", testNow).Return([]model.AdhocAccess{}, nil)
		f.enrollments.On("Find", ctx, "u1", "c1").Return(nil, sql.ErrNoRows)

		_, err := f.svc.GetLesson(ctx, student, "l1")
		assert.ErrorIs(t, err, ErrLessonLocked)
	})

	t.Run("unlocked with metadata", func(t *testing.T) {
		f, _ := newCourseFixture()
		f.lessons.On("FindByID", ctx, "l1").Return(lesson, nil)
		f.grants.On("ActiveForUser", ctx, "u1", testNow).Return([]model.AdhocAccess{}, nil)
		f.enrollments.On("Find", ctx, "u1", "c1").Return(&model.Enrollment{EnrolledAt: testNow.Add(-72 * time.Hour)}, nil)
		f.courses.On("FindByID", ctx, "c1").Return(&model.Course{ID: "c1", Slug: "basics", Published: true}, nil)
		f.progress.On("CompletedInCourse", ctx, "u1", "c1").Return([]string{"l1"}, nil)
		f.videos.On("Lookup", ctx, lesson.VideoURL).Return(&video.Metadata{Title: "Candles", Duration: 300}, nil)

		d, err := f.svc.GetLesson(ctx, student, "l1")
		require.NoError(t, err)
		assert.Equal(t, "basics", d.CourseSlug)
		assert.True(t, d.Completed)
		require.NotNil(t, d.Video)
		assert.Equal(t, "Candles", d.Video.Title)
	})

	t.Run("video failure is not fatal", func(t *testing.T) {
		f, logs := newCourseFixture()
		f.lessons.On("FindByID", ctx, "l1").Return(lesson, nil)
		f.courses.On("FindByID", ctx, "c1").Return(&model.Course{ID: "c1", Slug: "basics", Published: true}, nil)
		f.progress.On("CompletedInCourse", ctx, "admin", "c1").Return([]string{}, nil)
		f.videos.On("Lookup", ctx, lesson.VideoURL).Return(nil, errors.New("vimeo down"))

		d, err := f.svc.GetLesson(ctx, Viewer{UserID: "admin", Admin: true}, "l1")
		require.NoError(t, err)
		assert.Nil(t, d.Video)
		assert.Contains(t, logs(), "video_metadata_unavailable")
	})

	t.Run("unpublished course hides granted lesson", func(t *testing.T) {
		f, _ := newCourseFixture()
		f.lessons.On("FindByID", ctx, "l1").Return(lesson, nil)
		f.courses.On("FindByID", ctx, "c1").Return(&model.Course{ID: "c1", Slug: "basics"}, nil)

		_, err := f.svc.GetLesson(ctx, student, "l1")
		assert.ErrorIs(t, err, ErrLessonNotFound)
		_, err = f.svc.CompleteLesson(ctx, student, "l1")
		assert.ErrorIs(t, err, ErrLessonNotFound)
		f.grants.AssertNotCalled(t, "ActiveForUser", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown lesson", func(t *testing.T) {
		f, _ := newCourseFixture()
		f.lessons.On("FindByID", ctx, "l404").Return(nil, sql.ErrNoRows)

		_, err := f.svc.GetLesson(ctx, student, "l404")
		assert.ErrorIs(t, err, ErrLessonNotFound)
	})
}

func TestCourseService_CompleteLesson(t *testing.T) {
	ctx := context.Background()
	lesson := &model.Lesson{ID: "l1", CourseID: "c1", DripDays: 30}

	f, _ := newCourseFixture()
	f.lessons.On("FindByID", ctx, "l1").Return(lesson, nil)
	f.courses.On("FindByID", ctx, "c1").Return(&model.Course{ID: "c1", Slug: "basics", Published: true}, nil)
	f.grants.On("ActiveForUser", ctx, "u1", testNow).Return([]model.AdhocAccess{
		{LessonID: "l1", StartsAt: testNow, ExpiresAt: testNow.Add(time.Hour)},
	}, nil)
	f.enrollments.On("Find", ctx, "u1", "c1").Return(nil, sql.ErrNoRows)
	f.progress.On("Complete", ctx, "u1", "l1", testNow).Return(&model.Progress{UserID: "u1", LessonID: "l1", CompletedAt: testNow}, nil)

	p, err := f.svc.CompleteLesson(ctx, student, "l1")
	require.NoError(t, err)
	assert.Equal(t, testNow, p.CompletedAt)
}

func TestCourseService_CourseProgress(t *testing.T) {
	ctx := context.Background()
	f, _ := newCourseFixture()
	f.courses.On("FindBySlug", ctx, "basics").Return(&model.Course{ID: "c1", Published: true}, nil)
	f.courses.On("LessonCounts", ctx).Return(map[string]int{"c1": 3}, nil)
	f.progress.On("CompletedInCourse", ctx, "u1", "c1").Return([]string{"l1", "l2"}, nil)

	p, err := f.svc.CourseProgress(ctx, student, "basics")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Completed)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 66, p.Percent)
}

func TestCourseService_CanAccessLesson(t *testing.T) {
	ctx := context.Background()
	f, _ := newCourseFixture()
	f.lessons.On("FindByID", ctx, "l1").Return(&model.Lesson{ID: "l1", CourseID: "c1", DripDays: 1}, nil)
	f.courses.On("FindByID", ctx, "c1").Return(&model.Course{ID: "c1", Slug: "basics", Published: true}, nil)
	f.grants.On("ActiveForUser", ctx, "u1", testNow).Return([]model.AdhocAccess{}, nil)
	f.enrollments.On("Find", ctx, "u1", "c1").Return(&model.Enrollment{EnrolledAt: testNow.Add(-23 * time.Hour)}, nil)

	ok, err := f.svc.CanAccessLesson(ctx, student, "l1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.CanAccessLesson(ctx, Viewer{UserID: "u1", Admin: true}, "l1")
	require.NoError(t, err)
	assert.True(t, ok)
}
