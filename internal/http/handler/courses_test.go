package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fxacademy/internal/model"
	"fxacademy/internal/service"
	serviceMocks "fxacademy/internal/service/mocks"
	"fxacademy/internal/storage"
)

const lessonUUID = "9b2e7c1a-5d4f-4b3a-9c8d-7e6f5a4b3c2d"

func TestListCourses(t *testing.T) {
	svc := new(serviceMocks.MockCourseService)
	app := newApp(&studentID)
	app.Get("/courses", ListCourses(svc))

	v := service.Viewer{UserID: studentID.UserID}

	t.Run("annotated list", func(t *testing.T) {
		svc.On("ListCourses", mock.Anything, v).Return([]service.CourseSummary{
			{Course: model.Course{Slug: "price-action"}, Enrolled: true, LessonCount: 4, CompletedCount: 1},
		}, nil).Once()

		resp := doJSON(t, app, http.MethodGet, "/courses", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body listResponse[service.CourseSummary]
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Data, 1)
		assert.True(t, body.Data[0].Enrolled)
		assert.Equal(t, 4, body.Data[0].LessonCount)
	})

	t.Run("empty list renders as array", func(t *testing.T) {
		svc.On("ListCourses", mock.Anything, v).Return(nil, nil).Once()

		resp := doJSON(t, app, http.MethodGet, "/courses", nil)
		b, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"data":[]}`, string(b))
	})
}

func TestGetCourseAndEnroll(t *testing.T) {
	svc := new(serviceMocks.MockCourseService)
	app := newApp(&adminID)
	app.Get("/courses/:slug", GetCourse(svc))
	app.Post("/courses/:slug/enroll", EnrollCourse(svc))
	app.Get("/courses/:slug/progress", CourseProgress(svc))

	v := service.Viewer{UserID: adminID.UserID, Admin: true}

	svc.On("GetCourse", mock.Anything, v, "missing").Return(nil, service.ErrCourseNotFound).Once()
	resp := doJSON(t, app, http.MethodGet, "/courses/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "COURSE_NOT_FOUND", decodeError(t, resp).Error.Code)

	unlockAt := time.Date(2026, 3, 17, 9, 0, 0, 0, time.UTC)
	svc.On("GetCourse", mock.Anything, v, "swing").Return(&service.CourseDetail{
		CourseSummary: service.CourseSummary{Course: model.Course{Slug: "swing"}},
		Lessons: []service.LessonView{
			{Lesson: model.Lesson{Title: "Intro"}, LessonState: service.LessonState{Unlocked: true}},
			{Lesson: model.Lesson{Title: "Entries"}, LessonState: service.LessonState{UnlockAt: &unlockAt}},
		},
	}, nil).Once()
	resp = doJSON(t, app, http.MethodGet, "/courses/swing", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var detail map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	lessons := detail["lessons"].([]any)
	require.Len(t, lessons, 2)
	assert.Equal(t, true, lessons[0].(map[string]any)["unlocked"])
	assert.Equal(t, "2026-03-17T09:00:00Z", lessons[1].(map[string]any)["unlock_at"])

	svc.On("Enroll", mock.Anything, v, "swing").Return(&model.Enrollment{CourseID: "c1"}, nil).Once()
	resp = doJSON(t, app, http.MethodPost, "/courses/swing/enroll", nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	svc.On("Enroll", mock.Anything, v, "swing").Return(nil, service.ErrSubscriptionRequired).Once()
	resp = doJSON(t, app, http.MethodPost, "/courses/swing/enroll", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "SUBSCRIPTION_REQUIRED", decodeError(t, resp).Error.Code)

	svc.On("CourseProgress", mock.Anything, v, "swing").Return(&service.Progress{Completed: 1, Total: 4, Percent: 25}, nil).Once()
	resp = doJSON(t, app, http.MethodGet, "/courses/swing/progress", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	svc.AssertExpectations(t)
}

func TestGetLesson(t *testing.T) {
	svc := new(serviceMocks.MockCourseService)
	app := newApp(&studentID)
	app.Get("/lessons/:id", GetLesson(svc))
	app.Post("/lessons/:id/complete", CompleteLesson(svc))

	v := service.Viewer{UserID: studentID.UserID}

	t.Run("invalid id", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/lessons/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})

	t.Run("locked", func(t *testing.T) {
		svc.On("GetLesson", mock.Anything, v, lessonUUID).Return(nil, service.ErrLessonLocked).Once()

		resp := doJSON(t, app, http.MethodGet, "/lessons/"+lessonUUID, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "LESSON_LOCKED", decodeError(t, resp).Error.Code)
	})

	t.Run("visible", func(t *testing.T) {
		svc.On("GetLesson", mock.Anything, v, lessonUUID).Return(&service.LessonDetail{
			LessonView: service.LessonView{Lesson: model.Lesson{ID: lessonUUID, VideoURL: "https://vimeo.com/1"}},
			CourseSlug: "swing",
		}, nil).Once()

		resp := doJSON(t, app, http.MethodGet, "/lessons/"+lessonUUID, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("complete", func(t *testing.T) {
		svc.On("CompleteLesson", mock.Anything, v, lessonUUID).Return(&model.Progress{LessonID: lessonUUID}, nil).Once()

		resp := doJSON(t, app, http.MethodPost, "/lessons/"+lessonUUID+"/complete", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	svc.AssertExpectations(t)
}

func TestCourseCover(t *testing.T) {
	svc := new(serviceMocks.MockCatalogService)
	app := newApp(nil)
	app.Get("/covers/:id", CourseCover(svc))

	courseID := "3c2b1a0f-9e8d-4c7b-a6f5-e4d3c2b1a0f9"

	t.Run("streams the object", func(t *testing.T) {
		data := []byte("\x89PNG fake")
		svc.On("OpenCover", mock.Anything, courseID).
			Return(io.NopCloser(bytes.NewReader(data)), storage.ObjectInfo{ContentType: "image/png", Size: int64(len(data))}, nil).Once()

		resp := doJSON(t, app, http.MethodGet, "/covers/"+courseID, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, data, b)
	})

	t.Run("no cover", func(t *testing.T) {
		svc.On("OpenCover", mock.Anything, courseID).Return(nil, storage.ObjectInfo{}, service.ErrCourseNotFound).Once()

		resp := doJSON(t, app, http.MethodGet, "/covers/"+courseID, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
