package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxacademy/internal/model"
)

var (
	courseCols = []string{"id", "slug", "title", "description", "cover_key", "published", "position", "created_at", "updated_at"}
	lessonCols = []string{"id", "course_id", "title", "description", "video_url", "position", "drip_days", "created_at", "updated_at"}
)

func TestCoursePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	c := &model.Course{ID: "c1", Slug: "price-action", Title: "Price Action", Published: true, Position: 1, CreatedAt: now}

	mock.ExpectQuery("INSERT INTO courses").
		WithArgs("c1", "price-action", "Price Action", "", true, 1, now).
		WillReturnRows(sqlmock.NewRows(courseCols).AddRow("c1", "price-action", "Price Action", "", nil, true, 1, now, now))

	got, err := NewCoursePostgres(db).Create(context.Background(), c)

	assert.NoError(t, err)
	assert.Equal(t, "price-action", got.Slug)
	assert.Nil(t, got.CoverKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoursePostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	key := "courses/c2/cover.png"
	mock.ExpectQuery("SELECT (.+) FROM courses WHERE published OR").
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows(courseCols).
			AddRow("c1", "basics", "Basics", "", nil, true, 1, time.Now(), time.Now()).
			AddRow("c2", "draft", "Draft", "", key, false, 2, time.Now(), time.Now()))

	items, err := NewCoursePostgres(db).List(context.Background(), true)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, key, *items[1].CoverKey)
	assert.False(t, items[1].Published)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoursePostgres_DeleteAndCover(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCoursePostgres(db)
	ctx := context.Background()
	key := "courses/c1/new.png"

	mock.ExpectExec("UPDATE courses SET cover_key").WithArgs("c1", key).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM courses WHERE id = ").WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.SetCover(ctx, "c1", &key))
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoursePostgres_LessonCounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT course_id, COUNT\\(\\*\\) FROM lessons GROUP BY course_id").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "count"}).AddRow("c1", 4).AddRow("c2", 1))

	counts, err := NewCoursePostgres(db).LessonCounts(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, map[string]int{"c1": 4, "c2": 1}, counts)
}

func TestLessonPostgres_ListByCourse(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM lessons WHERE course_id = (.+) ORDER BY position").
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(lessonCols).
			AddRow("l1", "c1", "Intro", "", "https://vimeo.com/1", 1, 0, time.Now(), time.Now()).
			AddRow("l2", "c1", "Trends", "", "https://vimeo.com/2", 2, 7, time.Now(), time.Now()))

	items, err := NewLessonPostgres(db).ListByCourse(context.Background(), "c1")

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 7, items[1].DripDays)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	l := &model.Lesson{ID: "l1", Title: "Intro", VideoURL: "https://vimeo.com/1", Position: 1, DripDays: 3}
	mock.ExpectQuery("UPDATE lessons SET title").
		WithArgs("l1", "Intro", "", "https://vimeo.com/1", 1, 3).
		WillReturnRows(sqlmock.NewRows(lessonCols).AddRow("l1", "c1", "Intro", "", "https://vimeo.com/1", 1, 3, time.Now(), time.Now()))

	got, err := NewLessonPostgres(db).Update(context.Background(), l)

	assert.NoError(t, err)
	assert.Equal(t, "c1", got.CourseID)
	assert.Equal(t, 3, got.DripDays)
}
