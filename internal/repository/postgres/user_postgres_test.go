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
	"fxacademy/internal/repository"
)

var userCols = []string{"id", "email", "name", "password_hash", "role", "status", "invite_code",
	"subscription_plan_id", "subscription_expires_at", "created_at", "approved_at"}

func userRow(id, email string, status model.UserStatus) *sqlmock.Rows {
	return sqlmock.NewRows(userCols).
		AddRow(id, email, "Trader", "hash", "student", string(status), "INV1", nil, nil, time.Now(), nil)
}

func TestUserPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	now := time.Now().UTC()
	u := &model.User{
		ID:           "u1",
		Email:        "trader@example.com",
		Name:         "Trader",
		PasswordHash: "hash",
		Role:         model.RoleStudent,
		Status:       model.UserPending,
		InviteCode:   "INV1",
		CreatedAt:    now,
	}

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("u1", "trader@example.com", "Trader", "hash", "student", "pending", "INV1", now).
		WillReturnRows(userRow("u1", "trader@example.com", model.UserPending))

	got, err := repo.Create(context.Background(), u)

	assert.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, model.UserPending, got.Status)
	assert.Nil(t, got.SubscriptionExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ").
			WithArgs("trader@example.com").
			WillReturnRows(userRow("u1", "trader@example.com", model.UserApproved))

		u, err := repo.FindByEmail(ctx, "trader@example.com")
		assert.NoError(t, err)
		assert.Equal(t, model.UserApproved, u.Status)
		assert.Equal(t, model.RoleStudent, u.Role)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ").
			WithArgs("missing@example.com").
			WillReturnError(sql.ErrNoRows)

		u, err := repo.FindByEmail(ctx, "missing@example.com")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, u)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users").
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	rows := userRow("u1", "a@example.com", model.UserPending)
	rows.AddRow("u2", "b@example.com", "B", "hash", "student", "pending", "INV1", nil, nil, time.Now(), nil)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE (.+) ORDER BY created_at DESC").
		WithArgs("pending", 20, 0).
		WillReturnRows(rows)

	res, err := repo.List(context.Background(), model.UserPending, repository.PageQuery{Limit: 20})

	assert.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_ExtendSubscription(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	plan := "p1"
	until := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(userCols).
		AddRow("u1", "a@example.com", "A", "hash", "student", "approved", "", plan, until, time.Now(), time.Now())
	mock.ExpectQuery("UPDATE users SET subscription_expires_at = GREATEST").
		WithArgs("u1", plan, until).
		WillReturnRows(rows)

	u, err := repo.ExtendSubscription(context.Background(), "u1", &plan, until)

	require.NoError(t, err)
	require.NotNil(t, u.SubscriptionExpiresAt)
	assert.True(t, u.SubscriptionExpiresAt.Equal(until))
	assert.Equal(t, "p1", *u.SubscriptionPlanID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_SetStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("UPDATE users SET status").
		WithArgs("missing", "rejected", nil).
		WillReturnError(sql.ErrNoRows)

	_, err = NewUserPostgres(db).SetStatus(context.Background(), "missing", model.UserRejected, nil)

	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_AdminEmails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT email FROM users WHERE role = 'admin'").
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("admin@example.com").AddRow("ops@example.com"))

	emails, err := NewUserPostgres(db).AdminEmails(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []string{"admin@example.com", "ops@example.com"}, emails)
}
