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
	planCols = []string{"id", "name", "description", "price_cents", "currency", "interval_days", "paypal_plan_id", "active"}
	subCols  = []string{"id", "user_id", "plan_id", "paypal_subscription_id", "status", "started_at", "expires_at"}
)

func TestPlanPostgres_ListActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM plans WHERE active ORDER BY price_cents").
		WillReturnRows(sqlmock.NewRows(planCols).
			AddRow("p1", "Monthly", "", 4900, "USD", 30, "P-MONTH", true).
			AddRow("p2", "Yearly", "", 49000, "USD", 365, "P-YEAR", true))

	plans, err := NewPlanPostgres(db).ListActive(context.Background())

	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, 365, plans[1].IntervalDays)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanPostgres_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := &model.Plan{ID: "new", Name: "Monthly", PriceCents: 4900, Currency: "USD", IntervalDays: 30, PayPalPlanID: "P-MONTH", Active: true}
	mock.ExpectQuery("INSERT INTO plans (.+) ON CONFLICT \\(name\\)").
		WithArgs("new", "Monthly", "", 4900, "USD", 30, "P-MONTH", true).
		WillReturnRows(sqlmock.NewRows(planCols).AddRow("existing", "Monthly", "", 4900, "USD", 30, "P-MONTH", true))

	got, err := NewPlanPostgres(db).Upsert(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, "existing", got.ID)
}

func TestSubscriptionPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSubscriptionPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()
	until := now.Add(30 * 24 * time.Hour)
	s := &model.Subscription{
		ID:                   "s1",
		UserID:               "u1",
		PlanID:               "p1",
		PayPalSubscriptionID: "I-ABC",
		Status:               model.SubscriptionActive,
		StartedAt:            now,
		ExpiresAt:            until,
	}

	mock.ExpectQuery("INSERT INTO subscriptions (.+) ON CONFLICT \\(paypal_subscription_id\\)").
		WithArgs("s1", "u1", "p1", "I-ABC", "active", now, until).
		WillReturnRows(sqlmock.NewRows(subCols).AddRow("s1", "u1", "p1", "I-ABC", "active", now, until))
	mock.ExpectQuery("UPDATE subscriptions SET status").
		WithArgs("I-ABC", "cancelled").
		WillReturnRows(sqlmock.NewRows(subCols).AddRow("s1", "u1", "p1", "I-ABC", "cancelled", now, until))
	mock.ExpectQuery("UPDATE subscriptions SET status").
		WithArgs("I-NONE", "expired").
		WillReturnError(sql.ErrNoRows)

	got, err := repo.Upsert(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionActive, got.Status)

	got, err = repo.SetStatus(ctx, "I-ABC", model.SubscriptionCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionCancelled, got.Status)

	_, err = repo.SetStatus(ctx, "I-NONE", model.SubscriptionExpired)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionPostgres_UpsertPendingKeepsStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	until := now.Add(30 * 24 * time.Hour)
	mock.ExpectQuery(`SET status = CASE WHEN EXCLUDED.status = 'pending' THEN subscriptions.status ELSE EXCLUDED.status END`).
		WithArgs("s2", "u1", "p1", "I-ABC", "pending", now, now).
		WillReturnRows(sqlmock.NewRows(subCols).AddRow("s1", "u1", "p1", "I-ABC", "active", now.Add(-time.Hour), until))

	got, err := NewSubscriptionPostgres(db).Upsert(context.Background(), &model.Subscription{
		ID:                   "s2",
		UserID:               "u1",
		PlanID:               "p1",
		PayPalSubscriptionID: "I-ABC",
		Status:               model.SubscriptionPending,
		StartedAt:            now,
		ExpiresAt:            now,
	})
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionActive, got.Status)
	assert.Equal(t, until, got.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
