package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fxacademy/internal/mail"
	"fxacademy/internal/model"
	"fxacademy/internal/repository"
	repoMocks "fxacademy/internal/repository/mocks"
)

type adminFixture struct {
	users       *repoMocks.MockUserRepository
	invites     *repoMocks.MockInviteRepository
	courses     *repoMocks.MockCourseRepository
	lessons     *repoMocks.MockLessonRepository
	enrollments *repoMocks.MockEnrollmentRepository
	grants      *repoMocks.MockAdhocAccessRepository
	plans       *repoMocks.MockPlanRepository
	mailer      *recordingMailer
	svc         *adminService
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		users:       new(repoMocks.MockUserRepository),
		invites:     new(repoMocks.MockInviteRepository),
		courses:     new(repoMocks.MockCourseRepository),
		lessons:     new(repoMocks.MockLessonRepository),
		enrollments: new(repoMocks.MockEnrollmentRepository),
		grants:      new(repoMocks.MockAdhocAccessRepository),
		plans:       new(repoMocks.MockPlanRepository),
		mailer:      &recordingMailer{},
	}
	f.svc = NewAdminService(f.users, f.invites, f.courses, f.lessons, f.enrollments, f.grants, f.plans,
		f.mailer, mail.NewComposer("FX Academy", "https://app.example.com")).(*adminService)
	f.svc.now = fixedNow
	return f
}

func TestAdminService_ListUsers(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture()
	f.users.On("List", ctx, model.UserPending, repository.PageQuery{Limit: 100, Offset: 0}).
		Return(&repository.PageResult[model.User]{Items: []model.User{{ID: "u1"}}, Total: 7}, nil)

	res, err := f.svc.ListUsers(ctx, model.UserPending, 500, -3)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Total)
	assert.Len(t, res.Items, 1)

	_, err = f.svc.ListUsers(ctx, "deleted", 10, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	f.users.AssertExpectations(t)
}

func TestAdminService_ApproveUser(t *testing.T) {
	ctx := context.Background()

	t.Run("approves and mails", func(t *testing.T) {
		f := newAdminFixture()
		f.users.On("SetStatus", ctx, "u1", model.UserApproved, mock.MatchedBy(func(at *time.Time) bool {
			return at != nil && at.Equal(testNow)
		})).Return(&model.User{ID: "u1", Name: "Tia", Email: "tia@example.com", Status: model.UserApproved}, nil)

		u, err := f.svc.ApproveUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, model.UserApproved, u.Status)

		msgs := f.mailer.messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "tia@example.com", msgs[0].To[0].Email)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newAdminFixture()
		f.users.On("SetStatus", ctx, "nope", model.UserApproved, mock.Anything).Return(nil, sql.ErrNoRows)

		_, err := f.svc.ApproveUser(ctx, "nope")
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.Empty(t, f.mailer.messages())
	})
}

func TestAdminService_RejectUser(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture()
	f.users.On("SetStatus", ctx, "u1", model.UserRejected, (*time.Time)(nil)).
		Return(&model.User{ID: "u1", Status: model.UserRejected}, nil)

	u, err := f.svc.RejectUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.UserRejected, u.Status)
	assert.Empty(t, f.mailer.messages())
}

func TestAdminService_CreateInvite(t *testing.T) {
	ctx := context.Background()
	future := testNow.Add(72 * time.Hour)
	past := testNow.Add(-time.Hour)

	t.Run("generated code bound to email", func(t *testing.T) {
		f := newAdminFixture()
		f.invites.On("Create", ctx, mock.MatchedBy(func(inv *model.Invite) bool {
			return len(inv.Code) == 16 && inv.MaxUses == 1 &&
				inv.Email != nil && *inv.Email == "guest@example.com" &&
				inv.CreatedBy != nil && *inv.CreatedBy == "admin-1"
		})).Return(&model.Invite{Code: "abcDEF123_-xyz00", MaxUses: 1, Email: ptr("guest@example.com"), ExpiresAt: &future}, nil)

		inv, err := f.svc.CreateInvite(ctx, "admin-1", InviteInput{Email: " Guest@Example.com ", ExpiresAt: &future})
		require.NoError(t, err)
		assert.Equal(t, 1, inv.MaxUses)

		msgs := f.mailer.messages()
		require.Len(t, msgs, 1)
		assert.Contains(t, msgs[0].Text, inv.Code)
	})

	t.Run("explicit code without email sends nothing", func(t *testing.T) {
		f := newAdminFixture()
		f.invites.On("Create", ctx, mock.MatchedBy(func(inv *model.Invite) bool {
			return inv.Code == "VIP2026" && inv.MaxUses == 25 && inv.Email == nil
		})).Return(&model.Invite{Code: "VIP2026", MaxUses: 25}, nil)

		inv, err := f.svc.CreateInvite(ctx, "admin-1", InviteInput{Code: "VIP2026", MaxUses: 25})
		require.NoError(t, err)
		assert.Equal(t, "VIP2026", inv.Code)
		assert.Empty(t, f.mailer.messages())
	})

	t.Run("duplicate code", func(t *testing.T) {
		f := newAdminFixture()
		f.invites.On("Create", ctx, mock.Anything).Return(nil, &pgconn.PgError{Code: "23505"})

		_, err := f.svc.CreateInvite(ctx, "admin-1", InviteInput{Code: "DUP"})
		assert.ErrorIs(t, err, ErrInviteCodeTaken)
	})

	t.Run("expiry in the past", func(t *testing.T) {
		f := newAdminFixture()
		_, err := f.svc.CreateInvite(ctx, "admin-1", InviteInput{ExpiresAt: &past})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestNewInviteCode_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := NewInviteCode()
		require.NoError(t, err)
		assert.NotContains(t, code, "+")
		assert.NotContains(t, code, "/")
		assert.False(t, seen[code])
		seen[code] = true
	}
}

func TestAdminService_RevokeInvite(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture()
	f.invites.On("Revoke", ctx, "gone").Return(sql.ErrNoRows)
	f.invites.On("Revoke", ctx, "live").Return(nil)

	assert.ErrorIs(t, f.svc.RevokeInvite(ctx, "gone"), ErrInviteNotFound)
	assert.NoError(t, f.svc.RevokeInvite(ctx, "live"))
	assert.ErrorIs(t, f.svc.RevokeInvite(ctx, ""), ErrIDRequired)
}

func TestAdminService_EnrollUser(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture()
	f.users.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1"}, nil)
	f.courses.On("FindByID", ctx, "c1").Return(&model.Course{ID: "c1"}, nil)
	f.courses.On("FindByID", ctx, "c404").Return(nil, sql.ErrNoRows)
	f.enrollments.On("Enroll", ctx, "u1", "c1", testNow).
		Return(&model.Enrollment{UserID: "u1", CourseID: "c1", EnrolledAt: testNow}, nil)

	e, err := f.svc.EnrollUser(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, testNow, e.EnrolledAt)

	_, err = f.svc.EnrollUser(ctx, "u1", "c404")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestAdminService_GrantAccess(t *testing.T) {
	ctx := context.Background()
	expires := testNow.Add(48 * time.Hour)
	later := testNow.Add(96 * time.Hour)

	tests := []struct {
		name    string
		in      GrantInput
		setup   func(f *adminFixture)
		wantErr error
	}{
		{
			name: "starts now by default",
			in:   GrantInput{UserID: "u1", LessonID: "l1", ExpiresAt: expires, Note: " promo "},
			setup: func(f *adminFixture) {
				f.users.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1"}, nil)
				f.lessons.On("FindByID", ctx, "l1").Return(&model.Lesson{ID: "l1"}, nil)
				f.grants.On("Grant", ctx, mock.MatchedBy(func(a *model.AdhocAccess) bool {
					return a.StartsAt.Equal(testNow) && a.ExpiresAt.Equal(expires) &&
						a.GrantedBy == "admin-1" && a.Note == "promo" && a.ID != ""
				})).Return(&model.AdhocAccess{ID: "g1"}, nil)
			},
		},
		{
			name:    "expiry before start",
			in:      GrantInput{UserID: "u1", LessonID: "l1", StartsAt: &later, ExpiresAt: expires},
			setup:   func(f *adminFixture) {},
			wantErr: ErrInvalidWindow,
		},
		{
			name: "unknown lesson",
			in:   GrantInput{UserID: "u1", LessonID: "l404", ExpiresAt: expires},
			setup: func(f *adminFixture) {
				f.users.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1"}, nil)
				f.lessons.On("FindByID", ctx, "l404").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrLessonNotFound,
		},
		{
			name: "unknown user",
			in:   GrantInput{UserID: "u404", LessonID: "l1", ExpiresAt: expires},
			setup: func(f *adminFixture) {
				f.users.On("FindByID", ctx, "u404").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAdminFixture()
			tt.setup(f)

			g, err := f.svc.GrantAccess(ctx, "admin-1", tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "g1", g.ID)
			}
			f.users.AssertExpectations(t)
			f.lessons.AssertExpectations(t)
			f.grants.AssertExpectations(t)
		})
	}
}

func TestAdminService_RevokeGrant(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture()
	f.grants.On("Revoke", ctx, "g404").Return(sql.ErrNoRows)

	assert.ErrorIs(t, f.svc.RevokeGrant(ctx, "g404"), ErrGrantNotFound)
}

func TestAdminService_SetSubscription(t *testing.T) {
	ctx := context.Background()
	plan := "p1"
	until := testNow.Add(30 * 24 * time.Hour)

	f := newAdminFixture()
	f.plans.On("FindByID", ctx, "p1").Return(&model.Plan{ID: "p1"}, nil)
	f.users.On("SetSubscription", ctx, "u1", &plan, &until).
		Return(&model.User{ID: "u1", SubscriptionPlanID: &plan, SubscriptionExpiresAt: &until}, nil)

	u, err := f.svc.SetSubscription(ctx, "u1", &plan, &until)
	require.NoError(t, err)
	assert.Equal(t, until, *u.SubscriptionExpiresAt)

	missing := "p404"
	f.plans.On("FindByID", ctx, "p404").Return(nil, sql.ErrNoRows)
	_, err = f.svc.SetSubscription(ctx, "u1", &missing, &until)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}
