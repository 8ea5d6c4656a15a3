package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fxacademy/internal/database"
	"fxacademy/internal/mail"
	"fxacademy/internal/model"
	"fxacademy/internal/repository"
)

type UserListResult struct {
	Items []model.User `json:"data"`
	Total int          `json:"total"`
}

type InviteListResult struct {
	Items []model.Invite `json:"data"`
	Total int            `json:"total"`
}

type InviteInput struct {
	Code      string
	Email     string
	MaxUses   int
	ExpiresAt *time.Time
}

type GrantInput struct {
	UserID    string
	LessonID  string
	StartsAt  *time.Time
	ExpiresAt time.Time
	Note      string
}

// AdminService holds the operator use cases on users, invites, enrollments, grants and subscriptions.
type AdminService interface {
	ListUsers(ctx context.Context, status model.UserStatus, limit, offset int) (*UserListResult, error)
	ApproveUser(ctx context.Context, id string) (*model.User, error)
	RejectUser(ctx context.Context, id string) (*model.User, error)

	// CreateInvite issues an invite; when it is bound to an email the link is mailed there.
	CreateInvite(ctx context.Context, createdBy string, in InviteInput) (*model.Invite, error)
	ListInvites(ctx context.Context, limit, offset int) (*InviteListResult, error)
	RevokeInvite(ctx context.Context, code string) error

	EnrollUser(ctx context.Context, userID, courseID string) (*model.Enrollment, error)

	GrantAccess(ctx context.Context, grantedBy string, in GrantInput) (*model.AdhocAccess, error)
	ListGrants(ctx context.Context, userID string) ([]model.AdhocAccess, error)
	RevokeGrant(ctx context.Context, id string) error

	// SetSubscription overrides a user's subscription; a nil expiresAt ends it.
	SetSubscription(ctx context.Context, userID string, planID *string, expiresAt *time.Time) (*model.User, error)
}

type adminService struct {
	users       repository.UserRepository
	invites     repository.InviteRepository
	courses     repository.CourseRepository
	lessons     repository.LessonRepository
	enrollments repository.EnrollmentRepository
	grants      repository.AdhocAccessRepository
	plans       repository.PlanRepository
	mailer      Mailer
	composer    *mail.Composer
	now         func() time.Time
}

func NewAdminService(
	users repository.UserRepository,
	invites repository.InviteRepository,
	courses repository.CourseRepository,
	lessons repository.LessonRepository,
	enrollments repository.EnrollmentRepository,
	grants repository.AdhocAccessRepository,
	plans repository.PlanRepository,
	mailer Mailer,
	composer *mail.Composer,
) AdminService {
	return &adminService{
		users:       users,
		invites:     invites,
		courses:     courses,
		lessons:     lessons,
		enrollments: enrollments,
		grants:      grants,
		plans:       plans,
		mailer:      mailer,
		composer:    composer,
		now:         time.Now,
	}
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *adminService) ListUsers(ctx context.Context, status model.UserStatus, limit, offset int) (*UserListResult, error) {
	switch status {
	case "", model.UserPending, model.UserApproved, model.UserRejected:
	default:
		return nil, ErrInvalidInput
	}
	limit, offset = pageBounds(limit, offset)
	res, err := s.users.List(ctx, status, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &UserListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *adminService) ApproveUser(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	now := s.now().UTC()
	user, err := s.users.SetStatus(ctx, id, model.UserApproved, &now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.mailer.Dispatch(ctx, s.composer.Approved(user.Name, user.Email))
	return user, nil
}

func (s *adminService) RejectUser(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	user, err := s.users.SetStatus(ctx, id, model.UserRejected, nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// NewInviteCode returns a random URL-safe code.
func NewInviteCode() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *adminService) CreateInvite(ctx context.Context, createdBy string, in InviteInput) (*model.Invite, error) {
	now := s.now().UTC()
	if in.MaxUses < 0 || (in.ExpiresAt != nil && !in.ExpiresAt.After(now)) {
		return nil, ErrInvalidInput
	}
	maxUses := in.MaxUses
	if maxUses == 0 {
		maxUses = 1
	}

	code := strings.TrimSpace(in.Code)
	if code == "" {
		var err error
		if code, err = NewInviteCode(); err != nil {
			return nil, fmt.Errorf("generate invite code: %w", err)
		}
	}

	inv := &model.Invite{
		Code:      code,
		MaxUses:   maxUses,
		ExpiresAt: in.ExpiresAt,
		CreatedAt: now,
	}
	if email := NormalizeEmail(in.Email); email != "" {
		inv.Email = &email
	}
	if createdBy != "" {
		inv.CreatedBy = &createdBy
	}

	stored, err := s.invites.Create(ctx, inv)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrInviteCodeTaken
		}
		return nil, err
	}
	if stored.Email != nil {
		s.mailer.Dispatch(ctx, s.composer.Invite(*stored.Email, stored.Code, stored.ExpiresAt))
	}
	return stored, nil
}

func (s *adminService) ListInvites(ctx context.Context, limit, offset int) (*InviteListResult, error) {
	limit, offset = pageBounds(limit, offset)
	res, err := s.invites.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &InviteListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *adminService) RevokeInvite(ctx context.Context, code string) error {
	if code == "" {
		return ErrIDRequired
	}
	if err := s.invites.Revoke(ctx, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInviteNotFound
		}
		return err
	}
	return nil
}

func (s *adminService) EnrollUser(ctx context.Context, userID, courseID string) (*model.Enrollment, error) {
	if userID == "" || courseID == "" {
		return nil, ErrIDRequired
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return s.enrollments.Enroll(ctx, userID, courseID, s.now().UTC())
}

func (s *adminService) GrantAccess(ctx context.Context, grantedBy string, in GrantInput) (*model.AdhocAccess, error) {
	if in.UserID == "" || in.LessonID == "" {
		return nil, ErrIDRequired
	}
	now := s.now().UTC()
	starts := now
	if in.StartsAt != nil {
		starts = in.StartsAt.UTC()
	}
	if !in.ExpiresAt.After(starts) {
		return nil, ErrInvalidWindow
	}

	if _, err := s.users.FindByID(ctx, in.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if _, err := s.lessons.FindByID(ctx, in.LessonID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}

	return s.grants.Grant(ctx, &model.AdhocAccess{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		LessonID:  in.LessonID,
		GrantedBy: grantedBy,
		StartsAt:  starts,
		ExpiresAt: in.ExpiresAt.UTC(),
		Note:      strings.TrimSpace(in.Note),
		CreatedAt: now,
	})
}

func (s *adminService) ListGrants(ctx context.Context, userID string) ([]model.AdhocAccess, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	return s.grants.ListByUser(ctx, userID)
}

func (s *adminService) RevokeGrant(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.grants.Revoke(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrGrantNotFound
		}
		return err
	}
	return nil
}

func (s *adminService) SetSubscription(ctx context.Context, userID string, planID *string, expiresAt *time.Time) (*model.User, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	if planID != nil {
		if _, err := s.plans.FindByID(ctx, *planID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrPlanNotFound
			}
			return nil, err
		}
	}
	user, err := s.users.SetSubscription(ctx, userID, planID, expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
