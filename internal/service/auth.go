package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"fxacademy/internal/database"
	"fxacademy/internal/logging"
	"fxacademy/internal/mail"
	"fxacademy/internal/model"
	"fxacademy/internal/repository"
)

const minPasswordLength = 8

type RegisterInput struct {
	Email      string
	Name       string
	Password   string
	InviteCode string
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// AuthService covers registration, login and the caller's own profile.
type AuthService interface {
	// Register creates a pending account by redeeming an invite and notifies admins.
	Register(ctx context.Context, in RegisterInput) (*model.User, error)

	// Login verifies credentials of an approved account and issues a token.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	Me(ctx context.Context, userID string) (*model.User, error)
}

type authService struct {
	users       repository.UserRepository
	invites     repository.InviteRepository
	hasher      PasswordHasher
	tokens      TokenIssuer
	mailer      Mailer
	composer    *mail.Composer
	adminEmails []string
	log         *logging.Logger
	now         func() time.Time
}

// NewAuthService wires the auth use cases. adminEmails are notified of registrations in addition to
// every admin account.
func NewAuthService(
	users repository.UserRepository,
	invites repository.InviteRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	mailer Mailer,
	composer *mail.Composer,
	adminEmails []string,
	log *logging.Logger,
) AuthService {
	return &authService{
		users:       users,
		invites:     invites,
		hasher:      hasher,
		tokens:      tokens,
		mailer:      mailer,
		composer:    composer,
		adminEmails: adminEmails,
		log:         log,
		now:         time.Now,
	}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	code := strings.TrimSpace(in.InviteCode)
	if email == "" || name == "" {
		return nil, ErrInvalidInput
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	if code == "" {
		return nil, ErrInvalidInvite
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	if _, err := s.invites.Claim(ctx, code, email, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidInvite
		}
		return nil, fmt.Errorf("claim invite: %w", err)
	}

	user, err := s.users.Create(ctx, &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         model.RoleStudent,
		Status:       model.UserPending,
		InviteCode:   code,
		CreatedAt:    now,
	})
	if err != nil {
		// Give the invite use back.
		if relErr := s.invites.Release(ctx, code); relErr != nil {
			s.log.Error("invite_release_failed", relErr, map[string]any{"component": "auth", "invite_code": code})
		}
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.notifyAdmins(ctx, user)
	return user, nil
}

func (s *authService) notifyAdmins(ctx context.Context, user *model.User) {
	seen := make(map[string]bool)
	var to []string
	add := func(e string) {
		e = NormalizeEmail(e)
		if e != "" && !seen[e] {
			seen[e] = true
			to = append(to, e)
		}
	}
	for _, e := range s.adminEmails {
		add(e)
	}
	admins, err := s.users.AdminEmails(ctx)
	if err != nil {
		s.log.Error("admin_emails_lookup_failed", err, map[string]any{"component": "auth"})
	}
	for _, e := range admins {
		add(e)
	}
	if len(to) == 0 {
		return
	}
	s.mailer.Dispatch(ctx, s.composer.NewRegistration(to, user.Name, user.Email))
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	switch user.Status {
	case model.UserPending:
		return nil, ErrPendingApproval
	case model.UserRejected:
		return nil, ErrAccountRejected
	}

	token, exp, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *authService) Me(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
