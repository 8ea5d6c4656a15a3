package service

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrInviteNotFound  = errors.New("invite not found")
	ErrGrantNotFound   = errors.New("access grant not found")
	ErrPlanNotFound    = errors.New("plan not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrIDRequired      = errors.New("id is required")
	ErrReaderNil       = errors.New("reader is nil")
	ErrInvalidInput    = errors.New("invalid input")
	ErrSlugTaken       = errors.New("slug already in use")
	ErrInviteCodeTaken = errors.New("invite code already in use")
)

// Auth.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPendingApproval    = errors.New("account is pending approval")
	ErrAccountRejected    = errors.New("account has been rejected")
	ErrInvalidInvite      = errors.New("invite code is invalid, expired or used up")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// Courses.
var (
	ErrLessonLocked         = errors.New("lesson is locked")
	ErrSubscriptionRequired = errors.New("an active subscription is required")
	ErrInvalidWindow        = errors.New("expires_at must be after starts_at")
)

// Chat.
var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message is too long")
	ErrUnknownRoom    = errors.New("unknown room")
	ErrRoomForbidden  = errors.New("no access to room")
	ErrSelfDM         = errors.New("cannot open a conversation with yourself")
)

// Billing.
var (
	ErrPlanInactive         = errors.New("plan is not available")
	ErrSubscriptionConflict = errors.New("subscription belongs to another user")
)
