package repository

import (
	"context"
	"time"

	"fxacademy/internal/model"
)

// UserRepository defines data access for platform accounts.
type UserRepository interface {
	// Create inserts a user. A duplicate email surfaces as a unique violation from the driver.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail matches the normalized (lower-case) email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// List returns users newest first. An empty status returns every user.
	List(ctx context.Context, status model.UserStatus, pq PageQuery) (*PageResult[model.User], error)

	// SetStatus changes the approval state; approvedAt is stored as given (nil clears it).
	SetStatus(ctx context.Context, id string, status model.UserStatus, approvedAt *time.Time) (*model.User, error)

	// ExtendSubscription moves subscription_expires_at forward to expiresAt, never backwards.
	ExtendSubscription(ctx context.Context, id string, planID *string, expiresAt time.Time) (*model.User, error)

	// SetSubscription overwrites the subscription fields unconditionally.
	SetSubscription(ctx context.Context, id string, planID *string, expiresAt *time.Time) (*model.User, error)

	// AdminEmails returns the addresses of every admin account.
	AdminEmails(ctx context.Context) ([]string, error)
}

// InviteRepository defines data access for registration invites.
type InviteRepository interface {
	Create(ctx context.Context, inv *model.Invite) (*model.Invite, error)

	FindByCode(ctx context.Context, code string) (*model.Invite, error)

	// List returns invites newest first.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Invite], error)

	// Revoke marks the invite unusable. Returns sql.ErrNoRows for an unknown code.
	Revoke(ctx context.Context, code string) error

	// Claim consumes one use of the invite in a single conditional statement. It returns
	// sql.ErrNoRows when the invite does not exist or is not redeemable by email at now.
	Claim(ctx context.Context, code, email string, now time.Time) (*model.Invite, error)

	// Release gives back a use taken by Claim.
	Release(ctx context.Context, code string) error
}
