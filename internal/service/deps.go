package service

import (
	"context"
	"time"

	"fxacademy/internal/mail"
	"fxacademy/internal/model"
	"fxacademy/internal/video"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Generate(userID string, role model.Role) (string, time.Time, error)
}

// Mailer sends messages without blocking the caller.
type Mailer interface {
	Dispatch(ctx context.Context, msgs ...mail.Message)
}

// VideoResolver looks up video metadata for a lesson.
type VideoResolver interface {
	Lookup(ctx context.Context, videoURL string) (*video.Metadata, error)
}
