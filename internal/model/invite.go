package model

import (
	"strings"
	"time"
)

// Invite gates registration. An invite bound to an email may only be redeemed by that address.
type Invite struct {
	Code      string     `json:"code"`
	Email     *string    `json:"email,omitempty"`
	CreatedBy *string    `json:"created_by,omitempty"`
	MaxUses   int        `json:"max_uses"`
	UsedCount int        `json:"used_count"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Revoked   bool       `json:"revoked"`
	CreatedAt time.Time  `json:"created_at"`
}

// Redeemable reports whether email may register with this invite at now.
func (i *Invite) Redeemable(email string, now time.Time) bool {
	if i.Revoked || i.UsedCount >= i.MaxUses {
		return false
	}
	if i.ExpiresAt != nil && !now.Before(*i.ExpiresAt) {
		return false
	}
	if i.Email != nil && *i.Email != "" && !strings.EqualFold(*i.Email, email) {
		return false
	}
	return true
}
