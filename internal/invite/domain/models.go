// Package domain contains the invitation model and the redemption contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Invitation is a single-use, time-limited credential binding an email to a
// school and role. Only the one-way hash of the token is stored; the raw
// token is returned exactly once, at creation time.
//
// An invitation is redeemable iff UsedAt is nil and ExpiresAt is in the
// future. Redemption sets UsedAt once and there is no un-use operation.
type Invitation struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	SchoolID  snowflake.ID `gorm:"column:school_id;not null;index" json:"school_id"`
	Email     string       `gorm:"type:text;not null" json:"email"`
	Role      string       `gorm:"type:text;not null" json:"role"`
	TokenHash string       `gorm:"column:token_hash;type:text;not null;uniqueIndex" json:"-"`
	InvitedBy snowflake.ID `gorm:"column:invited_by;index" json:"invited_by"`
	ExpiresAt time.Time    `gorm:"column:expires_at;not null" json:"expires_at"`
	UsedAt    *time.Time   `gorm:"column:used_at" json:"used_at,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Invitation) TableName() string { return "invitations" }
