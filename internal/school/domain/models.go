// Package domain contains persistence models for driving schools and their members.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Member roles within a school.
const (
	RoleOwner   = "owner"
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// Member statuses.
const (
	MemberActive    = "active"
	MemberSuspended = "suspended"
	MemberRemoved   = "removed"
)

// Subscription statuses mirrored from the billing provider. Transitions are
// webhook-driven only; the domain never advances these on its own.
const (
	SubscriptionTrialing   = "trialing"
	SubscriptionActive     = "active"
	SubscriptionPastDue    = "past_due"
	SubscriptionCanceled   = "canceled"
	SubscriptionIncomplete = "incomplete"
)

// School represents a tenant.
type School struct {
	ID                    snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name                  string            `gorm:"type:text;not null" json:"name"`
	Slug                  string            `gorm:"type:text;not null;uniqueIndex:ux_schools_slug" json:"slug"`
	OwnerID               snowflake.ID      `gorm:"column:owner_id;not null;index" json:"owner_id"`
	SubscriptionStatus    string            `gorm:"column:subscription_status;type:text;not null;default:'trialing'" json:"subscription_status"`
	TrialEndsAt           *time.Time        `gorm:"column:trial_ends_at" json:"trial_ends_at"`
	BillingCustomerID     string            `gorm:"column:billing_customer_id;type:text;index" json:"-"`
	BillingSubscriptionID string            `gorm:"column:billing_subscription_id;type:text;index" json:"-"`
	Metadata              datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	CreatedAt             time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt             time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (School) TableName() string { return "schools" }

// SchoolMember is the join record granting a user a role within a school.
// The (school_id, user_id) pair is unique: a user holds at most one
// membership per school.
type SchoolMember struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	SchoolID snowflake.ID `gorm:"column:school_id;not null;index;uniqueIndex:ux_school_user,priority:1" json:"school_id"`
	UserID   snowflake.ID `gorm:"column:user_id;not null;index;uniqueIndex:ux_school_user,priority:2" json:"user_id"`
	Role     string       `gorm:"type:text;not null" json:"role"`
	Status   string       `gorm:"type:text;not null;default:'active'" json:"status"`
	JoinedAt time.Time    `gorm:"column:joined_at;not null;default:CURRENT_TIMESTAMP" json:"joined_at"`
}

// TableName sets the database table name.
func (SchoolMember) TableName() string { return "school_members" }

// ValidRole reports whether role is one of the membership roles.
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleStudent:
		return true
	default:
		return false
	}
}
