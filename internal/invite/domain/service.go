package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/orbitaagency1ia/miautoescuela/internal/auth/domain"
	"gorm.io/gorm"
)

type CreateRequest struct {
	SchoolID  snowflake.ID
	Email     string
	Role      string
	InvitedBy snowflake.ID
	ExpiresIn time.Duration
}

// CreateResult carries the raw token. It is never persisted and never
// returned again.
type CreateResult struct {
	Invitation *Invitation
	RawToken   string
}

type RedeemRequest struct {
	RawToken  string
	FullName  string
	Password  string
	Phone     string
	UserAgent string
	IPAddress string
}

type RedeemResult struct {
	UserID   snowflake.ID
	SchoolID snowflake.ID
	Role     string
	Session  *authdomain.LoginResult
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*CreateResult, error)
	List(ctx context.Context, schoolID snowflake.ID) ([]Invitation, error)
	Delete(ctx context.Context, schoolID, inviteID snowflake.ID) error
	Redeem(ctx context.Context, req RedeemRequest) (*RedeemResult, error)
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invitation *Invitation) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*Invitation, error)
	ListPending(ctx context.Context, schoolID snowflake.ID, now time.Time) ([]Invitation, error)
	Delete(ctx context.Context, schoolID, inviteID snowflake.ID) error

	// Claim atomically sets used_at on an unused invitation and reports
	// whether this caller won the claim. It is the serialization point for
	// concurrent redemptions of the same token.
	Claim(ctx context.Context, inviteID snowflake.ID, usedAt time.Time) (bool, error)

	// ReleaseClaim clears used_at after a failed redemption so the
	// invitation is not burned by an attempt that provisioned nothing.
	ReleaseClaim(ctx context.Context, inviteID snowflake.ID) error
}
