package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateSchoolRequest struct {
	Name string
}

type SchoolResponse struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Slug               string     `json:"slug"`
	SubscriptionStatus string     `json:"subscription_status"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`
}

type SchoolListItem struct {
	ID        snowflake.ID `json:"id"`
	Name      string       `json:"name"`
	Role      string       `json:"role"`
	CreatedAt time.Time    `json:"created_at"`
}

type MemberListItem struct {
	ID       snowflake.ID `json:"id"`
	UserID   snowflake.ID `json:"user_id"`
	FullName string       `json:"full_name"`
	Email    string       `json:"email"`
	Role     string       `json:"role"`
	Status   string       `json:"status"`
	JoinedAt time.Time    `json:"joined_at"`
}

type Service interface {
	Create(ctx context.Context, ownerID snowflake.ID, req CreateSchoolRequest) (*School, error)
	GetByID(ctx context.Context, id snowflake.ID) (*School, error)
	ListAll(ctx context.Context) ([]School, error)
	ListByUser(ctx context.Context, userID snowflake.ID) ([]SchoolListItem, error)
	AddMember(ctx context.Context, schoolID, userID snowflake.ID, role string) (*SchoolMember, error)
	GetMembership(ctx context.Context, schoolID, userID snowflake.ID) (*SchoolMember, error)
	ListMembers(ctx context.Context, schoolID snowflake.ID) ([]MemberListItem, error)
	SetMemberStatus(ctx context.Context, schoolID, memberID snowflake.ID, status string) error
	RemoveMember(ctx context.Context, schoolID, memberID snowflake.ID) error
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSchool(ctx context.Context, school *School) error
	FindByID(ctx context.Context, id snowflake.ID) (*School, error)
	FindByBillingCustomerID(ctx context.Context, customerID string) (*School, error)
	ListAll(ctx context.Context) ([]School, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	ListByUser(ctx context.Context, userID snowflake.ID) ([]SchoolListItem, error)
	AddMember(ctx context.Context, member *SchoolMember) error
	FindMembership(ctx context.Context, schoolID, userID snowflake.ID) (*SchoolMember, error)
	FindMemberByID(ctx context.Context, schoolID, memberID snowflake.ID) (*SchoolMember, error)
	ListMembers(ctx context.Context, schoolID snowflake.ID) ([]MemberListItem, error)
	UpdateMemberStatus(ctx context.Context, schoolID, memberID snowflake.ID, status string) error
	DeleteMember(ctx context.Context, schoolID, memberID snowflake.ID) error
}
