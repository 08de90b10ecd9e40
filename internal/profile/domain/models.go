// Package domain contains persistence models for student profiles.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Profile is the 1:1 extension of a user account. Activity points accumulate
// from lesson completions and never go negative.
type Profile struct {
	UserID         snowflake.ID `gorm:"primaryKey;column:user_id"`
	FullName       string       `gorm:"type:text;not null"`
	Phone          string       `gorm:"type:text"`
	Email          string       `gorm:"type:text"`
	ActivityPoints int          `gorm:"column:activity_points;not null;default:0"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Profile) TableName() string { return "profiles" }

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
	ErrInvalidProfile  = errors.New("invalid profile")
)

type UpdateRequest struct {
	FullName string
	Phone    string
}

type CreateRequest struct {
	UserID   snowflake.ID
	FullName string
	Phone    string
	Email    string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Profile, error)
	Get(ctx context.Context, userID snowflake.ID) (*Profile, error)
	Update(ctx context.Context, userID snowflake.ID, req UpdateRequest) (*Profile, error)
	AwardPoints(ctx context.Context, userID snowflake.ID, points int) error
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, profile *Profile) error
	FindByUserID(ctx context.Context, userID snowflake.ID) (*Profile, error)
	UpdateFields(ctx context.Context, userID snowflake.ID, fields map[string]any) error
	IncrementPoints(ctx context.Context, userID snowflake.ID, points int) error
}
