// Package domain contains persistence models for course certificates.
package domain

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Certificate attests that a student completed a course module. The serial
// number is printed on the PDF and can be checked against this record.
type Certificate struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	SchoolID     snowflake.ID `gorm:"column:school_id;not null;index" json:"school_id"`
	UserID       snowflake.ID `gorm:"column:user_id;not null;index" json:"user_id"`
	ModuleID     snowflake.ID `gorm:"column:module_id;not null;index" json:"module_id"`
	Title        string       `gorm:"type:text;not null" json:"title"`
	SerialNumber string       `gorm:"column:serial_number;type:text;not null;uniqueIndex" json:"serial_number"`
	IssuedAt     time.Time    `gorm:"column:issued_at;not null;default:CURRENT_TIMESTAMP" json:"issued_at"`
}

// TableName sets the database table name.
func (Certificate) TableName() string { return "certificates" }

var (
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrModuleIncomplete    = errors.New("module not completed")
	ErrInvalidCertificate  = errors.New("invalid certificate")
)

type IssueRequest struct {
	SchoolID snowflake.ID
	UserID   snowflake.ID
	ModuleID snowflake.ID
}

type Service interface {
	Issue(ctx context.Context, req IssueRequest) (*Certificate, error)
	List(ctx context.Context, schoolID, userID snowflake.ID) ([]Certificate, error)
	Render(ctx context.Context, schoolID, certificateID snowflake.ID) (io.Reader, *Certificate, error)
}

type Repository interface {
	Create(ctx context.Context, certificate *Certificate) error
	FindByID(ctx context.Context, schoolID, certificateID snowflake.ID) (*Certificate, error)
	ListByUser(ctx context.Context, schoolID, userID snowflake.ID) ([]Certificate, error)
}
