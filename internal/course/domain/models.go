// Package domain contains persistence models for course content and student progress.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CourseModule groups lessons within a school's curriculum.
type CourseModule struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	SchoolID    snowflake.ID `gorm:"column:school_id;not null;index" json:"school_id"`
	Title       string       `gorm:"type:text;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Position    int          `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (CourseModule) TableName() string { return "course_modules" }

// Lesson is a single video lesson. Points are awarded to the student's
// profile on first completion.
type Lesson struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	SchoolID        snowflake.ID `gorm:"column:school_id;not null;index" json:"school_id"`
	ModuleID        snowflake.ID `gorm:"column:module_id;not null;index" json:"module_id"`
	Title           string       `gorm:"type:text;not null" json:"title"`
	Description     string       `gorm:"type:text" json:"description"`
	VideoURL        string       `gorm:"column:video_url;type:text" json:"video_url"`
	DurationSeconds int          `gorm:"column:duration_seconds;not null;default:0" json:"duration_seconds"`
	Position        int          `gorm:"not null;default:0" json:"position"`
	Points          int          `gorm:"not null;default:10" json:"points"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Lesson) TableName() string { return "lessons" }

// LessonProgress marks a lesson completed by a user. The (lesson_id, user_id)
// pair is unique, which makes completion idempotent: a second completion hits
// the constraint instead of awarding points twice.
type LessonProgress struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	SchoolID    snowflake.ID `gorm:"column:school_id;not null;index" json:"school_id"`
	LessonID    snowflake.ID `gorm:"column:lesson_id;not null;index;uniqueIndex:ux_lesson_user,priority:1" json:"lesson_id"`
	UserID      snowflake.ID `gorm:"column:user_id;not null;index;uniqueIndex:ux_lesson_user,priority:2" json:"user_id"`
	CompletedAt time.Time    `gorm:"column:completed_at;not null;default:CURRENT_TIMESTAMP" json:"completed_at"`
}

// TableName sets the database table name.
func (LessonProgress) TableName() string { return "lesson_progress" }
