package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrModuleNotFound  = errors.New("module not found")
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrInvalidModule   = errors.New("invalid module")
	ErrInvalidLesson   = errors.New("invalid lesson")
	ErrAlreadyComplete = errors.New("lesson already completed")
)

type ModuleRequest struct {
	Title       string
	Description string
	Position    int
}

type LessonRequest struct {
	ModuleID        snowflake.ID
	Title           string
	Description     string
	VideoURL        string
	DurationSeconds int
	Position        int
	Points          int
}

// CompletionResult reports whether points were awarded; a repeat completion
// succeeds but awards nothing.
type CompletionResult struct {
	Progress      *LessonProgress
	PointsAwarded int
	First         bool
}

type Service interface {
	CreateModule(ctx context.Context, schoolID snowflake.ID, req ModuleRequest) (*CourseModule, error)
	UpdateModule(ctx context.Context, schoolID, moduleID snowflake.ID, req ModuleRequest) (*CourseModule, error)
	DeleteModule(ctx context.Context, schoolID, moduleID snowflake.ID) error
	ListModules(ctx context.Context, schoolID snowflake.ID) ([]CourseModule, error)
	GetModule(ctx context.Context, schoolID, moduleID snowflake.ID) (*CourseModule, error)

	CreateLesson(ctx context.Context, schoolID snowflake.ID, req LessonRequest) (*Lesson, error)
	UpdateLesson(ctx context.Context, schoolID, lessonID snowflake.ID, req LessonRequest) (*Lesson, error)
	DeleteLesson(ctx context.Context, schoolID, lessonID snowflake.ID) error
	ListLessons(ctx context.Context, schoolID, moduleID snowflake.ID) ([]Lesson, error)
	GetLesson(ctx context.Context, schoolID, lessonID snowflake.ID) (*Lesson, error)

	CompleteLesson(ctx context.Context, schoolID, lessonID, userID snowflake.ID) (*CompletionResult, error)
	ListProgress(ctx context.Context, schoolID, userID snowflake.ID) ([]LessonProgress, error)
	ModuleCompleted(ctx context.Context, schoolID, moduleID, userID snowflake.ID) (bool, error)
}

type Repository interface {
	CreateModule(ctx context.Context, module *CourseModule) error
	FindModule(ctx context.Context, schoolID, moduleID snowflake.ID) (*CourseModule, error)
	UpdateModuleFields(ctx context.Context, schoolID, moduleID snowflake.ID, fields map[string]any) error
	DeleteModule(ctx context.Context, schoolID, moduleID snowflake.ID) error
	ListModules(ctx context.Context, schoolID snowflake.ID) ([]CourseModule, error)

	CreateLesson(ctx context.Context, lesson *Lesson) error
	FindLesson(ctx context.Context, schoolID, lessonID snowflake.ID) (*Lesson, error)
	UpdateLessonFields(ctx context.Context, schoolID, lessonID snowflake.ID, fields map[string]any) error
	DeleteLesson(ctx context.Context, schoolID, lessonID snowflake.ID) error
	ListLessons(ctx context.Context, schoolID, moduleID snowflake.ID) ([]Lesson, error)
	CountLessons(ctx context.Context, schoolID, moduleID snowflake.ID) (int64, error)

	CreateProgress(ctx context.Context, progress *LessonProgress) error
	ListProgressByUser(ctx context.Context, schoolID, userID snowflake.ID) ([]LessonProgress, error)
	CountCompleted(ctx context.Context, schoolID, moduleID, userID snowflake.ID) (int64, error)
}
