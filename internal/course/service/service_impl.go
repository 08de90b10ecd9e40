package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitaagency1ia/miautoescuela/internal/clock"
	"github.com/orbitaagency1ia/miautoescuela/internal/course/domain"
	profiledomain "github.com/orbitaagency1ia/miautoescuela/internal/profile/domain"
	pkgdb "github.com/orbitaagency1ia/miautoescuela/pkg/db"
	"go.uber.org/zap"
)

type service struct {
	log        *zap.Logger
	repo       domain.Repository
	profilesvc profiledomain.Service
	genID      *snowflake.Node
	clock      clock.Clock
}

func NewService(log *zap.Logger, repo domain.Repository, profilesvc profiledomain.Service, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &service{
		log:        log.Named("course.service"),
		repo:       repo,
		profilesvc: profilesvc,
		genID:      genID,
		clock:      clk,
	}
}

func (s *service) CreateModule(ctx context.Context, schoolID snowflake.ID, req domain.ModuleRequest) (*domain.CourseModule, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidModule
	}

	now := s.clock.Now()
	module := &domain.CourseModule{
		ID:          s.genID.Generate(),
		SchoolID:    schoolID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Position:    req.Position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateModule(ctx, module); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *service) UpdateModule(ctx context.Context, schoolID, moduleID snowflake.ID, req domain.ModuleRequest) (*domain.CourseModule, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidModule
	}

	fields := map[string]any{
		"title":       title,
		"description": strings.TrimSpace(req.Description),
		"position":    req.Position,
		"updated_at":  s.clock.Now(),
	}
	if err := s.repo.UpdateModuleFields(ctx, schoolID, moduleID, fields); err != nil {
		return nil, err
	}
	return s.repo.FindModule(ctx, schoolID, moduleID)
}

func (s *service) DeleteModule(ctx context.Context, schoolID, moduleID snowflake.ID) error {
	return s.repo.DeleteModule(ctx, schoolID, moduleID)
}

func (s *service) ListModules(ctx context.Context, schoolID snowflake.ID) ([]domain.CourseModule, error) {
	return s.repo.ListModules(ctx, schoolID)
}

func (s *service) GetModule(ctx context.Context, schoolID, moduleID snowflake.ID) (*domain.CourseModule, error) {
	return s.repo.FindModule(ctx, schoolID, moduleID)
}

func (s *service) CreateLesson(ctx context.Context, schoolID snowflake.ID, req domain.LessonRequest) (*domain.Lesson, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || req.ModuleID == 0 {
		return nil, domain.ErrInvalidLesson
	}

	if _, err := s.repo.FindModule(ctx, schoolID, req.ModuleID); err != nil {
		return nil, err
	}

	points := req.Points
	if points < 0 {
		return nil, domain.ErrInvalidLesson
	}

	now := s.clock.Now()
	lesson := &domain.Lesson{
		ID:              s.genID.Generate(),
		SchoolID:        schoolID,
		ModuleID:        req.ModuleID,
		Title:           title,
		Description:     strings.TrimSpace(req.Description),
		VideoURL:        strings.TrimSpace(req.VideoURL),
		DurationSeconds: req.DurationSeconds,
		Position:        req.Position,
		Points:          points,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.CreateLesson(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *service) UpdateLesson(ctx context.Context, schoolID, lessonID snowflake.ID, req domain.LessonRequest) (*domain.Lesson, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidLesson
	}

	fields := map[string]any{
		"title":            title,
		"description":      strings.TrimSpace(req.Description),
		"video_url":        strings.TrimSpace(req.VideoURL),
		"duration_seconds": req.DurationSeconds,
		"position":         req.Position,
		"points":           req.Points,
		"updated_at":       s.clock.Now(),
	}
	if err := s.repo.UpdateLessonFields(ctx, schoolID, lessonID, fields); err != nil {
		return nil, err
	}
	return s.repo.FindLesson(ctx, schoolID, lessonID)
}

func (s *service) DeleteLesson(ctx context.Context, schoolID, lessonID snowflake.ID) error {
	return s.repo.DeleteLesson(ctx, schoolID, lessonID)
}

func (s *service) ListLessons(ctx context.Context, schoolID, moduleID snowflake.ID) ([]domain.Lesson, error) {
	return s.repo.ListLessons(ctx, schoolID, moduleID)
}

func (s *service) GetLesson(ctx context.Context, schoolID, lessonID snowflake.ID) (*domain.Lesson, error) {
	return s.repo.FindLesson(ctx, schoolID, lessonID)
}

// CompleteLesson is idempotent: the unique (lesson_id, user_id) index decides
// who performs the first completion, and only the first completion awards
// points. Two concurrent completions therefore cannot double-award.
func (s *service) CompleteLesson(ctx context.Context, schoolID, lessonID, userID snowflake.ID) (*domain.CompletionResult, error) {
	lesson, err := s.repo.FindLesson(ctx, schoolID, lessonID)
	if err != nil {
		return nil, err
	}

	progress := &domain.LessonProgress{
		ID:          s.genID.Generate(),
		SchoolID:    schoolID,
		LessonID:    lessonID,
		UserID:      userID,
		CompletedAt: s.clock.Now(),
	}
	if err := s.repo.CreateProgress(ctx, progress); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return &domain.CompletionResult{First: false}, nil
		}
		return nil, err
	}

	if err := s.profilesvc.AwardPoints(ctx, userID, lesson.Points); err != nil {
		// The completion is recorded; points can be reconciled manually.
		s.log.Error("point award failed",
			zap.String("lesson_id", lessonID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	return &domain.CompletionResult{
		Progress:      progress,
		PointsAwarded: lesson.Points,
		First:         true,
	}, nil
}

func (s *service) ListProgress(ctx context.Context, schoolID, userID snowflake.ID) ([]domain.LessonProgress, error) {
	return s.repo.ListProgressByUser(ctx, schoolID, userID)
}

// ModuleCompleted reports whether the user finished every lesson of the
// module. Modules with no lessons are never considered complete.
func (s *service) ModuleCompleted(ctx context.Context, schoolID, moduleID, userID snowflake.ID) (bool, error) {
	total, err := s.repo.CountLessons(ctx, schoolID, moduleID)
	if err != nil {
		return false, err
	}
	if total == 0 {
		return false, nil
	}

	completed, err := s.repo.CountCompleted(ctx, schoolID, moduleID, userID)
	if err != nil {
		return false, err
	}
	return completed >= total, nil
}
