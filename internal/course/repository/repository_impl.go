package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitaagency1ia/miautoescuela/internal/course/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) CreateModule(ctx context.Context, module *domain.CourseModule) error {
	return r.db.WithContext(ctx).Create(module).Error
}

func (r *repository) FindModule(ctx context.Context, schoolID, moduleID snowflake.ID) (*domain.CourseModule, error) {
	var module domain.CourseModule
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, moduleID).
		First(&module).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrModuleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *repository) UpdateModuleFields(ctx context.Context, schoolID, moduleID snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.CourseModule{}).
		Where("school_id = ? AND id = ?", schoolID, moduleID).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrModuleNotFound
	}
	return nil
}

func (r *repository) DeleteModule(ctx context.Context, schoolID, moduleID snowflake.ID) error {
	tx := r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, moduleID).
		Delete(&domain.CourseModule{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrModuleNotFound
	}
	return nil
}

func (r *repository) ListModules(ctx context.Context, schoolID snowflake.ID) ([]domain.CourseModule, error) {
	var modules []domain.CourseModule
	err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("position ASC, created_at ASC").
		Find(&modules).Error
	if err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *repository) CreateLesson(ctx context.Context, lesson *domain.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *repository) FindLesson(ctx context.Context, schoolID, lessonID snowflake.ID) (*domain.Lesson, error) {
	var lesson domain.Lesson
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, lessonID).
		First(&lesson).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *repository) UpdateLessonFields(ctx context.Context, schoolID, lessonID snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.Lesson{}).
		Where("school_id = ? AND id = ?", schoolID, lessonID).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrLessonNotFound
	}
	return nil
}

func (r *repository) DeleteLesson(ctx context.Context, schoolID, lessonID snowflake.ID) error {
	tx := r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, lessonID).
		Delete(&domain.Lesson{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrLessonNotFound
	}
	return nil
}

func (r *repository) ListLessons(ctx context.Context, schoolID, moduleID snowflake.ID) ([]domain.Lesson, error) {
	var lessons []domain.Lesson
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND module_id = ?", schoolID, moduleID).
		Order("position ASC, created_at ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *repository) CountLessons(ctx context.Context, schoolID, moduleID snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Lesson{}).
		Where("school_id = ? AND module_id = ?", schoolID, moduleID).
		Count(&count).Error
	return count, err
}

func (r *repository) CreateProgress(ctx context.Context, progress *domain.LessonProgress) error {
	return r.db.WithContext(ctx).Create(progress).Error
}

func (r *repository) ListProgressByUser(ctx context.Context, schoolID, userID snowflake.ID) ([]domain.LessonProgress, error) {
	var progress []domain.LessonProgress
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND user_id = ?", schoolID, userID).
		Order("completed_at ASC").
		Find(&progress).Error
	if err != nil {
		return nil, err
	}
	return progress, nil
}

func (r *repository) CountCompleted(ctx context.Context, schoolID, moduleID, userID snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(*)
		 FROM lesson_progress p
		 JOIN lessons l ON l.id = p.lesson_id
		 WHERE p.school_id = ? AND l.module_id = ? AND p.user_id = ?`,
		schoolID, moduleID, userID,
	).Scan(&count).Error
	return count, err
}
