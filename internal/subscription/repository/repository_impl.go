package repository

import (
	"context"

	"github.com/orbitaagency1ia/miautoescuela/internal/subscription/domain"
	pkgdb "github.com/orbitaagency1ia/miautoescuela/pkg/db"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) RecordEvent(ctx context.Context, event *domain.ProcessedEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.ErrEventAlreadyProcessed
		}
		return err
	}
	return nil
}
