package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitaagency1ia/miautoescuela/internal/certificate/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, certificate *domain.Certificate) error {
	return r.db.WithContext(ctx).Create(certificate).Error
}

func (r *repository) FindByID(ctx context.Context, schoolID, certificateID snowflake.ID) (*domain.Certificate, error) {
	var certificate domain.Certificate
	err := r.db.WithContext(ctx).
		Where("id = ? AND school_id = ?", certificateID, schoolID).
		First(&certificate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCertificateNotFound
		}
		return nil, err
	}
	return &certificate, nil
}

func (r *repository) ListByUser(ctx context.Context, schoolID, userID snowflake.ID) ([]domain.Certificate, error) {
	var certificates []domain.Certificate
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND user_id = ?", schoolID, userID).
		Order("issued_at DESC").
		Find(&certificates).Error
	if err != nil {
		return nil, err
	}
	return certificates, nil
}
