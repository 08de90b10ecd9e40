package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitaagency1ia/miautoescuela/internal/invite/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, invitation *domain.Invitation) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

func (r *repository) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *repository) ListPending(ctx context.Context, schoolID snowflake.ID, now time.Time) ([]domain.Invitation, error) {
	var invitations []domain.Invitation
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND used_at IS NULL AND expires_at > ?", schoolID, now).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

func (r *repository) Delete(ctx context.Context, schoolID, inviteID snowflake.ID) error {
	tx := r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, inviteID).
		Delete(&domain.Invitation{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrInviteNotFound
	}
	return nil
}

func (r *repository) Claim(ctx context.Context, inviteID snowflake.ID, usedAt time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Invitation{}).
		Where("id = ? AND used_at IS NULL", inviteID).
		Update("used_at", usedAt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (r *repository) ReleaseClaim(ctx context.Context, inviteID snowflake.ID) error {
	return r.db.WithContext(ctx).Model(&domain.Invitation{}).
		Where("id = ?", inviteID).
		Update("used_at", nil).Error
}
