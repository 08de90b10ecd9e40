package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitaagency1ia/miautoescuela/internal/school/domain"
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

func (r *repository) CreateSchool(ctx context.Context, school *domain.School) error {
	return r.db.WithContext(ctx).Create(school).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.School, error) {
	var school domain.School
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&school).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSchoolNotFound
	}
	if err != nil {
		return nil, err
	}
	return &school, nil
}

func (r *repository) FindByBillingCustomerID(ctx context.Context, customerID string) (*domain.School, error) {
	var school domain.School
	err := r.db.WithContext(ctx).Where("billing_customer_id = ?", customerID).First(&school).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSchoolNotFound
	}
	if err != nil {
		return nil, err
	}
	return &school, nil
}

func (r *repository) ListAll(ctx context.Context) ([]domain.School, error) {
	var schools []domain.School
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&schools).Error
	if err != nil {
		return nil, err
	}
	return schools, nil
}

func (r *repository) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.School{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrSchoolNotFound
	}
	return nil
}

func (r *repository) ListByUser(ctx context.Context, userID snowflake.ID) ([]domain.SchoolListItem, error) {
	var items []domain.SchoolListItem
	err := r.db.WithContext(ctx).Raw(
		`SELECT s.id, s.name, m.role, s.created_at
		 FROM schools s
		 JOIN school_members m ON m.school_id = s.id
		 WHERE m.user_id = ? AND m.status = ?
		 ORDER BY s.created_at ASC`,
		userID,
		domain.MemberActive,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) AddMember(ctx context.Context, member *domain.SchoolMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repository) FindMembership(ctx context.Context, schoolID, userID snowflake.ID) (*domain.SchoolMember, error) {
	var member domain.SchoolMember
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND user_id = ?", schoolID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) FindMemberByID(ctx context.Context, schoolID, memberID snowflake.ID) (*domain.SchoolMember, error) {
	var member domain.SchoolMember
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, memberID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) ListMembers(ctx context.Context, schoolID snowflake.ID) ([]domain.MemberListItem, error) {
	var items []domain.MemberListItem
	err := r.db.WithContext(ctx).Raw(
		`SELECT m.id, m.user_id, u.full_name, u.email, m.role, m.status, m.joined_at
		 FROM school_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.school_id = ?
		 ORDER BY m.joined_at ASC`,
		schoolID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdateMemberStatus(ctx context.Context, schoolID, memberID snowflake.ID, status string) error {
	tx := r.db.WithContext(ctx).Model(&domain.SchoolMember{}).
		Where("school_id = ? AND id = ?", schoolID, memberID).
		Update("status", status)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

func (r *repository) DeleteMember(ctx context.Context, schoolID, memberID snowflake.ID) error {
	tx := r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, memberID).
		Delete(&domain.SchoolMember{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}
