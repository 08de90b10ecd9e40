package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/orbitaagency1ia/miautoescuela/internal/clock"
	"github.com/orbitaagency1ia/miautoescuela/internal/school/domain"
	pkgdb "github.com/orbitaagency1ia/miautoescuela/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const trialPeriod = 14 * 24 * time.Hour

type service struct {
	log   *zap.Logger
	db    *gorm.DB
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(log *zap.Logger, db *gorm.DB, repo domain.Repository, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &service{
		log:   log.Named("school.service"),
		db:    db,
		repo:  repo,
		genID: genID,
		clock: clk,
	}
}

// Create bootstraps a tenant: the school row and the owner membership are
// written in one transaction so a school can never exist without an owner.
func (s *service) Create(ctx context.Context, ownerID snowflake.ID, req domain.CreateSchoolRequest) (*domain.School, error) {
	if ownerID == 0 {
		return nil, domain.ErrInvalidUser
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	trialEnds := now.Add(trialPeriod)
	school := &domain.School{
		ID:                 s.genID.Generate(),
		Name:               name,
		Slug:               slug.Make(name),
		OwnerID:            ownerID,
		SubscriptionStatus: domain.SubscriptionTrialing,
		TrialEndsAt:        &trialEnds,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateSchool(ctx, school); err != nil {
			return err
		}

		member := &domain.SchoolMember{
			ID:       s.genID.Generate(),
			SchoolID: school.ID,
			UserID:   ownerID,
			Role:     domain.RoleOwner,
			Status:   domain.MemberActive,
			JoinedAt: now,
		}
		return repo.AddMember(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("school created",
		zap.String("school_id", school.ID.String()),
		zap.String("owner_id", ownerID.String()),
	)
	return school, nil
}

func (s *service) GetByID(ctx context.Context, id snowflake.ID) (*domain.School, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListAll(ctx context.Context) ([]domain.School, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) ListByUser(ctx context.Context, userID snowflake.ID) ([]domain.SchoolListItem, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) AddMember(ctx context.Context, schoolID, userID snowflake.ID, role string) (*domain.SchoolMember, error) {
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	member := &domain.SchoolMember{
		ID:       s.genID.Generate(),
		SchoolID: schoolID,
		UserID:   userID,
		Role:     role,
		Status:   domain.MemberActive,
		JoinedAt: s.clock.Now(),
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrMemberExists
		}
		return nil, err
	}
	return member, nil
}

func (s *service) GetMembership(ctx context.Context, schoolID, userID snowflake.ID) (*domain.SchoolMember, error) {
	return s.repo.FindMembership(ctx, schoolID, userID)
}

func (s *service) ListMembers(ctx context.Context, schoolID snowflake.ID) ([]domain.MemberListItem, error) {
	return s.repo.ListMembers(ctx, schoolID)
}

func (s *service) SetMemberStatus(ctx context.Context, schoolID, memberID snowflake.ID, status string) error {
	if status != domain.MemberActive && status != domain.MemberSuspended {
		return domain.ErrInvalidRole
	}

	member, err := s.repo.FindMemberByID(ctx, schoolID, memberID)
	if err != nil {
		return err
	}
	if member.Role == domain.RoleOwner {
		return domain.ErrOwnerImmutable
	}

	return s.repo.UpdateMemberStatus(ctx, schoolID, memberID, status)
}

func (s *service) RemoveMember(ctx context.Context, schoolID, memberID snowflake.ID) error {
	member, err := s.repo.FindMemberByID(ctx, schoolID, memberID)
	if err != nil {
		return err
	}
	if member.Role == domain.RoleOwner {
		return domain.ErrOwnerImmutable
	}

	return s.repo.DeleteMember(ctx, schoolID, memberID)
}
