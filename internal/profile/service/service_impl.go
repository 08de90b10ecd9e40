package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitaagency1ia/miautoescuela/internal/clock"
	"github.com/orbitaagency1ia/miautoescuela/internal/profile/domain"
	"go.uber.org/zap"
)

type service struct {
	log   *zap.Logger
	repo  domain.Repository
	clock clock.Clock
}

func NewService(log *zap.Logger, repo domain.Repository, clk clock.Clock) domain.Service {
	return &service{
		log:   log.Named("profile.service"),
		repo:  repo,
		clock: clk,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Profile, error) {
	fullName := strings.TrimSpace(req.FullName)
	if req.UserID == 0 || fullName == "" {
		return nil, domain.ErrInvalidProfile
	}

	now := s.clock.Now()
	profile := &domain.Profile{
		UserID:    req.UserID,
		FullName:  fullName,
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.TrimSpace(req.Email),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *service) Get(ctx context.Context, userID snowflake.ID) (*domain.Profile, error) {
	return s.repo.FindByUserID(ctx, userID)
}

func (s *service) Update(ctx context.Context, userID snowflake.ID, req domain.UpdateRequest) (*domain.Profile, error) {
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, domain.ErrInvalidProfile
	}

	fields := map[string]any{
		"full_name":  fullName,
		"phone":      strings.TrimSpace(req.Phone),
		"updated_at": s.clock.Now(),
	}
	if err := s.repo.UpdateFields(ctx, userID, fields); err != nil {
		return nil, err
	}

	return s.repo.FindByUserID(ctx, userID)
}

func (s *service) AwardPoints(ctx context.Context, userID snowflake.ID, points int) error {
	if points <= 0 {
		return nil
	}
	return s.repo.IncrementPoints(ctx, userID, points)
}
