package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/orbitaagency1ia/miautoescuela/internal/auth/domain"
	"github.com/orbitaagency1ia/miautoescuela/internal/clock"
	"github.com/orbitaagency1ia/miautoescuela/internal/config"
	"github.com/orbitaagency1ia/miautoescuela/internal/invite/domain"
	profiledomain "github.com/orbitaagency1ia/miautoescuela/internal/profile/domain"
	"github.com/orbitaagency1ia/miautoescuela/internal/providers/email"
	schooldomain "github.com/orbitaagency1ia/miautoescuela/internal/school/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	inviteTokenBytes  = 32
	defaultExpiresIn  = 7 * 24 * time.Hour
	minPasswordLength = 8
)

type service struct {
	log         *zap.Logger
	db          *gorm.DB
	repo        domain.Repository
	authsvc     authdomain.Service
	profileRepo profiledomain.Repository
	schoolRepo  schooldomain.Repository
	email       email.Provider
	genID       *snowflake.Node
	clock       clock.Clock
	baseURL     string
}

func NewService(
	log *zap.Logger,
	db *gorm.DB,
	repo domain.Repository,
	authsvc authdomain.Service,
	profileRepo profiledomain.Repository,
	schoolRepo schooldomain.Repository,
	emailProvider email.Provider,
	genID *snowflake.Node,
	clk clock.Clock,
	cfg config.Config,
) domain.Service {
	return &service{
		log:         log.Named("invite.service"),
		db:          db,
		repo:        repo,
		authsvc:     authsvc,
		profileRepo: profileRepo,
		schoolRepo:  schoolRepo,
		email:       emailProvider,
		genID:       genID,
		clock:       clk,
		baseURL:     cfg.PublicBaseURL,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateRequest) (*domain.CreateResult, error) {
	if req.SchoolID == 0 {
		return nil, domain.ErrInvalidInvite
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return nil, domain.ErrInvalidInvite
	}
	normalized := strings.ToLower(strings.TrimSpace(addr.Address))

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = schooldomain.RoleStudent
	}
	if !schooldomain.ValidRole(role) || role == schooldomain.RoleOwner {
		return nil, domain.ErrInvalidInvite
	}

	expiresIn := req.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = defaultExpiresIn
	}

	rawToken, err := newInviteToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	invitation := &domain.Invitation{
		ID:        s.genID.Generate(),
		SchoolID:  req.SchoolID,
		Email:     normalized,
		Role:      role,
		TokenHash: HashToken(rawToken),
		InvitedBy: req.InvitedBy,
		ExpiresAt: now.Add(expiresIn),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, invitation); err != nil {
		return nil, err
	}

	s.sendInviteEmail(ctx, invitation, rawToken)

	return &domain.CreateResult{
		Invitation: invitation,
		RawToken:   rawToken,
	}, nil
}

// sendInviteEmail is best effort: a bounced or misconfigured mailer must not
// cancel an invitation that is already persisted.
func (s *service) sendInviteEmail(ctx context.Context, invitation *domain.Invitation, rawToken string) {
	school, err := s.schoolRepo.FindByID(ctx, invitation.SchoolID)
	if err != nil {
		s.log.Warn("invite email skipped", zap.Error(err))
		return
	}

	link := fmt.Sprintf("%s/invite?token=%s", s.baseURL, rawToken)
	err = s.email.SendTemplate(ctx, []string{invitation.Email}, "invite_member", map[string]interface{}{
		"school_name": school.Name,
		"role":        invitation.Role,
		"invite_link": link,
		"expires_at":  invitation.ExpiresAt.Format(time.RFC1123),
	})
	if err != nil {
		s.log.Warn("invite email failed",
			zap.String("invite_id", invitation.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *service) List(ctx context.Context, schoolID snowflake.ID) ([]domain.Invitation, error) {
	return s.repo.ListPending(ctx, schoolID, s.clock.Now())
}

func (s *service) Delete(ctx context.Context, schoolID, inviteID snowflake.ID) error {
	return s.repo.Delete(ctx, schoolID, inviteID)
}

// Redeem converts a bearer token into a user identity, a profile and an
// active school membership, exactly once per invitation.
//
// The claim on the invitation row is the first mutating step and the
// serialization point: two concurrent redemptions of the same token race on
// a conditional update of used_at, and the loser gets ErrInviteInvalid
// before any identity exists. If anything after the claim fails, the claim
// is released and created records are compensated, so a failed attempt
// leaves no partial state behind.
func (s *service) Redeem(ctx context.Context, req domain.RedeemRequest) (*domain.RedeemResult, error) {
	// Input checks run before any I/O.
	if strings.TrimSpace(req.FullName) == "" {
		return nil, domain.ErrInvalidRedeemRequest
	}
	if len(req.Password) < minPasswordLength {
		return nil, domain.ErrInvalidRedeemRequest
	}

	rawToken := strings.TrimSpace(req.RawToken)
	if rawToken == "" {
		return nil, domain.ErrInviteInvalid
	}

	invitation, err := s.repo.FindByTokenHash(ctx, HashToken(rawToken))
	if err != nil {
		if errors.Is(err, domain.ErrInviteNotFound) {
			return nil, domain.ErrInviteInvalid
		}
		return nil, err
	}

	now := s.clock.Now()
	// Expired and used invitations are indistinguishable from unknown tokens.
	if invitation.UsedAt != nil || !invitation.ExpiresAt.After(now) {
		return nil, domain.ErrInviteInvalid
	}

	claimed, err := s.repo.Claim(ctx, invitation.ID, now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, domain.ErrInviteInvalid
	}

	user, err := s.authsvc.CreateUser(ctx, authdomain.CreateUserRequest{
		Email:    invitation.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		s.releaseClaim(ctx, invitation.ID)
		if errors.Is(err, authdomain.ErrUserExists) {
			return nil, domain.ErrEmailRegistered
		}
		if errors.Is(err, authdomain.ErrWeakPassword) || errors.Is(err, authdomain.ErrInvalidCredentials) {
			return nil, domain.ErrInvalidRedeemRequest
		}
		s.log.Error("identity creation failed",
			zap.String("invite_id", invitation.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.profileRepo.WithTx(tx).Create(ctx, &profiledomain.Profile{
			UserID:    user.ID,
			FullName:  strings.TrimSpace(req.FullName),
			Phone:     strings.TrimSpace(req.Phone),
			Email:     user.Email,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return err
		}

		return s.schoolRepo.WithTx(tx).AddMember(ctx, &schooldomain.SchoolMember{
			ID:       s.genID.Generate(),
			SchoolID: invitation.SchoolID,
			UserID:   user.ID,
			Role:     invitation.Role,
			Status:   schooldomain.MemberActive,
			JoinedAt: now,
		})
	})
	if err != nil {
		s.compensate(ctx, invitation.ID, user.ID)
		s.log.Error("member provisioning failed",
			zap.String("invite_id", invitation.ID.String()),
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, domain.ErrProvisioningFailed
	}

	result := &domain.RedeemResult{
		UserID:   user.ID,
		SchoolID: invitation.SchoolID,
		Role:     invitation.Role,
	}

	// Auto-login is a convenience; redemption already succeeded.
	session, err := s.authsvc.LoginAs(ctx, user.ID, req.UserAgent, req.IPAddress)
	if err != nil {
		s.log.Warn("post-redeem login failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
	} else {
		result.Session = session
	}

	s.log.Info("invite redeemed",
		zap.String("invite_id", invitation.ID.String()),
		zap.String("school_id", invitation.SchoolID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("role", invitation.Role),
	)
	return result, nil
}

// compensate deletes the user identity and releases the invitation claim
// after a failed provisioning transaction. Failures here are logged for
// manual cleanup; there is nothing further to unwind.
func (s *service) compensate(ctx context.Context, inviteID, userID snowflake.ID) {
	if err := s.authsvc.DeleteUser(ctx, userID); err != nil {
		s.log.Error("compensation: user delete failed, manual cleanup required",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
	s.releaseClaim(ctx, inviteID)
}

func (s *service) releaseClaim(ctx context.Context, inviteID snowflake.ID) {
	if err := s.repo.ReleaseClaim(ctx, inviteID); err != nil {
		s.log.Error("claim release failed, invite stuck used, manual cleanup required",
			zap.String("invite_id", inviteID.String()),
			zap.Error(err),
		)
	}
}

func newInviteToken() (string, error) {
	buf := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken is the deterministic one-way transform applied to invite tokens
// both at creation and at redemption.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
