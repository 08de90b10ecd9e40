package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/orbitaagency1ia/miautoescuela/internal/auth/domain"
	authrepository "github.com/orbitaagency1ia/miautoescuela/internal/auth/repository"
	authservice "github.com/orbitaagency1ia/miautoescuela/internal/auth/service"
	"github.com/orbitaagency1ia/miautoescuela/internal/clock"
	"github.com/orbitaagency1ia/miautoescuela/internal/config"
	"github.com/orbitaagency1ia/miautoescuela/internal/invite/domain"
	inviterepository "github.com/orbitaagency1ia/miautoescuela/internal/invite/repository"
	profiledomain "github.com/orbitaagency1ia/miautoescuela/internal/profile/domain"
	profilerepository "github.com/orbitaagency1ia/miautoescuela/internal/profile/repository"
	"github.com/orbitaagency1ia/miautoescuela/internal/providers/email"
	schooldomain "github.com/orbitaagency1ia/miautoescuela/internal/school/domain"
	schoolrepository "github.com/orbitaagency1ia/miautoescuela/internal/school/repository"
	"github.com/orbitaagency1ia/miautoescuela/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc        domain.Service
	db         *gorm.DB
	clock      *clock.FakeClock
	inviteRepo domain.Repository
	schoolRepo schooldomain.Repository
	authsvc    authdomain.Service
	node       *snowflake.Node
	schoolID   snowflake.ID
	ownerID    snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&profiledomain.Profile{},
		&schooldomain.School{},
		&schooldomain.SchoolMember{},
		&domain.Invitation{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	authRepo, sessionRepo := authrepository.New(dbConn)
	authsvc := authservice.New(zap.NewNop(), authRepo, sessionRepo, node, fake)
	profileRepo := profilerepository.NewRepository(dbConn)
	schoolRepo := schoolrepository.NewRepository(dbConn)
	inviteRepo := inviterepository.NewRepository(dbConn)

	svc := NewService(
		zap.NewNop(),
		dbConn,
		inviteRepo,
		authsvc,
		profileRepo,
		schoolRepo,
		&email.NoOpProvider{},
		node,
		fake,
		config.Config{PublicBaseURL: "http://localhost:8080"},
	)

	ownerID := node.Generate()
	schoolID := node.Generate()
	now := fake.Now()
	require.NoError(t, dbConn.Create(&schooldomain.School{
		ID:                 schoolID,
		Name:               "Autoescuela Central",
		Slug:               "autoescuela-central",
		OwnerID:            ownerID,
		SubscriptionStatus: schooldomain.SubscriptionTrialing,
		CreatedAt:          now,
		UpdatedAt:          now,
	}).Error)

	return &fixture{
		svc:        svc,
		db:         dbConn,
		clock:      fake,
		inviteRepo: inviteRepo,
		schoolRepo: schoolRepo,
		authsvc:    authsvc,
		node:       node,
		schoolID:   schoolID,
		ownerID:    ownerID,
	}
}

func (f *fixture) createInvite(t *testing.T, emailAddr, role string) *domain.CreateResult {
	t.Helper()
	result, err := f.svc.Create(context.Background(), domain.CreateRequest{
		SchoolID:  f.schoolID,
		Email:     emailAddr,
		Role:      role,
		InvitedBy: f.ownerID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.RawToken)
	return result
}

func TestCreateStoresOnlyTokenHash(t *testing.T) {
	f := newFixture(t)

	result := f.createInvite(t, "student@example.com", "")

	assert.Equal(t, schooldomain.RoleStudent, result.Invitation.Role)
	assert.NotEqual(t, result.RawToken, result.Invitation.TokenHash)
	assert.Equal(t, HashToken(result.RawToken), result.Invitation.TokenHash)

	found, err := f.inviteRepo.FindByTokenHash(context.Background(), HashToken(result.RawToken))
	require.NoError(t, err)
	assert.Equal(t, result.Invitation.ID, found.ID)
}

func TestCreateRejectsOwnerRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), domain.CreateRequest{
		SchoolID: f.schoolID,
		Email:    "boss@example.com",
		Role:     schooldomain.RoleOwner,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInvite)
}

func TestRedeemSuccess(t *testing.T) {
	f := newFixture(t)
	invite := f.createInvite(t, "nuevo@example.com", schooldomain.RoleStudent)

	result, err := f.svc.Redeem(context.Background(), domain.RedeemRequest{
		RawToken: invite.RawToken,
		FullName: "Nuevo Alumno",
		Password: "secret-password",
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, f.schoolID, result.SchoolID)
	assert.Equal(t, schooldomain.RoleStudent, result.Role)
	require.NotNil(t, result.Session)
	assert.NotEmpty(t, result.Session.RawToken)

	user, err := f.authsvc.GetUser(context.Background(), result.UserID)
	require.NoError(t, err)
	assert.Equal(t, "nuevo@example.com", user.Email)

	var profile profiledomain.Profile
	require.NoError(t, f.db.Where("user_id = ?", result.UserID).First(&profile).Error)
	assert.Equal(t, "Nuevo Alumno", profile.FullName)

	member, err := f.schoolRepo.FindMembership(context.Background(), f.schoolID, result.UserID)
	require.NoError(t, err)
	assert.Equal(t, schooldomain.RoleStudent, member.Role)
	assert.Equal(t, schooldomain.MemberActive, member.Status)

	var invitation domain.Invitation
	require.NoError(t, f.db.Where("id = ?", invite.Invitation.ID).First(&invitation).Error)
	require.NotNil(t, invitation.UsedAt)
	assert.WithinDuration(t, f.clock.Now(), *invitation.UsedAt, time.Second)
}

func TestRedeemUnknownToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Redeem(context.Background(), domain.RedeemRequest{
		RawToken: "definitely-not-a-real-token",
		FullName: "Alguien",
		Password: "secret-password",
	})
	assert.ErrorIs(t, err, domain.ErrInviteInvalid)
}

func TestRedeemExpiredToken(t *testing.T) {
	f := newFixture(t)
	invite := f.createInvite(t, "tarde@example.com", schooldomain.RoleStudent)

	f.clock.Advance(8 * 24 * time.Hour)

	_, err := f.svc.Redeem(context.Background(), domain.RedeemRequest{
		RawToken: invite.RawToken,
		FullName: "Llega Tarde",
		Password: "secret-password",
	})
	assert.ErrorIs(t, err, domain.ErrInviteInvalid)

	// Expiry must not burn the invitation record.
	var invitation domain.Invitation
	require.NoError(t, f.db.Where("id = ?", invite.Invitation.ID).First(&invitation).Error)
	assert.Nil(t, invitation.UsedAt)
}

func TestRedeemTwiceSecondFails(t *testing.T) {
	f := newFixture(t)
	invite := f.createInvite(t, "unico@example.com", schooldomain.RoleStudent)

	_, err := f.svc.Redeem(context.Background(), domain.RedeemRequest{
		RawToken: invite.RawToken,
		FullName: "Primero",
		Password: "secret-password",
	})
	require.NoError(t, err)

	_, err = f.svc.Redeem(context.Background(), domain.RedeemRequest{
		RawToken: invite.RawToken,
		FullName: "Segundo",
		Password: "other-password",
	})
	assert.ErrorIs(t, err, domain.ErrInviteInvalid)

	var count int64
	require.NoError(t, f.db.Model(&schooldomain.SchoolMember{}).
		Where("school_id = ?", f.schoolID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRedeemShortPasswordNoSideEffects(t *testing.T) {
	f := newFixture(t)
	invite := f.createInvite(t, "corto@example.com", schooldomain.RoleStudent)

	_, err := f.svc.Redeem(context.Background(), domain.RedeemRequest{
		RawToken: invite.RawToken,
		FullName: "Password Corto",
		Password: "short",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRedeemRequest)

	var invitation domain.Invitation
	require.NoError(t, f.db.Where("id = ?", invite.Invitation.ID).First(&invitation).Error)
	assert.Nil(t, invitation.UsedAt)

	var users int64
	require.NoError(t, f.db.Model(&authdomain.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

func TestRedeemEmailAlreadyRegistered(t *testing.T) {
	f := newFixture(t)

	_, err := f.authsvc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "existente@example.com",
		Password: "secret-password",
		FullName: "Ya Registrado",
	})
	require.NoError(t, err)

	invite := f.createInvite(t, "existente@example.com", schooldomain.RoleStudent)

	_, err = f.svc.Redeem(context.Background(), domain.RedeemRequest{
		RawToken: invite.RawToken,
		FullName: "Ya Registrado",
		Password: "secret-password",
	})
	assert.ErrorIs(t, err, domain.ErrEmailRegistered)

	// The claim is released so the invitation stays redeemable after the
	// conflict is resolved.
	var invitation domain.Invitation
	require.NoError(t, f.db.Where("id = ?", invite.Invitation.ID).First(&invitation).Error)
	assert.Nil(t, invitation.UsedAt)

	var members int64
	require.NoError(t, f.db.Model(&schooldomain.SchoolMember{}).
		Where("school_id = ?", f.schoolID).Count(&members).Error)
	assert.Zero(t, members)
}

func TestRedeemProvisioningFailureCompensates(t *testing.T) {
	f := newFixture(t)
	invite := f.createInvite(t, "rollback@example.com", schooldomain.RoleStudent)

	// Make the profile+membership transaction fail after the identity has
	// been created.
	require.NoError(t, f.db.Migrator().DropTable(&schooldomain.SchoolMember{}))

	_, err := f.svc.Redeem(context.Background(), domain.RedeemRequest{
		RawToken: invite.RawToken,
		FullName: "Rollback Uno",
		Password: "secret-password",
	})
	assert.ErrorIs(t, err, domain.ErrProvisioningFailed)

	// The created identity was compensated away and the profile write was
	// rolled back with the transaction.
	var users int64
	require.NoError(t, f.db.Model(&authdomain.User{}).
		Where("email = ?", "rollback@example.com").Count(&users).Error)
	assert.Zero(t, users)

	var profiles int64
	require.NoError(t, f.db.Model(&profiledomain.Profile{}).Count(&profiles).Error)
	assert.Zero(t, profiles)

	// The claim is released, so once the fault is gone the same token
	// provisions normally.
	var invitation domain.Invitation
	require.NoError(t, f.db.Where("id = ?", invite.Invitation.ID).First(&invitation).Error)
	assert.Nil(t, invitation.UsedAt)

	require.NoError(t, f.db.AutoMigrate(&schooldomain.SchoolMember{}))

	result, err := f.svc.Redeem(context.Background(), domain.RedeemRequest{
		RawToken: invite.RawToken,
		FullName: "Rollback Uno",
		Password: "secret-password",
	})
	require.NoError(t, err)
	assert.Equal(t, f.schoolID, result.SchoolID)

	var members int64
	require.NoError(t, f.db.Model(&schooldomain.SchoolMember{}).
		Where("school_id = ? AND user_id = ?", f.schoolID, result.UserID).Count(&members).Error)
	assert.Equal(t, int64(1), members)
}

func TestRedeemAdminRoleInvite(t *testing.T) {
	f := newFixture(t)
	invite := f.createInvite(t, "profe@example.com", schooldomain.RoleAdmin)

	result, err := f.svc.Redeem(context.Background(), domain.RedeemRequest{
		RawToken: invite.RawToken,
		FullName: "Profesora",
		Password: "secret-password",
	})
	require.NoError(t, err)
	assert.Equal(t, schooldomain.RoleAdmin, result.Role)

	member, err := f.schoolRepo.FindMembership(context.Background(), f.schoolID, result.UserID)
	require.NoError(t, err)
	assert.Equal(t, schooldomain.RoleAdmin, member.Role)
}

func TestListReturnsOnlyPending(t *testing.T) {
	f := newFixture(t)
	pending := f.createInvite(t, "pendiente@example.com", schooldomain.RoleStudent)
	redeemed := f.createInvite(t, "usado@example.com", schooldomain.RoleStudent)

	_, err := f.svc.Redeem(context.Background(), domain.RedeemRequest{
		RawToken: redeemed.RawToken,
		FullName: "Usado",
		Password: "secret-password",
	})
	require.NoError(t, err)

	expired := f.createInvite(t, "caducado@example.com", schooldomain.RoleStudent)
	f.clock.Advance(8 * 24 * time.Hour)
	_ = expired

	// A fresh invitation issued after the clock moved forward.
	fresh := f.createInvite(t, "fresco@example.com", schooldomain.RoleStudent)

	invitations, err := f.svc.List(context.Background(), f.schoolID)
	require.NoError(t, err)

	ids := make(map[snowflake.ID]bool, len(invitations))
	for _, inv := range invitations {
		ids[inv.ID] = true
	}
	assert.True(t, ids[fresh.Invitation.ID])
	assert.False(t, ids[pending.Invitation.ID], "invitation past its expiry should not be listed")
	assert.False(t, ids[redeemed.Invitation.ID])
	assert.False(t, ids[expired.Invitation.ID])
}

func TestHashTokenDeterministic(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}
