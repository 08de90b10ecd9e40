package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitaagency1ia/miautoescuela/internal/clock"
	"github.com/orbitaagency1ia/miautoescuela/internal/school/domain"
	"github.com/orbitaagency1ia/miautoescuela/internal/school/repository"
	"github.com/orbitaagency1ia/miautoescuela/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc    domain.Service
	db     *gorm.DB
	clock  *clock.FakeClock
	node   *snowflake.Node
	owner  snowflake.ID
	member snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.School{}, &domain.SchoolMember{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := NewService(zap.NewNop(), dbConn, repository.NewRepository(dbConn), node, clk)

	return &fixture{
		svc:    svc,
		db:     dbConn,
		clock:  clk,
		node:   node,
		owner:  node.Generate(),
		member: node.Generate(),
	}
}

func TestCreateBootstrapsOwnerMembership(t *testing.T) {
	f := newFixture(t)

	school, err := f.svc.Create(context.Background(), f.owner, domain.CreateSchoolRequest{
		Name: "Autoescuela Sol",
	})
	require.NoError(t, err)

	assert.Equal(t, "autoescuela-sol", school.Slug)
	assert.Equal(t, domain.SubscriptionTrialing, school.SubscriptionStatus)
	require.NotNil(t, school.TrialEndsAt)
	assert.Equal(t, f.clock.Now().Add(14*24*time.Hour), school.TrialEndsAt.UTC())

	membership, err := f.svc.GetMembership(context.Background(), school.ID, f.owner)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, membership.Role)
	assert.Equal(t, domain.MemberActive, membership.Status)
}

func TestCreateRequiresName(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.owner, domain.CreateSchoolRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestAddMemberDuplicate(t *testing.T) {
	f := newFixture(t)

	school, err := f.svc.Create(context.Background(), f.owner, domain.CreateSchoolRequest{
		Name: "Autoescuela Sol",
	})
	require.NoError(t, err)

	_, err = f.svc.AddMember(context.Background(), school.ID, f.member, domain.RoleStudent)
	require.NoError(t, err)

	_, err = f.svc.AddMember(context.Background(), school.ID, f.member, domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrMemberExists)
}

func TestAddMemberInvalidRole(t *testing.T) {
	f := newFixture(t)

	school, err := f.svc.Create(context.Background(), f.owner, domain.CreateSchoolRequest{
		Name: "Autoescuela Sol",
	})
	require.NoError(t, err)

	_, err = f.svc.AddMember(context.Background(), school.ID, f.member, "superuser")
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestOwnerMembershipImmutable(t *testing.T) {
	f := newFixture(t)

	school, err := f.svc.Create(context.Background(), f.owner, domain.CreateSchoolRequest{
		Name: "Autoescuela Sol",
	})
	require.NoError(t, err)

	ownerMembership, err := f.svc.GetMembership(context.Background(), school.ID, f.owner)
	require.NoError(t, err)

	err = f.svc.SetMemberStatus(context.Background(), school.ID, ownerMembership.ID, domain.MemberSuspended)
	assert.ErrorIs(t, err, domain.ErrOwnerImmutable)

	err = f.svc.RemoveMember(context.Background(), school.ID, ownerMembership.ID)
	assert.ErrorIs(t, err, domain.ErrOwnerImmutable)
}

func TestSuspendAndRemoveMember(t *testing.T) {
	f := newFixture(t)

	school, err := f.svc.Create(context.Background(), f.owner, domain.CreateSchoolRequest{
		Name: "Autoescuela Sol",
	})
	require.NoError(t, err)

	added, err := f.svc.AddMember(context.Background(), school.ID, f.member, domain.RoleStudent)
	require.NoError(t, err)

	require.NoError(t, f.svc.SetMemberStatus(context.Background(), school.ID, added.ID, domain.MemberSuspended))

	membership, err := f.svc.GetMembership(context.Background(), school.ID, f.member)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberSuspended, membership.Status)

	require.NoError(t, f.svc.RemoveMember(context.Background(), school.ID, added.ID))

	_, err = f.svc.GetMembership(context.Background(), school.ID, f.member)
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestListByUserIncludesRole(t *testing.T) {
	f := newFixture(t)

	school, err := f.svc.Create(context.Background(), f.owner, domain.CreateSchoolRequest{
		Name: "Autoescuela Sol",
	})
	require.NoError(t, err)

	items, err := f.svc.ListByUser(context.Background(), f.owner)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, school.ID, items[0].ID)
	assert.Equal(t, domain.RoleOwner, items[0].Role)
}
