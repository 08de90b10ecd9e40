package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

type serviceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(log *zap.Logger, enforcer *casbin.SyncedEnforcer) Service {
	return &serviceImpl{
		log:      log.Named("authorization.service"),
		enforcer: enforcer,
	}
}

func (s *serviceImpl) Authorize(ctx context.Context, userID, schoolID, role, object, action string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrInvalidActor
	}
	schoolID = strings.TrimSpace(schoolID)
	if schoolID == "" {
		return ErrInvalidSchool
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return ErrForbidden
	}

	subject := fmt.Sprintf("user:%s", userID)
	domain := fmt.Sprintf("school:%s", schoolID)
	roleName := fmt.Sprintf("role:%s", role)

	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("subject", subject),
			zap.String("domain", domain),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

// ensureGrouping keeps the casbin grouping in sync with the membership role.
// A role change on the member row replaces the stale grouping on next check.
func (s *serviceImpl) ensureGrouping(subject, roleName, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == roleName {
			continue
		}
		params := make([]interface{}, 0, len(rule))
		for _, value := range rule {
			params = append(params, value)
		}
		_, _ = s.enforcer.RemoveGroupingPolicy(params...)
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Students consume content and their own artifacts.
		{"role:student", "*", ObjectModule, ActionView},
		{"role:student", "*", ObjectLesson, ActionView},
		{"role:student", "*", ObjectProgress, ActionView},
		{"role:student", "*", ObjectProgress, ActionCreate},
		{"role:student", "*", ObjectCertificate, ActionView},
		{"role:student", "*", ObjectCertificate, ActionCreate},
		{"role:student", "*", ObjectSchool, ActionView},

		// Admins run the school day to day.
		{"role:admin", "*", ObjectSchool, ActionView},
		{"role:admin", "*", ObjectMember, "*"},
		{"role:admin", "*", ObjectInvite, "*"},
		{"role:admin", "*", ObjectModule, "*"},
		{"role:admin", "*", ObjectLesson, "*"},
		{"role:admin", "*", ObjectProgress, ActionView},
		{"role:admin", "*", ObjectCertificate, "*"},

		// Owners additionally manage the school itself and billing.
		{"role:owner", "*", ObjectSchool, "*"},
		{"role:owner", "*", ObjectMember, "*"},
		{"role:owner", "*", ObjectInvite, "*"},
		{"role:owner", "*", ObjectModule, "*"},
		{"role:owner", "*", ObjectLesson, "*"},
		{"role:owner", "*", ObjectProgress, ActionView},
		{"role:owner", "*", ObjectCertificate, "*"},
		{"role:owner", "*", ObjectBilling, ActionManage},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
