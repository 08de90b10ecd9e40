// Package authorization enforces role-based access inside a school. Roles
// come from the membership row; casbin maps them to per-object permissions.
package authorization

import (
	"context"
	"errors"
)

const (
	ObjectSchool      = "school"
	ObjectMember      = "member"
	ObjectInvite      = "invite"
	ObjectModule      = "course_module"
	ObjectLesson      = "lesson"
	ObjectProgress    = "progress"
	ObjectCertificate = "certificate"
	ObjectBilling     = "billing"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionManage = "manage"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidActor  = errors.New("invalid actor")
	ErrInvalidSchool = errors.New("invalid school")
	ErrInvalidObject = errors.New("invalid object")
	ErrInvalidAction = errors.New("invalid action")
)

type Service interface {
	// Authorize checks whether the member role may perform action on object
	// within the school. Returns ErrForbidden when denied.
	Authorize(ctx context.Context, userID, schoolID, role, object, action string) error
}
