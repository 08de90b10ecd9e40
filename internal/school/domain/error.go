package domain

import "errors"

var (
	ErrSchoolNotFound = errors.New("school not found")
	ErrInvalidSchool  = errors.New("invalid school")
	ErrInvalidName    = errors.New("invalid name")
	ErrInvalidRole    = errors.New("invalid role")
	ErrInvalidUser    = errors.New("invalid user")
	ErrMemberNotFound = errors.New("member not found")
	ErrMemberExists   = errors.New("member already exists")
	ErrOwnerImmutable = errors.New("owner membership cannot be changed")
)
