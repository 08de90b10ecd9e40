package domain

import "errors"

var (
	// ErrInviteInvalid covers not-found, already-used and expired tokens.
	// Callers cannot distinguish the three, so an attacker probing tokens
	// learns nothing about which invitations exist.
	ErrInviteInvalid = errors.New("invite invalid or expired")

	// ErrEmailRegistered is surfaced distinctly so the UI can suggest
	// signing in instead of retrying.
	ErrEmailRegistered = errors.New("email already registered")

	// ErrProvisioningFailed means the identity was created but the profile
	// or membership write failed and compensation ran.
	ErrProvisioningFailed = errors.New("provisioning failed")

	ErrInvalidRedeemRequest = errors.New("invalid redeem request")
	ErrInvalidInvite        = errors.New("invalid invite")
	ErrInviteNotFound       = errors.New("invite not found")
)
