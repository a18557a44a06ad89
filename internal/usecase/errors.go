package usecase

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden covers callers who lack the required relationship to the
	// record: not the team's manager, not a superadmin.
	ErrForbidden = errors.New("forbidden")

	ErrAlreadyOnTeamInLeague = errors.New("already on a team in this league")
	ErrTeamFull              = errors.New("team roster is full")

	// ErrInviteInvalid deliberately does not distinguish absent, expired,
	// and already-redeemed invites.
	ErrInviteInvalid = errors.New("invite is invalid")
	ErrRateLimited   = errors.New("rate limited")
)
