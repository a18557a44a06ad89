package team

import "context"

// Repository describes team persistence needs from use cases. Every record
// it exposes lives under its own store key; none of the write methods are
// transactional with each other.
type Repository interface {
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	Save(ctx context.Context, t Team) error
	Delete(ctx context.Context, teamID string) error
	// ListIDs enumerates every team id the store actually holds a record
	// for, regardless of what the directory index currently says.
	ListIDs(ctx context.Context) ([]string, error)

	GetRoster(ctx context.Context, teamID string) ([]RosterEntry, error)
	SaveRoster(ctx context.Context, teamID string, roster []RosterEntry) error
	DeleteRoster(ctx context.Context, teamID string) error

	GetPaymentFlags(ctx context.Context, teamID string) (map[string]bool, error)
	SavePaymentFlags(ctx context.Context, teamID string, flags map[string]bool) error
	DeletePaymentFlags(ctx context.Context, teamID string) error
}
