package membership

import "context"

// Repository describes membership persistence needs from use cases.
// Memberships are keyed by their owning user; Remove of an absent entry is
// a no-op so removal flows stay idempotent.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Membership, error)
	Get(ctx context.Context, userID, teamID string) (Membership, bool, error)
	Save(ctx context.Context, m Membership) error
	Remove(ctx context.Context, userID, teamID string) error
}
