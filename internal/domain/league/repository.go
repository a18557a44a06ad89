package league

import "context"

// Repository describes league persistence needs from use cases.
//
// Save is a whole-record write; callers merge onto a freshly read League so
// unrelated fields survive. The admin-index methods read and write the
// reverse adminUserID -> league ids index; implementations fold any legacy
// single-string index record into the canonical set before mutating it.
type Repository interface {
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	Save(ctx context.Context, l League) error

	AdminLeagues(ctx context.Context, adminUserID string) ([]string, error)
	AddAdminLeague(ctx context.Context, adminUserID, leagueID string) error
	RemoveAdminLeague(ctx context.Context, adminUserID, leagueID string) error
}
