package directory

import "context"

// Repository describes directory-index persistence needs from use cases.
// All of these indices are eventually consistent with the authoritative
// team and league records; reconciliation converges them.
type Repository interface {
	LeagueTeamSources(ctx context.Context, leagueID string) (TeamSources, error)
	// ReplaceLeagueTeamSet overwrites the canonical set with ids and deletes
	// the legacy flat list field in the same pass.
	ReplaceLeagueTeamSet(ctx context.Context, leagueID string, ids []string) error
	LeagueTeamSet(ctx context.Context, leagueID string) ([]string, error)
	AddTeamToLeague(ctx context.Context, leagueID, teamID string) error
	RemoveTeamFromLeague(ctx context.Context, leagueID, teamID string) error

	TeamDirectory(ctx context.Context) ([]string, error)
	ReplaceTeamDirectory(ctx context.Context, ids []string) error
	AddTeamToDirectory(ctx context.Context, teamID string) error
	RemoveTeamFromDirectory(ctx context.Context, teamID string) error

	LeagueDirectory(ctx context.Context) ([]string, error)
	ReplaceLeagueDirectory(ctx context.Context, ids []string) error
	AddLeagueToDirectory(ctx context.Context, leagueID string) error
}
