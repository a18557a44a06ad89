package kvstore

import (
	"context"

	"github.com/mvickers/leaguedesk/internal/domain/directory"
	"github.com/mvickers/leaguedesk/internal/infrastructure/codec"
	"github.com/mvickers/leaguedesk/internal/infrastructure/store"
)

type DirectoryRepository struct {
	kv store.KV
}

func NewDirectoryRepository(kv store.KV) *DirectoryRepository {
	return &DirectoryRepository{kv: kv}
}

// teamCard is the legacy card document shape. Different writers embedded the
// id under different field names over time.
type teamCard struct {
	TeamID string `json:"teamId"`
	ID     string `json:"id"`
}

func (c teamCard) teamID() string {
	if c.TeamID != "" {
		return c.TeamID
	}
	return c.ID
}

func (r *DirectoryRepository) LeagueTeamSources(ctx context.Context, leagueID string) (directory.TeamSources, error) {
	canonical, err := codec.ReadIDList(ctx, r.kv, leagueTeamsKey(leagueID))
	if err != nil {
		return directory.TeamSources{}, err
	}
	legacyList, err := codec.ReadIDList(ctx, r.kv, legacyTeamListKey(leagueID))
	if err != nil {
		return directory.TeamSources{}, err
	}
	cards, err := codec.ReadDocumentList[teamCard](ctx, r.kv, legacyTeamCardsKey(leagueID))
	if err != nil {
		return directory.TeamSources{}, err
	}
	cardIDs := make([]string, 0, len(cards))
	for _, card := range cards {
		cardIDs = append(cardIDs, card.teamID())
	}

	return directory.TeamSources{
		Canonical:  canonical,
		LegacyList: legacyList,
		CardIDs:    cardIDs,
	}, nil
}

func (r *DirectoryRepository) ReplaceLeagueTeamSet(ctx context.Context, leagueID string, ids []string) error {
	if err := codec.WriteIDSet(ctx, r.kv, leagueTeamsKey(leagueID), ids); err != nil {
		return err
	}
	// The legacy flat list has been folded in; retire it so the next
	// reconciliation has one source fewer.
	return r.kv.Delete(ctx, legacyTeamListKey(leagueID))
}

func (r *DirectoryRepository) LeagueTeamSet(ctx context.Context, leagueID string) ([]string, error) {
	return codec.ReadIDList(ctx, r.kv, leagueTeamsKey(leagueID))
}

func (r *DirectoryRepository) AddTeamToLeague(ctx context.Context, leagueID, teamID string) error {
	return r.kv.AddToSet(ctx, leagueTeamsKey(leagueID), teamID)
}

func (r *DirectoryRepository) RemoveTeamFromLeague(ctx context.Context, leagueID, teamID string) error {
	return r.kv.RemoveFromSet(ctx, leagueTeamsKey(leagueID), teamID)
}

func (r *DirectoryRepository) TeamDirectory(ctx context.Context) ([]string, error) {
	return codec.ReadIDList(ctx, r.kv, teamDirectoryKey)
}

func (r *DirectoryRepository) ReplaceTeamDirectory(ctx context.Context, ids []string) error {
	return codec.WriteIDSet(ctx, r.kv, teamDirectoryKey, ids)
}

func (r *DirectoryRepository) AddTeamToDirectory(ctx context.Context, teamID string) error {
	return r.kv.AddToSet(ctx, teamDirectoryKey, teamID)
}

func (r *DirectoryRepository) RemoveTeamFromDirectory(ctx context.Context, teamID string) error {
	return r.kv.RemoveFromSet(ctx, teamDirectoryKey, teamID)
}

func (r *DirectoryRepository) LeagueDirectory(ctx context.Context) ([]string, error) {
	return codec.ReadIDList(ctx, r.kv, leagueDirectoryKey)
}

func (r *DirectoryRepository) ReplaceLeagueDirectory(ctx context.Context, ids []string) error {
	return codec.WriteIDSet(ctx, r.kv, leagueDirectoryKey, ids)
}

func (r *DirectoryRepository) AddLeagueToDirectory(ctx context.Context, leagueID string) error {
	return r.kv.AddToSet(ctx, leagueDirectoryKey, leagueID)
}
