package kvstore

import (
	"context"

	"github.com/mvickers/leaguedesk/internal/domain/league"
	"github.com/mvickers/leaguedesk/internal/infrastructure/codec"
	"github.com/mvickers/leaguedesk/internal/infrastructure/store"
)

type LeagueRepository struct {
	kv store.KV
}

func NewLeagueRepository(kv store.KV) *LeagueRepository {
	return &LeagueRepository{kv: kv}
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	var l league.League
	ok, err := codec.ReadDocument(ctx, r.kv, leagueKey(leagueID), &l)
	if err != nil || !ok {
		return league.League{}, false, err
	}
	if l.ID == "" {
		l.ID = leagueID
	}
	return l, true, nil
}

func (r *LeagueRepository) Save(ctx context.Context, l league.League) error {
	return codec.WriteDocument(ctx, r.kv, leagueKey(l.ID), l, 0)
}

func (r *LeagueRepository) AdminLeagues(ctx context.Context, adminUserID string) ([]string, error) {
	// ReadIDList already folds the legacy single-string index value into a
	// one-element list; migration to the set shape happens on next write.
	return codec.ReadIDList(ctx, r.kv, adminIndexKey(adminUserID))
}

func (r *LeagueRepository) AddAdminLeague(ctx context.Context, adminUserID, leagueID string) error {
	ids, err := r.adminLeaguesMigrated(ctx, adminUserID)
	if err != nil {
		return err
	}
	return codec.WriteIDSet(ctx, r.kv, adminIndexKey(adminUserID), append(ids, leagueID))
}

func (r *LeagueRepository) RemoveAdminLeague(ctx context.Context, adminUserID, leagueID string) error {
	ids, err := r.adminLeaguesMigrated(ctx, adminUserID)
	if err != nil {
		return err
	}
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != leagueID {
			kept = append(kept, id)
		}
	}
	return codec.WriteIDSet(ctx, r.kv, adminIndexKey(adminUserID), kept)
}

// adminLeaguesMigrated reads the reverse index through the codec so that a
// historical single-string record is folded in before mutation. The
// subsequent WriteIDSet persists the canonical set, healing the format
// drift as a side effect of the assignment.
func (r *LeagueRepository) adminLeaguesMigrated(ctx context.Context, adminUserID string) ([]string, error) {
	return codec.ReadIDList(ctx, r.kv, adminIndexKey(adminUserID))
}
