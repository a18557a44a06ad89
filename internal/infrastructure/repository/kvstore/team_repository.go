package kvstore

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/mvickers/leaguedesk/internal/domain/team"
	"github.com/mvickers/leaguedesk/internal/infrastructure/codec"
	"github.com/mvickers/leaguedesk/internal/infrastructure/store"
)

type TeamRepository struct {
	kv store.KV
}

func NewTeamRepository(kv store.KV) *TeamRepository {
	return &TeamRepository{kv: kv}
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	var t team.Team
	ok, err := codec.ReadDocument(ctx, r.kv, teamKey(teamID), &t)
	if err != nil || !ok {
		return team.Team{}, false, err
	}
	if t.ID == "" {
		t.ID = teamID
	}
	if t.RosterLimit < 1 {
		t.RosterLimit = team.DefaultRosterLimit
	}
	return t, true, nil
}

func (r *TeamRepository) Save(ctx context.Context, t team.Team) error {
	return codec.WriteDocument(ctx, r.kv, teamKey(t.ID), t, 0)
}

func (r *TeamRepository) Delete(ctx context.Context, teamID string) error {
	return r.kv.Delete(ctx, teamKey(teamID))
}

func (r *TeamRepository) ListIDs(ctx context.Context) ([]string, error) {
	keys, err := r.kv.ScanKeys(ctx, teamKeyPattern)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		id := strings.TrimPrefix(key, teamKeyPrefix)
		// Sub-records (rosters, payment maps) share the prefix.
		if id == "" || strings.Contains(id, ":") {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *TeamRepository) GetRoster(ctx context.Context, teamID string) ([]team.RosterEntry, error) {
	return codec.ReadDocumentList[team.RosterEntry](ctx, r.kv, rosterKey(teamID))
}

func (r *TeamRepository) SaveRoster(ctx context.Context, teamID string, roster []team.RosterEntry) error {
	return codec.WriteDocument(ctx, r.kv, rosterKey(teamID), roster, 0)
}

func (r *TeamRepository) DeleteRoster(ctx context.Context, teamID string) error {
	return r.kv.Delete(ctx, rosterKey(teamID))
}

func (r *TeamRepository) GetPaymentFlags(ctx context.Context, teamID string) (map[string]bool, error) {
	var flags map[string]bool
	ok, err := codec.ReadDocument(ctx, r.kv, paymentsKey(teamID), &flags)
	if err != nil {
		return nil, err
	}
	if ok {
		return flags, nil
	}

	// Oldest payment maps were written as plain hashes with "true"/"1"
	// string values rather than JSON booleans.
	fields, ok, err := r.kv.HashGetAll(ctx, paymentsKey(teamID))
	if err != nil || !ok {
		return nil, ignoreWrongType(err)
	}
	flags = make(map[string]bool, len(fields))
	for userID, raw := range fields {
		paid, parseErr := strconv.ParseBool(strings.TrimSpace(raw))
		flags[userID] = parseErr == nil && paid
	}
	return flags, nil
}

func (r *TeamRepository) SavePaymentFlags(ctx context.Context, teamID string, flags map[string]bool) error {
	return codec.WriteDocument(ctx, r.kv, paymentsKey(teamID), flags, 0)
}

func (r *TeamRepository) DeletePaymentFlags(ctx context.Context, teamID string) error {
	return r.kv.Delete(ctx, paymentsKey(teamID))
}

func ignoreWrongType(err error) error {
	if errors.Is(err, store.ErrWrongType) {
		return nil
	}
	return err
}
