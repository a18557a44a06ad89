package kvstore

import (
	"context"

	"github.com/mvickers/leaguedesk/internal/domain/membership"
	"github.com/mvickers/leaguedesk/internal/infrastructure/codec"
	"github.com/mvickers/leaguedesk/internal/infrastructure/store"
)

// MembershipRepository stores all of a user's memberships in one document
// keyed by the user, mapping teamID -> membership. A whole-document
// read-modify-write per mutation matches the store's single-key atomicity:
// two teams' updates for the same user race, two users never contend.
type MembershipRepository struct {
	kv store.KV
}

func NewMembershipRepository(kv store.KV) *MembershipRepository {
	return &MembershipRepository{kv: kv}
}

func (r *MembershipRepository) ListByUser(ctx context.Context, userID string) ([]membership.Membership, error) {
	byTeam, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]membership.Membership, 0, len(byTeam))
	for teamID, m := range byTeam {
		if m.TeamID == "" {
			m.TeamID = teamID
		}
		if m.UserID == "" {
			m.UserID = userID
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MembershipRepository) Get(ctx context.Context, userID, teamID string) (membership.Membership, bool, error) {
	byTeam, err := r.load(ctx, userID)
	if err != nil {
		return membership.Membership{}, false, err
	}
	m, ok := byTeam[teamID]
	if !ok {
		return membership.Membership{}, false, nil
	}
	if m.TeamID == "" {
		m.TeamID = teamID
	}
	if m.UserID == "" {
		m.UserID = userID
	}
	return m, true, nil
}

func (r *MembershipRepository) Save(ctx context.Context, m membership.Membership) error {
	byTeam, err := r.load(ctx, m.UserID)
	if err != nil {
		return err
	}
	if byTeam == nil {
		byTeam = make(map[string]membership.Membership, 1)
	}
	byTeam[m.TeamID] = m
	return codec.WriteDocument(ctx, r.kv, membershipsKey(m.UserID), byTeam, 0)
}

func (r *MembershipRepository) Remove(ctx context.Context, userID, teamID string) error {
	byTeam, err := r.load(ctx, userID)
	if err != nil {
		return err
	}
	if _, ok := byTeam[teamID]; ok {
		delete(byTeam, teamID)
		if err := codec.WriteDocument(ctx, r.kv, membershipsKey(userID), byTeam, 0); err != nil {
			return err
		}
	}
	// The private per-user roster sub-record goes regardless; deleting an
	// absent key is a no-op.
	return r.kv.Delete(ctx, userRosterKey(userID, teamID))
}

func (r *MembershipRepository) load(ctx context.Context, userID string) (map[string]membership.Membership, error) {
	var byTeam map[string]membership.Membership
	ok, err := codec.ReadDocument(ctx, r.kv, membershipsKey(userID), &byTeam)
	if err != nil || !ok {
		return nil, err
	}
	return byTeam, nil
}
