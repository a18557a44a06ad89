package kvstore

import (
	"context"
	"time"

	"github.com/mvickers/leaguedesk/internal/domain/invite"
	"github.com/mvickers/leaguedesk/internal/infrastructure/codec"
	"github.com/mvickers/leaguedesk/internal/infrastructure/store"
)

type InviteRepository struct {
	kv store.KV
}

func NewInviteRepository(kv store.KV) *InviteRepository {
	return &InviteRepository{kv: kv}
}

func (r *InviteRepository) SaveToken(ctx context.Context, tokenHash string, inv invite.Invite, ttl time.Duration) error {
	return codec.WriteDocument(ctx, r.kv, inviteTokenKey(tokenHash), inv, ttl)
}

func (r *InviteRepository) TakeToken(ctx context.Context, tokenHash string) (invite.Invite, bool, error) {
	return r.take(ctx, inviteTokenKey(tokenHash))
}

func (r *InviteRepository) SaveCode(ctx context.Context, code string, inv invite.Invite, ttl time.Duration) error {
	return codec.WriteDocument(ctx, r.kv, inviteCodeKey(code), inv, ttl)
}

func (r *InviteRepository) TakeCode(ctx context.Context, code string) (invite.Invite, bool, error) {
	return r.take(ctx, inviteCodeKey(code))
}

// take deletes the invite the moment the lookup succeeds. Once an invite has
// been seen it is gone, even if the caller's follow-up step fails; that is
// what closes the double-redemption window.
func (r *InviteRepository) take(ctx context.Context, key string) (invite.Invite, bool, error) {
	var inv invite.Invite
	ok, err := codec.ReadDocument(ctx, r.kv, key, &inv)
	if err != nil || !ok {
		return invite.Invite{}, false, err
	}
	if err := r.kv.Delete(ctx, key); err != nil {
		return invite.Invite{}, false, err
	}
	return inv, true, nil
}

func (r *InviteRepository) CountIssuance(ctx context.Context, callerID string, window time.Duration) (int64, error) {
	key := inviteRateKey(callerID)
	count, err := r.kv.Incr(ctx, key)
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := r.kv.Expire(ctx, key, window); err != nil {
			return count, err
		}
	}
	return count, nil
}
