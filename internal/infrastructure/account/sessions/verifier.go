// Package sessions verifies bearer tokens against session records kept in
// the same store as everything else. Issuing sessions (login, cookies) is an
// external collaborator's job; this side only reads.
package sessions

import (
	"context"
	"fmt"
	"strings"

	"github.com/mvickers/leaguedesk/internal/domain/user"
	"github.com/mvickers/leaguedesk/internal/infrastructure/codec"
	"github.com/mvickers/leaguedesk/internal/infrastructure/store"
	"github.com/mvickers/leaguedesk/internal/usecase"
)

const sessionKeyPrefix = "session:"

type Verifier struct {
	kv store.KV
}

func NewVerifier(kv store.KV) *Verifier {
	return &Verifier{kv: kv}
}

func (v *Verifier) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	var principal user.Principal
	ok, err := codec.ReadDocument(ctx, v.kv, sessionKeyPrefix+token, &principal)
	if err != nil {
		return user.Principal{}, fmt.Errorf("read session record: %w", err)
	}
	if !ok || principal.UserID == "" {
		return user.Principal{}, fmt.Errorf("%w: unknown or expired session", usecase.ErrUnauthorized)
	}

	return principal, nil
}
