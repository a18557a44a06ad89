package invite

import (
	"context"
	"time"
)

// Repository describes invite persistence needs from use cases.
//
// TakeToken and TakeCode delete the record as part of the lookup. A found
// invite is gone from the store before the caller acts on it, which is what
// makes redemption single-use even when the follow-up join fails.
type Repository interface {
	SaveToken(ctx context.Context, tokenHash string, inv Invite, ttl time.Duration) error
	TakeToken(ctx context.Context, tokenHash string) (Invite, bool, error)

	SaveCode(ctx context.Context, code string, inv Invite, ttl time.Duration) error
	TakeCode(ctx context.Context, code string) (Invite, bool, error)

	// CountIssuance bumps the caller's sliding issuance counter and returns
	// the new value. The counter expires after window, so an idle caller
	// resets to zero on its own.
	CountIssuance(ctx context.Context, callerID string, window time.Duration) (int64, error)
}
