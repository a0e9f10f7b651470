package contract

import (
	"context"
	"errors"
)

var ErrTurnInProgress = errors.New("a turn is already in progress for this session")

// TurnGuard allows at most one in-flight turn per session. Acquire returns
// ErrTurnInProgress when the session is busy; the token it returns must be
// handed back to Release. Leases expire on their own after a TTL so a crashed
// request cannot block a session forever.
type TurnGuard interface {
	Acquire(ctx context.Context, sessionKey string) (string, error)
	Release(ctx context.Context, sessionKey, token string) error
}
