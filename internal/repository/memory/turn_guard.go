package memory

import (
	"context"
	"sync"
	"time"

	"jyotchat-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// TurnGuard keeps one lease per session in go-cache. Acquire and Release both
// hold mu, so a release never deletes a lease taken after its own expired.
type TurnGuard struct {
	mu    sync.Mutex
	cache *cache.Cache
	ttl   time.Duration
}

func NewTurnGuard(ttl time.Duration) *TurnGuard {
	return &TurnGuard{
		cache: cache.New(ttl, time.Minute),
		ttl:   ttl,
	}
}

var _ contract.TurnGuard = (*TurnGuard)(nil)

func (g *TurnGuard) Acquire(_ context.Context, sessionKey string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	token := uuid.NewString()
	// Add fails while an unexpired lease exists.
	if err := g.cache.Add(sessionKey, token, g.ttl); err != nil {
		return "", contract.ErrTurnInProgress
	}
	return token, nil
}

func (g *TurnGuard) Release(_ context.Context, sessionKey, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if v, found := g.cache.Get(sessionKey); found && v.(string) == token {
		g.cache.Delete(sessionKey)
	}
	return nil
}
