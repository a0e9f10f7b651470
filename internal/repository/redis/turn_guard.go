package redis

import (
	"context"
	"fmt"
	"time"

	"jyotchat-be/internal/repository/contract"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "turn:"

// releaseScript deletes the lease only if it still holds the caller's token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// TurnGuard shares turn leases between replicas through Redis.
type TurnGuard struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewTurnGuard(rdb *goredis.Client, ttl time.Duration) *TurnGuard {
	return &TurnGuard{rdb: rdb, ttl: ttl}
}

var _ contract.TurnGuard = (*TurnGuard)(nil)

func (g *TurnGuard) Acquire(ctx context.Context, sessionKey string) (string, error) {
	token := uuid.NewString()
	ok, err := g.rdb.SetNX(ctx, keyPrefix+sessionKey, token, g.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("acquire turn lease: %w", err)
	}
	if !ok {
		return "", contract.ErrTurnInProgress
	}
	return token, nil
}

func (g *TurnGuard) Release(ctx context.Context, sessionKey, token string) error {
	if err := releaseScript.Run(ctx, g.rdb, []string{keyPrefix + sessionKey}, token).Err(); err != nil {
		return fmt.Errorf("release turn lease: %w", err)
	}
	return nil
}
