package contract

import (
	"context"

	"jyotchat-be/internal/entity"
	"jyotchat-be/internal/repository/specification"
)

type ChatLogRepository interface {
	// EnsureTable creates chat_logs (and its indexes) when missing.
	EnsureTable(ctx context.Context) error
	CreateBulk(ctx context.Context, logs []*entity.ChatLog) error
	// FindOne returns nil, nil when nothing matches.
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatLog, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatLog, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
