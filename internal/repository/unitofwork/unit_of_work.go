package unitofwork

import (
	"context"

	"jyotchat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatLogRepository() contract.ChatLogRepository
}
