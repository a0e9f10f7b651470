package service

import (
	"context"
	"errors"
	"sync"

	"jyotchat-be/internal/dto"
	"jyotchat-be/internal/entity"
	"jyotchat-be/internal/pkg/logger"
	"jyotchat-be/internal/repository/contract"
	"jyotchat-be/internal/repository/specification"
	"jyotchat-be/internal/repository/unitofwork"
	"jyotchat-be/pkg/session"
)

const (
	DefaultChatLogPageSize = 20
	MaxChatLogPageSize     = 100
)

var ErrChatLogNotFound = errors.New("chat log not found")

// IChatLogService reads back the loaded turns of the caller's own session.
type IChatLogService interface {
	List(ctx context.Context, identity string, page, pageSize int) (*dto.ChatLogPage, error)
	Show(ctx context.Context, identity string, id int64) (*dto.ChatLogResponse, error)
}

type chatLogService struct {
	uowFactory unitofwork.RepositoryFactory
	resolver   *session.Resolver
	logger     logger.ILogger

	// chat_logs only exists once the first batch was loaded.
	tableMu    sync.Mutex
	tableReady bool
}

func NewChatLogService(
	uowFactory unitofwork.RepositoryFactory,
	resolver *session.Resolver,
	logger logger.ILogger,
) IChatLogService {
	return &chatLogService{
		uowFactory: uowFactory,
		resolver:   resolver,
		logger:     logger,
	}
}

func (s *chatLogService) repository(ctx context.Context) (contract.ChatLogRepository, error) {
	repo := s.uowFactory.NewUnitOfWork(ctx).ChatLogRepository()

	s.tableMu.Lock()
	defer s.tableMu.Unlock()
	if !s.tableReady {
		if err := repo.EnsureTable(ctx); err != nil {
			s.logger.Error("CHAT_LOG", "Failed to ensure chat_logs", map[string]interface{}{
				"error": err.Error(),
			})
			return nil, err
		}
		s.tableReady = true
	}
	return repo, nil
}

func (s *chatLogService) List(ctx context.Context, identity string, page, pageSize int) (*dto.ChatLogPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultChatLogPageSize
	}
	if pageSize > MaxChatLogPageSize {
		pageSize = MaxChatLogPageSize
	}

	repo, err := s.repository(ctx)
	if err != nil {
		return nil, err
	}
	bySession := specification.BySessionKey{SessionKey: s.resolver.Resolve(identity)}

	total, err := repo.Count(ctx, bySession)
	if err != nil {
		return nil, err
	}
	logs, err := repo.FindAll(ctx,
		bySession,
		specification.OrderBy{Field: "id", Desc: true},
		specification.Pagination{Limit: pageSize, Offset: (page - 1) * pageSize},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ChatLogResponse, len(logs))
	for i, l := range logs {
		items[i] = toChatLogResponse(l)
	}
	return &dto.ChatLogPage{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *chatLogService) Show(ctx context.Context, identity string, id int64) (*dto.ChatLogResponse, error) {
	repo, err := s.repository(ctx)
	if err != nil {
		return nil, err
	}

	// Another session's row is reported exactly like a missing one.
	l, err := repo.FindOne(ctx,
		specification.ByID{ID: id},
		specification.BySessionKey{SessionKey: s.resolver.Resolve(identity)},
	)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrChatLogNotFound
	}
	return toChatLogResponse(l), nil
}

func toChatLogResponse(l *entity.ChatLog) *dto.ChatLogResponse {
	res := &dto.ChatLogResponse{
		Id:                l.Id,
		Timestamp:         l.Timestamp,
		UserQuery:         l.UserQuery,
		Contexts:          []dto.ChatLogContextResponse{},
		GeneratedResponse: l.GeneratedResponse,
		IsDefault:         l.IsDefault,
		CorrectedResponse: l.CorrectedResponse,
	}
	for _, c := range l.Contexts {
		if c == (entity.ChatLogContext{}) {
			continue
		}
		res.Contexts = append(res.Contexts, dto.ChatLogContextResponse{
			Text:       c.Text,
			PageNumber: c.PageNumber,
			Resource:   c.Resource,
		})
	}
	return res
}
