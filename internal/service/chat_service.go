package service

import (
	"context"
	"errors"
	"fmt"

	"jyotchat-be/internal/dto"
	"jyotchat-be/internal/pkg/logger"
	"jyotchat-be/internal/repository/contract"
	"jyotchat-be/pkg/chatengine"
	"jyotchat-be/pkg/llm"
	"jyotchat-be/pkg/session"
	"jyotchat-be/pkg/store"
	"jyotchat-be/pkg/stream"
	"jyotchat-be/pkg/transcript"
)

var (
	ErrNoMessages         = errors.New("no messages provided")
	ErrLastMessageNotUser = errors.New("last message must be from user")
)

type IChatService interface {
	// StartTurn validates the request, reserves the caller's session and
	// starts generation. The returned Turn must be run or closed.
	StartTurn(ctx context.Context, identity string, req *dto.ChatRequest) (*Turn, error)
	// Request answers without streaming and without recording a transcript.
	Request(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResult, error)
}

type chatService struct {
	engine      chatengine.Engine
	resolver    *session.Resolver
	guard       contract.TurnGuard
	transcripts *transcript.Logger
	publisher   ITranscriptPublisher
	logger      logger.ILogger
}

func NewChatService(
	engine chatengine.Engine,
	resolver *session.Resolver,
	guard contract.TurnGuard,
	transcripts *transcript.Logger,
	publisher ITranscriptPublisher,
	logger logger.ILogger,
) IChatService {
	return &chatService{
		engine:      engine,
		resolver:    resolver,
		guard:       guard,
		transcripts: transcripts,
		publisher:   publisher,
		logger:      logger,
	}
}

// ParseChatData splits a request into the query (last message) and the
// history before it.
func ParseChatData(req *dto.ChatRequest) (string, []llm.Message, error) {
	if req == nil || len(req.Messages) == 0 {
		return "", nil, ErrNoMessages
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Role != dto.RoleUser {
		return "", nil, ErrLastMessageNotUser
	}

	history := make([]llm.Message, 0, len(req.Messages)-1)
	for _, m := range req.Messages[:len(req.Messages)-1] {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}
	return last.Content, history, nil
}

func (s *chatService) StartTurn(ctx context.Context, identity string, req *dto.ChatRequest) (*Turn, error) {
	// 1. Validate before touching anything
	query, history, err := ParseChatData(req)
	if err != nil {
		return nil, err
	}

	// 2. Reserve the session
	sessionKey := s.resolver.Resolve(identity)
	token, err := s.guard.Acquire(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	release := func() {
		if err := s.guard.Release(context.Background(), sessionKey, token); err != nil {
			s.logger.Warn("CHAT", "Failed to release turn lease", map[string]interface{}{
				"session_key": sessionKey,
				"error":       err.Error(),
			})
		}
	}

	// 3. Leftovers of an earlier turn go to the loader, not into this one
	if _, err := s.transcripts.ClearIfNonEmpty(sessionKey); err != nil {
		release()
		return nil, fmt.Errorf("prepare transcript: %w", err)
	}

	// 4. Start generation
	genCtx, cancel := context.WithCancel(ctx)
	resp, err := s.engine.StreamChat(genCtx, query, history)
	if err != nil {
		cancel()
		release()
		return nil, err
	}

	s.logger.Info("CHAT", "Turn started", map[string]interface{}{
		"session_key": sessionKey,
		"history":     len(history),
		"sources":     len(resp.Sources),
	})

	t := &Turn{
		SessionKey: sessionKey,
		Query:      query,
		svc:        s,
		cancel:     cancel,
		release:    release,
	}
	t.frames = stream.Multiplex(genCtx, resp.Tokens, resp.Events, resp.Sources, t.Disconnected)
	return t, nil
}

func (s *chatService) Request(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResult, error) {
	query, history, err := ParseChatData(req)
	if err != nil {
		return nil, err
	}

	resp, err := s.engine.Chat(ctx, query, history)
	if err != nil {
		return nil, err
	}

	return &dto.ChatResult{
		Result: dto.ChatMessage{Role: dto.RoleAssistant, Content: resp.Answer},
		Nodes:  store.Nodes(resp.Sources),
	}, nil
}

// recordTurn appends a finished turn and announces it to the loader. A lost
// announcement is recovered by the sweeper, so it is only logged.
func (s *chatService) recordTurn(ctx context.Context, sessionKey, query string, evidence []store.Evidence, answer string) error {
	if err := s.transcripts.AppendTurn(sessionKey, query, evidence, answer); err != nil {
		return err
	}
	if err := s.publisher.PublishCompleted(ctx, sessionKey); err != nil {
		s.logger.Warn("CHAT", "Failed to publish transcript trigger", map[string]interface{}{
			"session_key": sessionKey,
			"error":       err.Error(),
		})
	}
	return nil
}
