package chatengine

import (
	"context"
	"fmt"

	"jyotchat-be/internal/pkg/logger"
	"jyotchat-be/pkg/events"
	"jyotchat-be/pkg/llm"
	"jyotchat-be/pkg/store"
	"jyotchat-be/pkg/stream"
)

type ragEngine struct {
	provider     llm.LLMProvider
	retriever    Retriever
	settings     *Settings
	systemPrompt string
	logger       logger.ILogger
}

func NewRagEngine(
	provider llm.LLMProvider,
	retriever Retriever,
	settings *Settings,
	systemPrompt string,
	logger logger.ILogger,
) Engine {
	if retriever == nil {
		retriever = NopRetriever{}
	}
	return &ragEngine{
		provider:     provider,
		retriever:    retriever,
		settings:     settings,
		systemPrompt: systemPrompt,
		logger:       logger,
	}
}

func (e *ragEngine) Settings() *Settings {
	return e.settings
}

func (e *ragEngine) StreamChat(ctx context.Context, query string, history []llm.Message) (*StreamingResponse, error) {
	cfg := e.settings.Snapshot()
	sink := stream.NewEventSink()

	// 1. Retrieve, reporting progress on the sink
	evidence, err := e.retrieve(ctx, query, cfg.TopK, sink)
	if err != nil {
		sink.MarkDone()
		return nil, err
	}

	// 2. Start generation
	sink.OnEvent(events.NewProgress(events.KindGenerate, "Generating answer"))
	tokens, err := e.provider.ChatStream(ctx, buildMessages(e.systemPrompt, query, history, evidence), e.options(cfg)...)
	if err != nil {
		sink.MarkDone()
		return nil, fmt.Errorf("start generation: %w", err)
	}

	return &StreamingResponse{
		Tokens:  tokens,
		Events:  sink,
		Sources: evidence,
	}, nil
}

func (e *ragEngine) Chat(ctx context.Context, query string, history []llm.Message) (*Response, error) {
	cfg := e.settings.Snapshot()

	evidence, err := e.retrieve(ctx, query, cfg.TopK, nil)
	if err != nil {
		return nil, err
	}

	answer, err := e.provider.Chat(ctx, buildMessages(e.systemPrompt, query, history, evidence), e.options(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	return &Response{Answer: answer, Sources: evidence}, nil
}

func (e *ragEngine) retrieve(ctx context.Context, query string, topK int, sink *stream.EventSink) ([]store.Evidence, error) {
	notify := func(title string) {
		if sink != nil {
			sink.OnEvent(events.NewProgress(events.KindRetrieve, title))
		}
	}

	notify(fmt.Sprintf("Retrieving context for query: '%s'", query))
	evidence, err := e.retriever.Retrieve(ctx, query, topK)
	if err != nil {
		e.logger.Error("CHAT_ENGINE", "Retrieval failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	if topK > 0 && len(evidence) > topK {
		evidence = evidence[:topK]
	}
	notify(fmt.Sprintf("Retrieved %d sources to use as context for the query", len(evidence)))

	e.logger.Debug("CHAT_ENGINE", "Context retrieved", map[string]interface{}{
		"top_k":   topK,
		"sources": len(evidence),
	})
	return evidence, nil
}

func (e *ragEngine) options(cfg Snapshot) []llm.Option {
	opts := []llm.Option{llm.WithTemperature(cfg.Temperature)}
	if cfg.Model != "" {
		opts = append(opts, llm.WithModel(cfg.Model))
	}
	return opts
}
