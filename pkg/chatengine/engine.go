package chatengine

import (
	"context"

	"jyotchat-be/pkg/llm"
	"jyotchat-be/pkg/store"
	"jyotchat-be/pkg/stream"
)

// StreamingResponse is a generation in progress. Tokens and Events are
// consumed together by stream.Multiplex; Sources is known up front.
type StreamingResponse struct {
	Tokens  stream.TokenSource
	Events  *stream.EventSink
	Sources []store.Evidence
}

// Response is a complete, non-streamed answer.
type Response struct {
	Answer  string
	Sources []store.Evidence
}

// Engine answers a query given the prior conversation.
type Engine interface {
	StreamChat(ctx context.Context, query string, history []llm.Message) (*StreamingResponse, error)
	Chat(ctx context.Context, query string, history []llm.Message) (*Response, error)
	Settings() *Settings
}

// Retriever finds the evidence an answer should be grounded on.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]store.Evidence, error)
}

// NopRetriever never finds anything; the engine then answers from the
// conversation alone.
type NopRetriever struct{}

func (NopRetriever) Retrieve(context.Context, string, int) ([]store.Evidence, error) {
	return nil, nil
}
