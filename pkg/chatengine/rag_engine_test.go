package chatengine

import (
	"context"
	"errors"
	"io"
	"testing"

	"jyotchat-be/internal/pkg/logger"
	"jyotchat-be/pkg/llm"
	"jyotchat-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	tokens []string
}

func (s *fakeStream) Next() (string, error) {
	if len(s.tokens) == 0 {
		return "", io.EOF
	}
	t := s.tokens[0]
	s.tokens = s.tokens[1:]
	return t, nil
}

func (s *fakeStream) Close() error { return nil }

type fakeProvider struct {
	tokens   []string
	answer   string
	err      error
	messages []llm.Message
	opts     llm.Options
}

func (p *fakeProvider) capture(history []llm.Message, options []llm.Option) {
	p.messages = history
	for _, o := range options {
		o(&p.opts)
	}
}

func (p *fakeProvider) Chat(_ context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.capture(history, options)
	return p.answer, p.err
}

func (p *fakeProvider) ChatStream(_ context.Context, history []llm.Message, options ...llm.Option) (llm.Stream, error) {
	p.capture(history, options)
	if p.err != nil {
		return nil, p.err
	}
	return &fakeStream{tokens: p.tokens}, nil
}

type staticRetriever struct {
	evidence []store.Evidence
	err      error
}

func (r staticRetriever) Retrieve(context.Context, string, int) ([]store.Evidence, error) {
	return r.evidence, r.err
}

func TestStreamChatReportsProgressAndSources(t *testing.T) {
	provider := &fakeProvider{tokens: []string{"a", "b"}}
	ev := []store.Evidence{{ID: "1", Text: "one"}, {ID: "2", Text: "two"}, {ID: "3", Text: "three"}}
	engine := NewRagEngine(provider, staticRetriever{evidence: ev}, NewSettings(0.3, 2, "mistral"), "Be brief.", logger.NewNopLogger())

	resp, err := engine.StreamChat(t.Context(), "what?", []llm.Message{
		{Role: "system", Content: "ignored"},
		{Role: "user", Content: "earlier"},
		{Role: "assistant", Content: "reply"},
	})
	require.NoError(t, err)

	assert.Len(t, resp.Sources, 2)
	assert.Equal(t, 0.3, provider.opts.Temperature)
	assert.Equal(t, "mistral", provider.opts.Model)

	require.Len(t, provider.messages, 4)
	assert.Equal(t, "system", provider.messages[0].Role)
	assert.Contains(t, provider.messages[0].Content, "Be brief.")
	assert.Contains(t, provider.messages[0].Content, "two")
	assert.NotContains(t, provider.messages[0].Content, "three")
	assert.Equal(t, llm.Message{Role: "user", Content: "what?"}, provider.messages[3])

	resp.Events.MarkDone()
	var titles []string
	for {
		e, err := resp.Events.Next(t.Context())
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		titles = append(titles, e.Title())
	}
	assert.Equal(t, []string{
		"Retrieving context for query: 'what?'",
		"Retrieved 2 sources to use as context for the query",
		"Generating answer",
	}, titles)
}

func TestStreamChatRetrievalFailure(t *testing.T) {
	engine := NewRagEngine(&fakeProvider{}, staticRetriever{err: errors.New("index offline")}, NewSettings(0.1, 3, ""), "", logger.NewNopLogger())

	_, err := engine.StreamChat(t.Context(), "q", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index offline")
}

func TestStreamChatGenerationFailure(t *testing.T) {
	engine := NewRagEngine(&fakeProvider{err: errors.New("refused")}, nil, NewSettings(0.1, 3, ""), "", logger.NewNopLogger())

	_, err := engine.StreamChat(t.Context(), "q", nil)
	assert.ErrorContains(t, err, "start generation")
}

func TestChatReturnsAnswerAndSources(t *testing.T) {
	ev := []store.Evidence{{ID: "1", Text: "one"}}
	engine := NewRagEngine(&fakeProvider{answer: "done"}, staticRetriever{evidence: ev}, NewSettings(0.1, 3, ""), "", logger.NewNopLogger())

	resp, err := engine.Chat(t.Context(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Answer)
	assert.Equal(t, ev, resp.Sources)
}

func TestSettingsValidation(t *testing.T) {
	s := NewSettings(0.5, 3, "m")

	assert.ErrorIs(t, s.SetTemperature(2.5), ErrInvalidTemperature)
	assert.ErrorIs(t, s.SetTopK(0), ErrInvalidTopK)
	assert.ErrorIs(t, s.SetModel("   "), ErrInvalidModel)
	assert.Equal(t, Snapshot{Temperature: 0.5, TopK: 3, Model: "m"}, s.Snapshot())

	require.NoError(t, s.SetTemperature(1.2))
	require.NoError(t, s.SetTopK(8))
	require.NoError(t, s.SetModel(" llama3 "))
	assert.Equal(t, Snapshot{Temperature: 1.2, TopK: 8, Model: "llama3"}, s.Snapshot())
}
