package ollama

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"jyotchat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatStreamYieldsTokens(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"message":{"role":"assistant","content":"Hel"},"done":false}` + "\n"))
		w.Write([]byte("\n"))
		w.Write([]byte(`{"message":{"role":"assistant","content":"lo"},"done":false}` + "\n"))
		w.Write([]byte(`{"message":{"role":"assistant","content":""},"done":true}` + "\n"))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL+"/", "llama3")
	s, err := p.ChatStream(t.Context(), []llm.Message{{Role: "user", Content: "hi"}}, llm.WithTemperature(0.2))
	require.NoError(t, err)
	defer s.Close()

	var tokens []string
	for {
		tok, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		tokens = append(tokens, tok)
	}

	assert.Equal(t, []string{"Hel", "lo"}, tokens)
	assert.True(t, got.Stream)
	assert.Equal(t, "llama3", got.Model)
	assert.Equal(t, 0.2, got.Options.Temperature)
}

func TestChatStreamTruncatedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"content":"partial"},"done":false}` + "\n"))
	}))
	defer srv.Close()

	s, err := NewOllamaProvider(srv.URL, "m").ChatStream(t.Context(), nil)
	require.NoError(t, err)
	defer s.Close()

	tok, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "partial", tok)

	_, err = s.Next()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestChatStreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing").ChatStream(t.Context(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestChatReturnsContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"role":"assistant","content":"full answer"},"done":true}`))
	}))
	defer srv.Close()

	out, err := NewOllamaProvider(srv.URL, "m").Chat(t.Context(), []llm.Message{{Role: "user", Content: "q"}})
	require.NoError(t, err)
	assert.Equal(t, "full answer", out)
}
