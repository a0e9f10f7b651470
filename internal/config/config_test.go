package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "memory", cfg.App.TurnGuard)
	assert.Equal(t, "gochannel", cfg.Transcript.EtlTrigger)
	assert.Equal(t, 3, cfg.Ai.TopK)
	assert.Equal(t, DefaultSystemPrompt, cfg.Ai.SystemPrompt)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TOP_K", "7")
	t.Setenv("LLM_TEMPERATURE", "0.65")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("GO_ENV", "production")
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434")
	t.Setenv("LLM_BASE_URL", "")

	cfg := Load()

	assert.Equal(t, 7, cfg.Ai.TopK)
	assert.Equal(t, 0.65, cfg.Ai.Temperature)
	assert.True(t, cfg.App.OtelEnabled)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "http://ollama:11434", cfg.LLMURL())
}

func TestMalformedNumbersFallBack(t *testing.T) {
	t.Setenv("TOP_K", "many")
	t.Setenv("LLM_TEMPERATURE", "hot")

	cfg := Load()

	assert.Equal(t, 3, cfg.Ai.TopK)
	assert.Equal(t, 0.1, cfg.Ai.Temperature)
}
