package nats

import (
	"encoding/json"
	"testing"
	"time"

	"jyotchat-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEventRestoresTypeAndTime(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	data, err := json.Marshal(map[string]interface{}{
		"session_key": "abc",
		"occurred_at": at.Format(time.RFC3339Nano),
	})
	require.NoError(t, err)

	ev, err := DecodeEvent(Subject(events.TypeTranscriptCompleted), data)
	require.NoError(t, err)

	assert.Equal(t, events.TypeTranscriptCompleted, ev.EventType())
	assert.Equal(t, map[string]interface{}{"session_key": "abc"}, ev.Payload())
	assert.True(t, at.Equal(ev.Timestamp()))
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	_, err := DecodeEvent("events.x", []byte("{"))
	assert.Error(t, err)
}
