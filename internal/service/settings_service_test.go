package service

import (
	"testing"

	"jyotchat-be/internal/dto"
	"jyotchat-be/pkg/chatengine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsServiceUpdates(t *testing.T) {
	svc := NewSettingsService(chatengine.NewSettings(0.1, 3, "llama3"))

	temp := 0.7
	res, err := svc.UpdateTemperature(&dto.UpdateTemperatureRequest{Temperature: &temp})
	require.NoError(t, err)
	assert.Equal(t, 0.7, res.Temperature)

	k := 5
	res, err = svc.UpdateTopK(&dto.UpdateTopKRequest{TopK: &k})
	require.NoError(t, err)
	assert.Equal(t, 5, res.TopK)

	res, err = svc.SelectModel(&dto.SelectModelRequest{Model: "  mistral "})
	require.NoError(t, err)
	assert.Equal(t, &dto.EngineSettingsResponse{Temperature: 0.7, TopK: 5, Model: "mistral"}, res)
}

func TestSettingsServiceRejectsOutOfRange(t *testing.T) {
	svc := NewSettingsService(chatengine.NewSettings(0.1, 3, "llama3"))

	temp := 2.5
	_, err := svc.UpdateTemperature(&dto.UpdateTemperatureRequest{Temperature: &temp})
	assert.ErrorIs(t, err, chatengine.ErrInvalidTemperature)

	k := 0
	_, err = svc.UpdateTopK(&dto.UpdateTopKRequest{TopK: &k})
	assert.ErrorIs(t, err, chatengine.ErrInvalidTopK)

	assert.Equal(t, &dto.EngineSettingsResponse{Temperature: 0.1, TopK: 3, Model: "llama3"}, svc.Get())
}
