package service

import (
	"jyotchat-be/internal/dto"
	"jyotchat-be/pkg/chatengine"
)

type ISettingsService interface {
	Get() *dto.EngineSettingsResponse
	UpdateTemperature(req *dto.UpdateTemperatureRequest) (*dto.EngineSettingsResponse, error)
	UpdateTopK(req *dto.UpdateTopKRequest) (*dto.EngineSettingsResponse, error)
	SelectModel(req *dto.SelectModelRequest) (*dto.EngineSettingsResponse, error)
}

type settingsService struct {
	settings *chatengine.Settings
}

func NewSettingsService(settings *chatengine.Settings) ISettingsService {
	return &settingsService{settings: settings}
}

func (s *settingsService) Get() *dto.EngineSettingsResponse {
	snap := s.settings.Snapshot()
	return &dto.EngineSettingsResponse{
		Temperature: snap.Temperature,
		TopK:        snap.TopK,
		Model:       snap.Model,
	}
}

func (s *settingsService) UpdateTemperature(req *dto.UpdateTemperatureRequest) (*dto.EngineSettingsResponse, error) {
	if err := s.settings.SetTemperature(*req.Temperature); err != nil {
		return nil, err
	}
	return s.Get(), nil
}

func (s *settingsService) UpdateTopK(req *dto.UpdateTopKRequest) (*dto.EngineSettingsResponse, error) {
	if err := s.settings.SetTopK(*req.TopK); err != nil {
		return nil, err
	}
	return s.Get(), nil
}

func (s *settingsService) SelectModel(req *dto.SelectModelRequest) (*dto.EngineSettingsResponse, error) {
	if err := s.settings.SetModel(req.Model); err != nil {
		return nil, err
	}
	return s.Get(), nil
}
