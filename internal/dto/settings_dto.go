package dto

type UpdateTemperatureRequest struct {
	Temperature *float64 `json:"temperature" validate:"required"`
}

type UpdateTopKRequest struct {
	TopK *int `json:"topK" validate:"required"`
}

type SelectModelRequest struct {
	Model string `json:"model" validate:"required"`
}

type EngineSettingsResponse struct {
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"topK"`
	Model       string  `json:"model"`
}
