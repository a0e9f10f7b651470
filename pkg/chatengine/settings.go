package chatengine

import (
	"errors"
	"strings"
	"sync"
)

var (
	ErrInvalidTemperature = errors.New("temperature must be between 0 and 2")
	ErrInvalidTopK        = errors.New("top_k must be at least 1")
	ErrInvalidModel       = errors.New("model name must not be empty")
)

// Settings are the tunables of an engine. They can change while requests are
// being served; every request reads a consistent Snapshot.
type Settings struct {
	mu          sync.RWMutex
	temperature float64
	topK        int
	model       string
}

type Snapshot struct {
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"topK"`
	Model       string  `json:"model"`
}

func NewSettings(temperature float64, topK int, model string) *Settings {
	return &Settings{
		temperature: temperature,
		topK:        topK,
		model:       model,
	}
}

func (s *Settings) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Temperature: s.temperature, TopK: s.topK, Model: s.model}
}

func (s *Settings) SetTemperature(t float64) error {
	if t < 0 || t > 2 {
		return ErrInvalidTemperature
	}
	s.mu.Lock()
	s.temperature = t
	s.mu.Unlock()
	return nil
}

func (s *Settings) SetTopK(k int) error {
	if k < 1 {
		return ErrInvalidTopK
	}
	s.mu.Lock()
	s.topK = k
	s.mu.Unlock()
	return nil
}

func (s *Settings) SetModel(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidModel
	}
	s.mu.Lock()
	s.model = name
	s.mu.Unlock()
	return nil
}
