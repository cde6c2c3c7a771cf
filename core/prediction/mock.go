package prediction

import (
	"sync"

	"github.com/kilianp07/studytime/core/model"
)

// MockEngine returns a fixed duration and remembers the requests it served.
type MockEngine struct {
	Duration float64
	Branch   model.Branch

	mu       sync.Mutex
	requests []model.PredictionRequest
}

// Predict records the request and returns the configured duration.
func (m *MockEngine) Predict(req model.PredictionRequest) (model.PredictionResponse, model.Breakdown) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return model.PredictionResponse{SuggestedDuration: m.Duration, Unit: model.UnitMinutes},
		model.Breakdown{BaseTime: m.Duration, Multiplier: 1, Branch: m.Branch}
}

// Requests returns a copy of the requests received so far.
func (m *MockEngine) Requests() []model.PredictionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]model.PredictionRequest, len(m.requests))
	copy(cp, m.requests)
	return cp
}
