package prediction

import "github.com/kilianp07/studytime/core/model"

// Engine computes a suggested study duration for a request.
type Engine interface {
	// Predict returns the response together with the intermediate values
	// that produced it. Implementations must be safe for concurrent use.
	Predict(req model.PredictionRequest) (model.PredictionResponse, model.Breakdown)
}
