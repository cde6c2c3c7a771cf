package metrics

import (
	"errors"
	"io"
	"time"

	"github.com/kilianp07/studytime/core/model"
)

// Event is anything published on the service event bus.
type Event interface {
	EventTime() time.Time
}

// PredictionEvent is emitted once per successful prediction.
type PredictionEvent struct {
	RequestID string
	Request   model.PredictionRequest
	Response  model.PredictionResponse
	Breakdown model.Breakdown
	Time      time.Time
}

func (e PredictionEvent) EventTime() time.Time { return e.Time }

// RejectionEvent is emitted when a request is refused as malformed.
type RejectionEvent struct {
	RequestID string
	// Fields lists the parameters that failed decoding or validation.
	Fields []string
	Time   time.Time
}

func (e RejectionEvent) EventTime() time.Time { return e.Time }

// MetricsSink records prediction events for observability purposes.
type MetricsSink interface {
	RecordPrediction(ev PredictionEvent) error
}

// RejectionRecorder is implemented by sinks able to record rejected requests.
type RejectionRecorder interface {
	RecordRejection(ev RejectionEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPrediction(PredictionEvent) error { return nil }
func (NopSink) RecordRejection(RejectionEvent) error   { return nil }

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPrediction forwards the event to every sink. A failing sink does not
// prevent delivery to the others; all errors are returned joined.
func (m *MultiSink) RecordPrediction(ev PredictionEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordPrediction(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordRejection forwards the event to sinks implementing RejectionRecorder.
func (m *MultiSink) RecordRejection(ev RejectionEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(RejectionRecorder); ok {
			if err := rec.RecordRejection(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink implementing io.Closer.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
