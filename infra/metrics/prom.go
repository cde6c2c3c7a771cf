package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/studytime/core/metrics"
)

// PromSink records prediction events in Prometheus metrics.
type PromSink struct {
	predictions *prometheus.CounterVec
	duration    prometheus.Histogram
	rejected    *prometheus.CounterVec
}

// NewPromSink registers the prediction metrics on the default registerer.
// The scrape endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	predictions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studytime_predictions_total",
		Help: "Total number of study-duration suggestions served",
	}, []string{"branch"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "studytime_suggested_duration_minutes",
		Help:    "Distribution of suggested study durations",
		Buckets: prometheus.LinearBuckets(15, 15, 8),
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studytime_rejected_requests_total",
		Help: "Requests refused as malformed, by offending field",
	}, []string{"field"})

	var err error
	if predictions, err = register(reg, predictions); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if rejected, err = register(reg, rejected); err != nil {
		return nil, err
	}
	return &PromSink{predictions: predictions, duration: duration, rejected: rejected}, nil
}

// register returns the already registered collector when an identical one
// exists, so several sinks can share the default registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPrediction counts the prediction and observes its duration.
func (s *PromSink) RecordPrediction(ev coremetrics.PredictionEvent) error {
	s.predictions.WithLabelValues(ev.Breakdown.Branch.String()).Inc()
	s.duration.Observe(ev.Response.SuggestedDuration)
	return nil
}

// RecordRejection counts one rejection per offending field.
func (s *PromSink) RecordRejection(ev coremetrics.RejectionEvent) error {
	for _, f := range ev.Fields {
		s.rejected.WithLabelValues(f).Inc()
	}
	return nil
}
