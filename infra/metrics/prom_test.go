package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/studytime/core/metrics"
	"github.com/kilianp07/studytime/core/model"
)

func TestPromSink_RecordPrediction(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	ev := coremetrics.PredictionEvent{
		Response:  model.PredictionResponse{SuggestedDuration: 75, Unit: model.UnitMinutes},
		Breakdown: model.Breakdown{BaseTime: 50, Multiplier: 1.5, Branch: model.BranchLowScore},
	}
	require.NoError(t, sink.RecordPrediction(ev))
	require.NoError(t, sink.RecordPrediction(ev))

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.predictions.WithLabelValues("low_score")))
	assert.Equal(t, 0.0, testutil.ToFloat64(sink.predictions.WithLabelValues("standard")))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.duration))
}

func TestPromSink_RecordRejection(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordRejection(coremetrics.RejectionEvent{Fields: []string{"grade", "last_score"}}))
	require.NoError(t, sink.RecordRejection(coremetrics.RejectionEvent{Fields: []string{"grade"}}))

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.rejected.WithLabelValues("grade")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.rejected.WithLabelValues("last_score")))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, first.RecordPrediction(coremetrics.PredictionEvent{}))
	assert.Equal(t, 1.0, testutil.ToFloat64(second.predictions.WithLabelValues("standard")))
}
