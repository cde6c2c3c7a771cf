package mqtt

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/studytime/core/factory"
	coremetrics "github.com/kilianp07/studytime/core/metrics"
	"github.com/kilianp07/studytime/core/model"
)

func sampleEvent(score float64) coremetrics.PredictionEvent {
	return coremetrics.PredictionEvent{
		RequestID: "req-1",
		Request:   model.PredictionRequest{Grade: 10, Subject: "Math", LastScore: score},
		Response:  model.PredictionResponse{SuggestedDuration: 75, Unit: model.UnitMinutes},
		Breakdown: model.Breakdown{BaseTime: 50, Multiplier: 1.5, Branch: model.BranchLowScore},
		Time:      time.UnixMilli(1700000000000),
	}
}

func TestEventPublisher_RecordPrediction(t *testing.T) {
	mc := &mockClient{}
	defer useMock(mc)()
	pub, err := NewEventPublisher(Config{Broker: "tcp://localhost:1883", QoS: 1})
	require.NoError(t, err)

	require.NoError(t, pub.RecordPrediction(sampleEvent(40)))
	require.Len(t, mc.published, 1)
	msg := mc.published[0]
	assert.Equal(t, DefaultTopic, msg.topic)
	assert.Equal(t, byte(1), msg.qos)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &got))
	assert.Equal(t, "req-1", got["request_id"])
	assert.Equal(t, "low_score", got["branch"])
	assert.Equal(t, 75.0, got["suggested_duration"])
	assert.Equal(t, 40.0, got["last_score"])
	assert.Equal(t, "minutes", got["unit"])
	assert.Equal(t, float64(1700000000000), got["timestamp"])
}

func TestEventPublisher_NaNScoreOmitted(t *testing.T) {
	mc := &mockClient{}
	defer useMock(mc)()
	pub, err := NewEventPublisher(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)

	require.NoError(t, pub.RecordPrediction(sampleEvent(math.NaN())))
	var got map[string]any
	require.NoError(t, json.Unmarshal(mc.published[0].payload, &got))
	_, present := got["last_score"]
	assert.False(t, present)
}

func TestEventPublisher_RecordRejection(t *testing.T) {
	mc := &mockClient{}
	defer useMock(mc)()
	pub, err := NewEventPublisher(Config{Broker: "tcp://localhost:1883", Topic: "school/plan"})
	require.NoError(t, err)

	require.NoError(t, pub.RecordRejection(coremetrics.RejectionEvent{RequestID: "r", Fields: []string{"grade"}, Time: time.UnixMilli(5)}))
	require.Len(t, mc.published, 1)
	assert.Equal(t, "school/plan/rejected", mc.published[0].topic)
	assert.JSONEq(t, `{"request_id":"r","fields":["grade"],"timestamp":5}`, string(mc.published[0].payload))
}

func TestEventPublisher_Retry(t *testing.T) {
	mc := &mockClient{publishErrs: []error{errors.New("net fail"), nil}}
	defer useMock(mc)()
	pub, err := NewEventPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	require.NoError(t, err)

	require.NoError(t, pub.RecordPrediction(sampleEvent(80)))
	assert.Len(t, mc.published, 2)
}

func TestEventPublisher_RetryExhausted(t *testing.T) {
	mc := &mockClient{publishErrs: []error{errors.New("a"), errors.New("b")}}
	defer useMock(mc)()
	pub, err := NewEventPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	require.NoError(t, err)

	err = pub.RecordPrediction(sampleEvent(80))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b")
}

func TestEventPublisher_ConnectError(t *testing.T) {
	mc := &mockClient{connectErr: errors.New("refused")}
	defer useMock(mc)()
	_, err := NewEventPublisher(Config{Broker: "tcp://localhost:1883"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

func TestEventPublisher_Close(t *testing.T) {
	mc := &mockClient{}
	defer useMock(mc)()
	pub, err := NewEventPublisher(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	require.NoError(t, pub.Close())
	assert.True(t, mc.disconnected)
}

func TestMQTTSinkFactory(t *testing.T) {
	mc := &mockClient{}
	defer useMock(mc)()
	sink, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{
		Type: "mqtt",
		Conf: map[string]any{"broker": "tcp://broker:1883", "topic": "t", "qos": "2"},
	}})
	require.NoError(t, err)
	assert.IsType(t, &EventPublisher{}, sink)
	assert.Equal(t, byte(2), sink.(*EventPublisher).qos)

	_, err = coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "mqtt"}})
	assert.Error(t, err, "broker is required")
}
