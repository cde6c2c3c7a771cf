package mqtt

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/avast/retry-go"
	paho "github.com/eclipse/paho.mqtt.golang"

	coremetrics "github.com/kilianp07/studytime/core/metrics"
	"github.com/kilianp07/studytime/infra/logger"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// EventPublisher publishes prediction events as JSON messages. It implements
// metrics.MetricsSink and metrics.RejectionRecorder.
type EventPublisher struct {
	cli        pahoClient
	topic      string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

type predictionMessage struct {
	RequestID         string   `json:"request_id"`
	Grade             int64    `json:"grade"`
	Subject           string   `json:"subject"`
	LastScore         *float64 `json:"last_score,omitempty"`
	BaseTime          float64  `json:"base_time"`
	Multiplier        float64  `json:"multiplier"`
	Branch            string   `json:"branch"`
	SuggestedDuration float64  `json:"suggested_duration"`
	Unit              string   `json:"unit"`
	Timestamp         int64    `json:"timestamp"`
}

type rejectionMessage struct {
	RequestID string   `json:"request_id"`
	Fields    []string `json:"fields"`
	Timestamp int64    `json:"timestamp"`
}

// NewEventPublisher connects to the broker described by cfg.
func NewEventPublisher(cfg Config) (*EventPublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt-publisher")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(paho.Client, *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &EventPublisher{
		cli:        c,
		topic:      cfg.Topic,
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
	}, nil
}

// RecordPrediction publishes the event on the configured topic.
func (p *EventPublisher) RecordPrediction(ev coremetrics.PredictionEvent) error {
	msg := predictionMessage{
		RequestID:         ev.RequestID,
		Grade:             ev.Request.Grade,
		Subject:           ev.Request.Subject,
		BaseTime:          ev.Breakdown.BaseTime,
		Multiplier:        ev.Breakdown.Multiplier,
		Branch:            ev.Breakdown.Branch.String(),
		SuggestedDuration: ev.Response.SuggestedDuration,
		Unit:              ev.Response.Unit,
		Timestamp:         ev.Time.UnixMilli(),
	}
	// JSON cannot carry NaN or infinities; such scores are left out.
	if s := ev.Request.LastScore; !math.IsNaN(s) && !math.IsInf(s, 0) {
		msg.LastScore = &s
	}
	return p.publish(p.topic, msg)
}

// RecordRejection publishes rejected requests on the "<topic>/rejected" topic.
func (p *EventPublisher) RecordRejection(ev coremetrics.RejectionEvent) error {
	return p.publish(p.topic+"/rejected", rejectionMessage{
		RequestID: ev.RequestID,
		Fields:    ev.Fields,
		Timestamp: ev.Time.UnixMilli(),
	})
}

func (p *EventPublisher) publish(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	err = retry.Do(
		func() error {
			token := p.cli.Publish(topic, p.qos, p.retain, payload)
			token.Wait()
			return token.Error()
		},
		retry.Attempts(uint(p.maxRetries+1)),
		retry.Delay(p.backoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			p.log.Errorf("publish attempt %d failed: %v", n+1, err)
		}),
	)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	p.log.Debugf("published %d bytes to %s", len(payload), topic)
	return nil
}

// Close gracefully closes the MQTT connection.
func (p *EventPublisher) Close() error {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
	return nil
}
