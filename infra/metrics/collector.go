package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/studytime/core/metrics"
	"github.com/kilianp07/studytime/core/monitoring"
	"github.com/kilianp07/studytime/infra/logger"
	"github.com/kilianp07/studytime/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards events to the
// sink. It stops when the context is cancelled or the bus is closed; the
// returned channel is closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[coremetrics.Event], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, ev, log)
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev coremetrics.Event, log logger.Logger) {
	switch e := ev.(type) {
	case coremetrics.PredictionEvent:
		if err := sink.RecordPrediction(e); err != nil {
			log.Warnf("record prediction %s: %v", e.RequestID, err)
			monitoring.CaptureException(err, map[string]string{"component": "collector", "event": "prediction"})
		}
	case coremetrics.RejectionEvent:
		if r, ok := sink.(coremetrics.RejectionRecorder); ok {
			if err := r.RecordRejection(e); err != nil {
				log.Warnf("record rejection %s: %v", e.RequestID, err)
				monitoring.CaptureException(err, map[string]string{"component": "collector", "event": "rejection"})
			}
		}
	default:
		log.Debugf("ignoring event %T", ev)
	}
}
