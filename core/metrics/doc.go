// Package metrics defines the events emitted by the prediction service and
// the sink interfaces that record them. Concrete sinks (Prometheus, InfluxDB,
// MQTT) live in the infra packages and register themselves with the sink
// factory so they can be selected from configuration. Several configured
// sinks are combined with a MultiSink.
package metrics
