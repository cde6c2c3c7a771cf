package metrics

import "github.com/kilianp07/studytime/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddress is the listen address of the /metrics server. It is
	// only used when a prometheus sink is configured.
	PrometheusAddress string `json:"prometheus_address"`
	// BusBuffer is the number of events queued between handlers and sinks.
	BusBuffer int `json:"bus_buffer"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusAddress == "" {
		c.PrometheusAddress = ":9100"
	}
	if c.BusBuffer <= 0 {
		c.BusBuffer = 256
	}
}

// HasSink reports whether a sink of the given type is configured.
func (c Config) HasSink(typ string) bool {
	for _, s := range c.Sinks {
		if s.Type == typ {
			return true
		}
	}
	return false
}
