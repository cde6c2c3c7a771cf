// Package infra contains technical adapters such as the MQTT publisher,
// metrics sinks and error monitoring. These packages should depend only on
// the interfaces defined in the core packages.
package infra
