package events

import (
	"sync/atomic"

	"github.com/vsinha/supplyplan/pkg/logger"
)

// RunMonitor logs failed runs as they are journaled and counts them
type RunMonitor struct {
	log    *logger.Logger
	failed atomic.Int64
}

// NewRunMonitor creates a monitor. log may be nil.
func NewRunMonitor(log *logger.Logger) *RunMonitor {
	if log == nil {
		log = logger.Nop()
	}
	return &RunMonitor{log: log.Named("run_monitor")}
}

// EventTypes lists the events the monitor subscribes to
func (m *RunMonitor) EventTypes() []string {
	return []string{RunFailedEvent}
}

func (m *RunMonitor) CanHandle(eventType string) bool {
	return eventType == RunFailedEvent
}

func (m *RunMonitor) Handle(event Event) error {
	m.failed.Add(1)

	entry := m.log.Error().Str("run_id", event.StreamID())
	if payload, ok := event.Data().(RunFailed); ok {
		entry = entry.Str("kind", string(payload.Kind)).Str("error", payload.Error)
	}
	entry.Msg("planning run failed")
	return nil
}

// Failed returns the number of failed runs seen
func (m *RunMonitor) Failed() int64 {
	return m.failed.Load()
}
