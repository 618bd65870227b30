package telemetry

import (
	"sync/atomic"
	"time"
)

// Internal health counters tracked atomically for thread-safety
var (
	eventsSent       atomic.Int64 // Events forwarded to a sender
	eventsTraced     atomic.Int64 // Events written to the sink in logging-only mode
	eventsSuppressed atomic.Int64 // Events dropped by policy (disabled or disposed)
)

// Health represents the health status of the telemetry core
type Health struct {
	Initialized      bool   `json:"initialized"`
	Supported        bool   `json:"supported"`
	Level            string `json:"level"`
	LiveLoggers      int    `json:"live_loggers"`
	EventsSent       int64  `json:"events_sent"`
	EventsTraced     int64  `json:"events_traced"`
	EventsSuppressed int64  `json:"events_suppressed"`
	Uptime           string `json:"uptime"`
}

// GetHealth returns the current health status of the process-global
// coordinator. If Initialize has not been called, only the counters are
// populated.
func GetHealth() Health {
	h := Health{
		Level:            LevelNone.String(),
		EventsSent:       eventsSent.Load(),
		EventsTraced:     eventsTraced.Load(),
		EventsSuppressed: eventsSuppressed.Load(),
	}

	c := Default()
	if c == nil {
		return h
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	live := 0
	for _, l := range c.loggers {
		if !l.IsDisposed() {
			live++
		}
	}

	h.Initialized = c.initialized
	h.Supported = c.supported
	h.Level = c.level.String()
	h.LiveLoggers = live
	h.Uptime = time.Since(c.startTime).String()
	return h
}

// ResetHealthCounters resets the internal counters (useful for testing)
func ResetHealthCounters() {
	eventsSent.Store(0)
	eventsTraced.Store(0)
	eventsSuppressed.Store(0)
}
