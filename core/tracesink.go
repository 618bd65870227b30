package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProductionTraceSink is the built-in TraceSink implementation.
// It writes leveled, optionally structured output for telemetry
// diagnostics.
//
// Design:
//   - Self-contained: no dependency on the gatekeeper packages
//   - Production-ready: JSON format in K8s, text for local dev
//   - Thread-safe: safe for concurrent access
//
// Per-event trace output (the Trace level) is additionally gated by a
// visibility switch that the coordinator drives: events are traced only
// when telemetry is mechanically possible and the sink runs at trace
// verbosity.
type ProductionTraceSink struct {
	level     string
	component string
	format    string
	output    io.Writer
	visible   bool
	mu        sync.RWMutex
}

// NewTraceSink creates a trace sink for telemetry diagnostics.
// Configuration priority:
//  1. Explicit LoggingConfig values (highest)
//  2. Environment variables (TELHUB_LOG_LEVEL, TELHUB_LOG_FORMAT, TELHUB_DEBUG)
//  3. Auto-detection (K8s environment)
//  4. Defaults (lowest)
func NewTraceSink(component string, cfg LoggingConfig) *ProductionTraceSink {
	level := cfg.Level
	if level == "" {
		level = os.Getenv("TELHUB_LOG_LEVEL")
	}
	if level == "" {
		level = "info"
	}
	if os.Getenv("TELHUB_DEBUG") == "true" {
		level = "trace"
	}

	// Auto-detect Kubernetes environment for structured logging
	format := cfg.Format
	if format == "" {
		if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
			format = "json" // JSON in K8s for log aggregation
		} else {
			format = "text"
		}
	}
	if envFormat := os.Getenv("TELHUB_LOG_FORMAT"); envFormat != "" {
		format = envFormat
	}

	return &ProductionTraceSink{
		level:     strings.ToLower(level),
		component: component,
		format:    strings.ToLower(format),
		output:    os.Stderr,
	}
}

// Trace logs per-event diagnostic output. Unlike the other levels it is
// also gated by the visibility switch.
func (s *ProductionTraceSink) Trace(msg string, fields map[string]interface{}) {
	s.mu.RLock()
	visible := s.visible
	s.mu.RUnlock()
	if !visible {
		return
	}
	s.log("trace", msg, fields)
}

// Debug logs debug messages
func (s *ProductionTraceSink) Debug(msg string, fields map[string]interface{}) {
	s.log("debug", msg, fields)
}

// Info logs informational messages
func (s *ProductionTraceSink) Info(msg string, fields map[string]interface{}) {
	s.log("info", msg, fields)
}

// Warn logs warning messages
func (s *ProductionTraceSink) Warn(msg string, fields map[string]interface{}) {
	s.log("warn", msg, fields)
}

// Error logs error messages
func (s *ProductionTraceSink) Error(msg string, fields map[string]interface{}) {
	s.log("error", msg, fields)
}

// SetVisible toggles per-event trace output
func (s *ProductionTraceSink) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = visible
}

// TraceEnabled reports whether the sink runs at trace verbosity
func (s *ProductionTraceSink) TraceEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.level == "trace"
}

// SetLevel dynamically updates the minimum level
func (s *ProductionTraceSink) SetLevel(level string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = strings.ToLower(level)
}

// SetOutput changes the output writer (useful for testing)
func (s *ProductionTraceSink) SetOutput(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = w
}

// log is the core logging implementation
func (s *ProductionTraceSink) log(level, msg string, fields map[string]interface{}) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.shouldLog(level) {
		return
	}

	timestamp := time.Now().Format(time.RFC3339)

	if s.format == "json" {
		s.logJSON(timestamp, level, msg, fields)
	} else {
		s.logText(timestamp, level, msg, fields)
	}
}

// logJSON outputs structured JSON logs
func (s *ProductionTraceSink) logJSON(timestamp, level, msg string, fields map[string]interface{}) {
	entry := map[string]interface{}{
		"timestamp": timestamp,
		"level":     level,
		"component": s.component,
		"message":   msg,
	}

	for k, v := range fields {
		// Avoid overwriting core fields
		if k != "timestamp" && k != "level" && k != "component" && k != "message" {
			entry[k] = v
		}
	}

	if data, err := json.Marshal(entry); err == nil {
		fmt.Fprintln(s.output, string(data))
	}
}

// logText outputs human-readable text logs
func (s *ProductionTraceSink) logText(timestamp, level, msg string, fields map[string]interface{}) {
	var fieldStr strings.Builder
	if len(fields) > 0 {
		fieldStr.WriteString(" ")
		// Common fields first for readability
		if event, ok := fields["event"]; ok {
			fieldStr.WriteString(fmt.Sprintf("event=%v ", event))
		}
		if emitter, ok := fields["emitter"]; ok {
			fieldStr.WriteString(fmt.Sprintf("emitter=%v ", emitter))
		}
		if err, ok := fields["error"]; ok {
			fieldStr.WriteString(fmt.Sprintf("error=%q ", fmt.Sprintf("%v", err)))
		}
		for k, v := range fields {
			if k == "event" || k == "emitter" || k == "error" {
				continue
			}
			fieldStr.WriteString(fmt.Sprintf("%s=%v ", k, v))
		}
	}

	fmt.Fprintf(s.output, "%s [%s] [%s] %s%s\n",
		timestamp, strings.ToUpper(level), s.component, msg, fieldStr.String())
}

// shouldLog determines if a log level should be output
func (s *ProductionTraceSink) shouldLog(level string) bool {
	levels := map[string]int{
		"trace": 0,
		"debug": 1,
		"info":  2,
		"warn":  3,
		"error": 4,
	}

	currentLevel, ok1 := levels[s.level]
	messageLevel, ok2 := levels[level]

	// Default to logging if levels are unknown
	if !ok1 || !ok2 {
		return true
	}

	return messageLevel >= currentLevel
}

// Compile-time capability checks
var (
	_ TraceSink            = (*ProductionTraceSink)(nil)
	_ VisibilityController = (*ProductionTraceSink)(nil)
)
