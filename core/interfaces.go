package core

import "context"

// Sender is the transport capability that ships telemetry events
// off-process. Implementations own batching, retries and delivery; the
// gatekeeper never inspects or retries a send.
type Sender interface {
	// SendEvent transmits a named usage/error event with its redacted
	// properties and numeric measurements.
	SendEvent(name string, properties map[string]string, measurements map[string]float64)
	// SendError transmits a structured error value to the dedicated
	// error-reporting channel. The error is forwarded as-is.
	SendError(err error, properties map[string]string)
}

// Flusher is an optional capability of a Sender. When a sender implements
// it, logger disposal triggers a best-effort background flush.
type Flusher interface {
	Flush(ctx context.Context) error
}

// TraceSink receives local diagnostic output about telemetry activity.
// Event payloads written to the sink are the same redacted payloads that
// are (or would be) transmitted.
type TraceSink interface {
	Trace(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// VisibilityController is an optional capability of a TraceSink. The
// coordinator uses it to show or hide per-event trace output depending on
// whether telemetry is mechanically possible and the sink is at trace
// verbosity.
type VisibilityController interface {
	SetVisible(visible bool)
	TraceEnabled() bool
}

// Default no-op implementations

// NoOpSender discards all events. Useful as a placeholder in tests and in
// logging-only deployments.
type NoOpSender struct{}

func (n *NoOpSender) SendEvent(name string, properties map[string]string, measurements map[string]float64) {
}
func (n *NoOpSender) SendError(err error, properties map[string]string) {}

// NoOpTraceSink discards all trace output.
type NoOpTraceSink struct{}

func (n *NoOpTraceSink) Trace(msg string, fields map[string]interface{}) {}
func (n *NoOpTraceSink) Debug(msg string, fields map[string]interface{}) {}
func (n *NoOpTraceSink) Info(msg string, fields map[string]interface{})  {}
func (n *NoOpTraceSink) Warn(msg string, fields map[string]interface{})  {}
func (n *NoOpTraceSink) Error(msg string, fields map[string]interface{}) {}
