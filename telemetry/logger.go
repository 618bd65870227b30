package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/telhub-io/telhub/core"
)

// disposeFlushTimeout bounds the background flush spawned by Dispose.
const disposeFlushTimeout = 5 * time.Second

// LoggerOptions are the immutable per-logger options supplied at
// registration.
type LoggerOptions struct {
	// IgnoreUnhandledErrors opts this logger out of unhandled-error
	// forwarding via Coordinator.OnUnhandledError.
	IgnoreUnhandledErrors bool

	// IgnoreBuiltInCommonProperties suppresses automatic enrichment with
	// the builtin common properties.
	IgnoreBuiltInCommonProperties bool

	// AdditionalCommonProperties is a static mapping mixed into every
	// event, ahead of the builtin common properties.
	AdditionalCommonProperties map[string]string
}

// Logger is the per-emitter logging handle. It owns a sender capability
// until disposed, caches the enablement snapshot the coordinator pushes to
// it, and applies the redaction/enrichment pipeline to every event.
//
// Telemetry must never be load-bearing for emitter correctness: calls made
// while disabled or disposed are silently dropped, never errors.
type Logger struct {
	emitter   EmitterInfo
	qualifier string
	opts      LoggerOptions
	common    map[string]string
	sink      core.TraceSink

	// transmit is false in logging-only mode (telemetry mechanically
	// disabled). Fixed at creation: the hard override cannot change within
	// a process lifetime.
	transmit bool

	mu            sync.Mutex
	sender        core.Sender // nil once disposed
	usageEnabled  bool
	errorsEnabled bool
	subs          map[int]func(usage, errors bool)
	nextSub       int

	// limiter keeps suppressed-event tracing from flooding the sink
	limiter *RateLimiter
}

func newLogger(emitter EmitterInfo, sender core.Sender, opts LoggerOptions, common map[string]string, sink core.TraceSink, details Details, transmit bool, firstParty bool) *Logger {
	return &Logger{
		emitter:       emitter,
		qualifier:     emitter.qualifier(firstParty),
		opts:          opts,
		common:        common,
		sink:          sink,
		transmit:      transmit,
		sender:        sender,
		usageEnabled:  details.Usage,
		errorsEnabled: details.Errors,
		subs:          make(map[int]func(bool, bool)),
		limiter:       NewRateLimiter(1 * time.Second),
	}
}

// IsUsageEnabled reports the cached usage enablement as of the last level
// propagation.
func (l *Logger) IsUsageEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.usageEnabled && l.sender != nil
}

// IsErrorsEnabled reports the cached error enablement as of the last level
// propagation.
func (l *Logger) IsErrorsEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errorsEnabled && l.sender != nil
}

// IsDisposed reports whether the logger has been disposed.
func (l *Logger) IsDisposed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sender == nil
}

// LogUsage logs a usage event. No-op unless usage telemetry is enabled and
// the logger is not disposed.
func (l *Logger) LogUsage(event string, data map[string]interface{}) {
	l.logEvent(event, data, gateUsage)
}

// LogError logs a named error event. The event path is identical to
// LogUsage (qualification, pipeline, conditional send, trace) but gated on
// error enablement.
func (l *Logger) LogError(event string, data map[string]interface{}) {
	l.logEvent(event, data, gateErrors)
}

// LogException forwards a structured error value to the sender's dedicated
// error-reporting entry point. The error itself bypasses the redaction
// pipeline; the error-reporting transport owns its payload. Accompanying
// data still runs through the pipeline.
func (l *Logger) LogException(err error, data map[string]interface{}) {
	if err == nil {
		return
	}

	l.mu.Lock()
	sender := l.sender
	enabled := l.errorsEnabled
	l.mu.Unlock()

	if sender == nil || !enabled {
		l.traceSuppressed("exception")
		return
	}

	d := runPipeline(NewData(data), l.opts.AdditionalCommonProperties, l.builtinProperties())

	if !l.transmit {
		eventsTraced.Add(1)
		l.sink.Trace("telemetry exception (logging only)", map[string]interface{}{
			"emitter": l.emitter.ID,
			"error":   err.Error(),
		})
		return
	}

	sender.SendError(err, d.Properties)
	eventsSent.Add(1)
	l.sink.Trace("telemetry exception", map[string]interface{}{
		"emitter": l.emitter.ID,
		"error":   err.Error(),
	})
}

type gate int

const (
	gateUsage gate = iota
	gateErrors
)

// logEvent is the shared event path for LogUsage and LogError.
func (l *Logger) logEvent(event string, data map[string]interface{}, g gate) {
	l.mu.Lock()
	sender := l.sender
	enabled := l.usageEnabled
	if g == gateErrors {
		enabled = l.errorsEnabled
	}
	l.mu.Unlock()

	if sender == nil || !enabled {
		l.traceSuppressed(event)
		return
	}

	name := l.qualifier + "/" + event
	d := runPipeline(NewData(data), l.opts.AdditionalCommonProperties, l.builtinProperties())

	if !l.transmit {
		// Logging-only mode: telemetry is mechanically disabled but local
		// tracing is still desired. Skip the send, trace the payload that
		// would have been transmitted.
		eventsTraced.Add(1)
		l.traceEvent("telemetry event (logging only)", name, d)
		return
	}

	sender.SendEvent(name, d.Properties, d.Measurements)
	eventsSent.Add(1)
	l.traceEvent("telemetry event", name, d)
}

// builtinProperties returns the common-property mixin, honoring the
// suppression option.
func (l *Logger) builtinProperties() map[string]string {
	if l.opts.IgnoreBuiltInCommonProperties {
		return nil
	}
	return l.common
}

// traceEvent writes the already-redacted payload to the sink for
// diagnostic parity with what was (or would have been) transmitted.
func (l *Logger) traceEvent(msg, name string, d Data) {
	fields := map[string]interface{}{
		"event":   name,
		"emitter": l.emitter.ID,
	}
	for k, v := range d.Properties {
		fields["p."+k] = v
	}
	for k, v := range d.Measurements {
		fields["m."+k] = v
	}
	l.sink.Trace(msg, fields)
}

// traceSuppressed records a policy-suppressed call, rate-limited.
func (l *Logger) traceSuppressed(event string) {
	eventsSuppressed.Add(1)
	if l.limiter.Allow() {
		l.sink.Debug("telemetry event suppressed by policy", map[string]interface{}{
			"event":   event,
			"emitter": l.emitter.ID,
		})
	}
}

// UpdateEnablement replaces the cached enablement snapshot. It is the
// coordinator's entry point; emitters never call it. Subscribers are
// notified synchronously.
func (l *Logger) UpdateEnablement(usage, errors bool) {
	l.mu.Lock()
	l.usageEnabled = usage
	l.errorsEnabled = errors
	subs := make([]func(bool, bool), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	for _, fn := range subs {
		fn(usage, errors)
	}
}

// OnEnablementChanged subscribes to enablement changes for this logger.
// The returned function unsubscribes.
func (l *Logger) OnEnablementChanged(fn func(usage, errors bool)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.subs == nil {
		// Disposed: subscription can never fire
		return func() {}
	}
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
	}
}

// Dispose tears the logger down. It is idempotent: the second and
// subsequent calls are no-ops. The sender reference is cleared
// synchronously so concurrent logging calls observe "disposed"
// immediately; if the sender exposes a flush capability it is invoked in a
// detached goroutine whose outcome is discarded. Logging calls never block
// on flush.
func (l *Logger) Dispose() {
	l.mu.Lock()
	if l.sender == nil {
		l.mu.Unlock()
		return
	}
	sender := l.sender
	l.sender = nil
	l.subs = nil
	l.mu.Unlock()

	if flusher, ok := sender.(core.Flusher); ok {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), disposeFlushTimeout)
			defer cancel()
			_ = flusher.Flush(ctx) // best-effort; outcome never surfaced
		}()
	}
}
