package telemetry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/telhub-io/telhub/core"
)

var (
	// globalCoordinator holds the process-wide Coordinator instance.
	// atomic.Value gives lock-free reads on the hot path (package-level
	// logging helpers). Written once during Initialize() and on Shutdown().
	globalCoordinator atomic.Value // *Coordinator

	// initOnce ensures Initialize() can only succeed once.
	initOnce sync.Once
)

// Coordinator is the process-wide telemetry gatekeeper. It owns the global
// telemetry level, the registry of all emitter loggers, derives per-logger
// enablement from level and product configuration, propagates level
// changes and routes unhandled emitter errors.
//
// All operations are safe for concurrent use. The registry is mutated only
// by the Coordinator (insert on create, delete on prune); a logger's own
// state is mutated only by itself on Dispose or by the Coordinator on
// enablement propagation.
type Coordinator struct {
	host core.Config
	sink core.TraceSink

	mu          sync.Mutex
	initialized bool
	level       Level
	supported   bool
	product     ProductConfig
	loggers     map[string]*Logger
	startTime   time.Time

	enabledSubs map[int]func(bool)
	configSubs  map[int]func(Details)
	nextSub     int
}

// NewCoordinator creates a coordinator for the given host environment.
// A nil sink disables local tracing.
func NewCoordinator(host core.Config, sink core.TraceSink) *Coordinator {
	if sink == nil {
		sink = &core.NoOpTraceSink{}
	}
	return &Coordinator{
		host:        host,
		sink:        sink,
		level:       LevelNone,
		product:     DefaultProductConfig(),
		loggers:     make(map[string]*Logger),
		startTime:   time.Now(),
		enabledSubs: make(map[int]func(bool)),
		configSubs:  make(map[int]func(Details)),
	}
}

// InitializeLevel performs the one-time set of the process-wide level, the
// hard "is telemetry mechanically possible" override and the product
// configuration. Repeat calls are ignored. A nil product configuration
// defaults to both categories enabled.
func (c *Coordinator) InitializeLevel(level Level, supportsTelemetry bool, pc *ProductConfig) {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return
	}
	c.initialized = true
	c.level = level
	c.supported = supportsTelemetry
	if pc != nil {
		c.product = *pc
	}
	details := Derive(c.level, c.product)
	c.mu.Unlock()

	c.refreshSinkVisibility()
	c.sink.Debug("telemetry level initialized", map[string]interface{}{
		"level":     level.String(),
		"supported": supportsTelemetry,
		"usage":     details.Usage,
		"errors":    details.Errors,
		"crash":     details.Crash,
	})
}

// OnLevelChanged updates the level, keeping the current product
// configuration.
func (c *Coordinator) OnLevelChanged(level Level) {
	c.applyPolicyChange(level, nil)
}

// OnLevelChangedWithProduct updates the level and replaces the product
// configuration in the same propagation. Level-change signals from the
// host may carry both.
func (c *Coordinator) OnLevelChangedWithProduct(level Level, pc *ProductConfig) {
	c.applyPolicyChange(level, pc)
}

// applyPolicyChange recomputes derived enablement, prunes disposed entries
// from the registry, pushes the new enablement to every remaining live
// logger, and only then fires the coordinator-level notifications:
// the enabled-change event iff the usage boolean flipped, then always the
// configuration-change event.
func (c *Coordinator) applyPolicyChange(level Level, pc *ProductConfig) {
	c.mu.Lock()
	before := Derive(c.level, c.product)
	c.level = level
	if pc != nil {
		c.product = *pc
	}
	after := Derive(c.level, c.product)

	// Lazy prune: disposed loggers fall out of the registry here, never
	// eagerly on Dispose. This avoids a back-reference from logger to
	// coordinator.
	pruned := 0
	live := make([]*Logger, 0, len(c.loggers))
	for id, l := range c.loggers {
		if l.IsDisposed() {
			delete(c.loggers, id)
			pruned++
			continue
		}
		live = append(live, l)
	}

	enabledSubs := make([]func(bool), 0, len(c.enabledSubs))
	for _, fn := range c.enabledSubs {
		enabledSubs = append(enabledSubs, fn)
	}
	configSubs := make([]func(Details), 0, len(c.configSubs))
	for _, fn := range c.configSubs {
		configSubs = append(configSubs, fn)
	}
	c.mu.Unlock()

	// Every live logger observes the new enablement before any external
	// observer sees the change notifications.
	for _, l := range live {
		l.UpdateEnablement(after.Usage, after.Errors)
	}

	if before.Usage != after.Usage {
		for _, fn := range enabledSubs {
			fn(after.Usage)
		}
	}
	for _, fn := range configSubs {
		fn(after)
	}

	c.refreshSinkVisibility()
	c.sink.Debug("telemetry level changed", map[string]interface{}{
		"level":   level.String(),
		"usage":   after.Usage,
		"errors":  after.Errors,
		"crash":   after.Crash,
		"loggers": len(live),
		"pruned":  pruned,
	})
}

// GetTelemetryConfiguration reports whether usage-level telemetry is
// currently enabled.
func (c *Coordinator) GetTelemetryConfiguration() bool {
	return c.GetTelemetryDetails().Usage
}

// GetTelemetryDetails returns the full derived enablement snapshot for the
// current level and product configuration.
func (c *Coordinator) GetTelemetryDetails() Details {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Derive(c.level, c.product)
}

// CreateLogger validates the sender capability, constructs a logger with
// the current enablement snapshot and the emitter's common properties, and
// registers it under the emitter identity. A later registration for the
// same identity overwrites the registry entry.
func (c *Coordinator) CreateLogger(emitter EmitterInfo, sender core.Sender, opts *LoggerOptions) (*Logger, error) {
	if err := ValidateSender(sender); err != nil {
		return nil, &core.TelemetryError{
			Op:   "coordinator.CreateLogger",
			Kind: "sender",
			ID:   emitter.ID,
			Err:  err,
		}
	}

	options := LoggerOptions{}
	if opts != nil {
		options = *opts
	}

	common := buildCommonProperties(c.host, emitter)

	c.mu.Lock()
	details := Derive(c.level, c.product)
	transmit := c.supported
	logger := newLogger(emitter, sender, options, common, c.sink, details, transmit, c.isFirstParty(emitter.Publisher))
	c.loggers[emitter.ID] = logger
	c.mu.Unlock()

	c.sink.Debug("telemetry logger registered", map[string]interface{}{
		"emitter": emitter.ID,
		"usage":   details.Usage,
		"errors":  details.Errors,
	})
	return logger, nil
}

// OnUnhandledError routes an uncaught emitter error through the owning
// logger's exception path. It returns false when no live logger is
// registered for the identity or the logger opted out of forwarding, so
// the host can surface the error through another channel instead.
func (c *Coordinator) OnUnhandledError(emitterID string, err error) bool {
	if err == nil {
		return false
	}

	c.mu.Lock()
	logger, ok := c.loggers[emitterID]
	if ok && logger.IsDisposed() {
		// Stale entry: prune it on the way out.
		delete(c.loggers, emitterID)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	if logger.opts.IgnoreUnhandledErrors {
		return false
	}

	logger.LogException(err, nil)
	return true
}

// OnDidChangeTelemetryEnabled subscribes to changes of the scalar
// usage-enabled boolean. Fires synchronously from within level changes,
// before the configuration-change notification and only when the boolean
// actually flips. The returned function unsubscribes.
func (c *Coordinator) OnDidChangeTelemetryEnabled(fn func(enabled bool)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.enabledSubs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.enabledSubs, id)
	}
}

// OnDidChangeTelemetryConfiguration subscribes to the full enablement
// snapshot. Fires synchronously on every level change, after all logger
// pushes for that change have completed.
func (c *Coordinator) OnDidChangeTelemetryConfiguration(fn func(details Details)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.configSubs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.configSubs, id)
	}
}

// isFirstParty reports whether the publisher gets short event qualifiers.
// Caller holds c.mu or is operating on immutable host data.
func (c *Coordinator) isFirstParty(publisher string) bool {
	if publisher == "" {
		return false
	}
	if publisher == c.host.Publisher {
		return true
	}
	for _, p := range c.host.TrustedPublishers {
		if publisher == p {
			return true
		}
	}
	return false
}

// refreshSinkVisibility shows per-event trace output only when telemetry
// is mechanically possible and the sink runs at trace verbosity.
func (c *Coordinator) refreshSinkVisibility() {
	vc, ok := c.sink.(core.VisibilityController)
	if !ok {
		return
	}
	c.mu.Lock()
	supported := c.supported
	c.mu.Unlock()
	vc.SetVisible(supported && vc.TraceEnabled())
}

// disposeAll disposes every registered logger. Used during shutdown.
func (c *Coordinator) disposeAll() {
	c.mu.Lock()
	loggers := make([]*Logger, 0, len(c.loggers))
	for _, l := range c.loggers {
		loggers = append(loggers, l)
	}
	c.loggers = make(map[string]*Logger)
	c.mu.Unlock()

	for _, l := range loggers {
		l.Dispose()
	}
}

// Initialize activates the process-global coordinator with the given host
// environment and policy. It must be called once from main() before any
// package-level helpers are used. It is safe to call multiple times - only
// the first call takes effect.
func Initialize(host core.Config, policy Config) error {
	var initErr error
	initOnce.Do(func() {
		if err := host.Validate(); err != nil {
			initErr = err
			return
		}
		sink := core.NewTraceSink("telemetry", host.Logging)
		c := NewCoordinator(host, sink)
		c.InitializeLevel(policy.Level, policy.SupportsTelemetry, &policy.Product)
		globalCoordinator.Store(c)

		sink.Info("telemetry coordinator initialized", map[string]interface{}{
			"product":   host.ProductName,
			"level":     policy.Level.String(),
			"supported": policy.SupportsTelemetry,
		})
	})
	return initErr
}

// Default returns the process-global coordinator, or nil when Initialize
// has not been called (or Shutdown has run).
func Default() *Coordinator {
	c := globalCoordinator.Load()
	if c == nil {
		return nil
	}
	coordinator, ok := c.(*Coordinator)
	if !ok || coordinator == nil {
		return nil
	}
	return coordinator
}

// Shutdown disposes every registered logger and clears the process-global
// coordinator so package-level helpers become no-ops. Sender flushes run
// in the background; Shutdown waits only for the context's grace period.
func Shutdown(ctx context.Context) error {
	c := Default()
	if c == nil {
		return nil
	}

	c.sink.Info("telemetry coordinator shutting down", map[string]interface{}{
		"events_sent":       eventsSent.Load(),
		"events_suppressed": eventsSuppressed.Load(),
		"uptime_ms":         time.Since(c.startTime).Milliseconds(),
	})

	c.disposeAll()
	globalCoordinator.Store((*Coordinator)(nil))

	// Give detached flushes a chance to finish within the caller's grace
	// period without tracking them individually.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(10 * time.Millisecond):
		return nil
	}
}
