/*
Package telemetry implements a per-process telemetry gatekeeper and
multiplexer. It mediates between one global, runtime-changeable telemetry
policy and many independently registered emitters (extensions or plugins),
each of which owns a Logger handle.

Architecture Overview:

1. Coordinator - process-wide owner of the telemetry level, the logger
registry and policy propagation
2. Logger - per-emitter handle enforcing the consent contract and the
redaction/enrichment pipeline
3. Sender adapters - transport capabilities (OTel, HTTP, Redis) that ship
the already-gated, already-redacted events off-process

Consent Model:

The global Level (none < crash < error < usage) combines with the static
per-deployment ProductConfig into a derived enablement snapshot. The
coordinator pushes that snapshot to every live logger on each level
change, so emitters never poll. A "supports telemetry" hard override maps
to logging-only mode: events are still traced locally but never
transmitted.

Thread Safety:

All public functions are safe for concurrent use:
  - atomic.Value for lock-free reads of the global coordinator
  - sync.Once for one-time initialization
  - a single mutex per coordinator/logger for registry and cache state

Design Principles:

1. Fail-Safe - telemetry is never load-bearing: disabled, disposed or
uninitialized calls are silent no-ops
2. Redact Before Anything Leaves - every property value passes the
redaction battery before it reaches a sender or the trace sink
3. One Update Path - logger enablement is written only by coordinator
propagation, so a logger is never more permissive than the current policy

Usage:

Initialize once in main:

	host, _ := core.NewConfig(core.WithProduct("myapp", "1.4.2"))
	telemetry.Initialize(*host, telemetry.UseProfile(telemetry.ProfileProduction))
	defer telemetry.Shutdown(context.Background())

Register a logger per emitter:

	sender, _ := telemetry.NewHTTPSender(telemetry.HTTPSenderConfig{Endpoint: url})
	logger, err := telemetry.Default().CreateLogger(
		telemetry.EmitterInfo{ID: "acme.tools", Name: "tools", Publisher: "acme", Version: "2.0.1"},
		sender, nil)

	logger.LogUsage("activated", map[string]interface{}{"duration_ms": 41})
	defer logger.Dispose()
*/
package telemetry
