package telemetry

import (
	"context"
	"sync"

	"github.com/telhub-io/telhub/core"
)

// recordedEvent captures one SendEvent call
type recordedEvent struct {
	Name         string
	Properties   map[string]string
	Measurements map[string]float64
}

// recordedError captures one SendError call
type recordedError struct {
	Err        error
	Properties map[string]string
}

// recordingSender is a thread-safe test double for core.Sender that also
// advertises the flush capability.
type recordingSender struct {
	mu      sync.Mutex
	events  []recordedEvent
	errors  []recordedError
	flushes int
}

func newRecordingSender() *recordingSender {
	return &recordingSender{}
}

func (r *recordingSender) SendEvent(name string, properties map[string]string, measurements map[string]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Name: name, Properties: properties, Measurements: measurements})
}

func (r *recordingSender) SendError(err error, properties map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, recordedError{Err: err, Properties: properties})
}

func (r *recordingSender) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes++
	return nil
}

func (r *recordingSender) Events() []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recordingSender) Errors() []recordedError {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedError, len(r.errors))
	copy(out, r.errors)
	return out
}

func (r *recordingSender) Flushes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushes
}

// plainSender implements only core.Sender, without the flush capability
type plainSender struct {
	mu     sync.Mutex
	events int
}

func (p *plainSender) SendEvent(name string, properties map[string]string, measurements map[string]float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events++
}

func (p *plainSender) SendError(err error, properties map[string]string) {}

var (
	_ core.Sender  = (*recordingSender)(nil)
	_ core.Flusher = (*recordingSender)(nil)
)

// testHost returns a fixed host configuration for coordinator tests
func testHost() core.Config {
	return core.Config{
		ProductName:       "telhub-test",
		ProductVersion:    "1.2.3",
		Publisher:         "telhub-io",
		TrustedPublishers: []string{"partner-co"},
		MachineID:         "machine-1",
		SessionID:         "session-1",
		FirstSessionDate:  "2020-01-01T00:00:00Z",
		UIKind:            core.UIKindDesktop,
	}
}
