package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/telhub-io/telhub/core"
)

// wireEvent is the JSON shape posted to the collector endpoint
type wireEvent struct {
	Name         string             `json:"name"`
	Timestamp    time.Time          `json:"timestamp"`
	Properties   map[string]string  `json:"properties,omitempty"`
	Measurements map[string]float64 `json:"measurements,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// HTTPSenderConfig configures the HTTP batch sender
type HTTPSenderConfig struct {
	// Endpoint receives POSTed JSON event batches
	Endpoint string
	// BatchSize triggers an automatic send when the buffer reaches it.
	// Defaults to 50.
	BatchSize int
	// Timeout bounds each POST. Defaults to 10 seconds.
	Timeout time.Duration
	// Client overrides the default traced HTTP client
	Client *http.Client
}

// HTTPSender implements core.Sender by buffering events and POSTing them
// as JSON batches to a collector endpoint. Outgoing requests carry trace
// context so collector-side spans join the caller's trace.
type HTTPSender struct {
	endpoint  string
	batchSize int
	client    *http.Client

	mu     sync.Mutex
	buffer []wireEvent
	closed bool
}

// NewHTTPSender creates an HTTP batch sender
func NewHTTPSender(cfg HTTPSenderConfig) (*HTTPSender, error) {
	if cfg.Endpoint == "" {
		return nil, core.NewConfigError("NewHTTPSender", "endpoint is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &HTTPSender{
		endpoint:  cfg.Endpoint,
		batchSize: cfg.BatchSize,
		client:    client,
		buffer:    make([]wireEvent, 0, cfg.BatchSize),
	}, nil
}

// SendEvent buffers a telemetry event, posting the batch once full
func (s *HTTPSender) SendEvent(name string, properties map[string]string, measurements map[string]float64) {
	s.enqueue(wireEvent{
		Name:         name,
		Timestamp:    time.Now().UTC(),
		Properties:   properties,
		Measurements: measurements,
	})
}

// SendError buffers a structured error report
func (s *HTTPSender) SendError(err error, properties map[string]string) {
	if err == nil {
		return
	}
	s.enqueue(wireEvent{
		Name:       "unhandlederror",
		Timestamp:  time.Now().UTC(),
		Properties: properties,
		Error:      err.Error(),
	})
}

func (s *HTTPSender) enqueue(ev wireEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.buffer = append(s.buffer, ev)
	var batch []wireEvent
	if len(s.buffer) >= s.batchSize {
		batch = s.buffer
		s.buffer = make([]wireEvent, 0, s.batchSize)
	}
	s.mu.Unlock()

	if batch != nil {
		// Best effort. Events that fail to post are dropped rather
		// than blocking or growing the buffer without bound.
		_ = s.post(context.Background(), batch)
	}
}

// Flush posts any buffered events immediately
func (s *HTTPSender) Flush(ctx context.Context) error {
	s.mu.Lock()
	batch := s.buffer
	s.buffer = make([]wireEvent, 0, s.batchSize)
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	return s.post(ctx, batch)
}

// Close flushes remaining events and rejects further sends
func (s *HTTPSender) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	batch := s.buffer
	s.buffer = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	return s.post(ctx, batch)
}

func (s *HTTPSender) post(ctx context.Context, batch []wireEvent) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("collector rejected batch: status %d", resp.StatusCode)
	}
	return nil
}

var (
	_ core.Sender  = (*HTTPSender)(nil)
	_ core.Flusher = (*HTTPSender)(nil)
)
