package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/telhub-io/telhub/core"
)

// RedisSenderConfig configures the Redis stream sender
type RedisSenderConfig struct {
	// URL is a redis:// connection string
	URL string
	// Namespace prefixes the stream key. Defaults to "telhub".
	Namespace string
	// Stream names the stream within the namespace. Defaults to "events".
	Stream string
	// MaxLen caps the stream length (approximate trim). Defaults to 10000.
	MaxLen int64
}

// RedisSender implements core.Sender by appending events to a capped Redis
// stream. Downstream consumers read the stream with consumer groups; the
// approximate trim keeps memory bounded when nobody is consuming.
type RedisSender struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisSender creates a Redis stream sender and verifies the connection
func NewRedisSender(cfg RedisSenderConfig) (*RedisSender, error) {
	if cfg.URL == "" {
		return nil, core.NewConfigError("NewRedisSender", "redis URL is required")
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "telhub"
	}
	if cfg.Stream == "" {
		cfg.Stream = "events"
	}
	if cfg.MaxLen <= 0 {
		cfg.MaxLen = 10000
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", core.ErrInvalidConfiguration)
	}

	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 5 * time.Second
	opt.WriteTimeout = 5 * time.Second
	opt.MaxRetries = 3

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSender{
		client: client,
		stream: cfg.Namespace + ":" + cfg.Stream,
		maxLen: cfg.MaxLen,
	}, nil
}

// SendEvent appends a telemetry event to the stream
func (s *RedisSender) SendEvent(name string, properties map[string]string, measurements map[string]float64) {
	values := make(map[string]interface{}, len(properties)+len(measurements)+2)
	values["event"] = name
	values["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	for k, v := range properties {
		values["p:"+k] = v
	}
	for k, v := range measurements {
		values["m:"+k] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	s.add(values)
}

// SendError appends a structured error report to the stream
func (s *RedisSender) SendError(err error, properties map[string]string) {
	if err == nil {
		return
	}
	values := make(map[string]interface{}, len(properties)+3)
	values["event"] = "unhandlederror"
	values["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	values["error"] = err.Error()
	for k, v := range properties {
		values["p:"+k] = v
	}
	s.add(values)
}

func (s *RedisSender) add(values map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Best effort. A failed append is dropped; the sender never blocks
	// the caller on Redis availability.
	s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: values,
	})
}

// Flush verifies the connection is still live. XAdd is synchronous, so
// there is no local buffer to drain.
func (s *RedisSender) Flush(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool
func (s *RedisSender) Close() error {
	return s.client.Close()
}

var (
	_ core.Sender  = (*RedisSender)(nil)
	_ core.Flusher = (*RedisSender)(nil)
)
