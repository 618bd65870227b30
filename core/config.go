package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// UIKind identifies the surface the host process is rendering to.
type UIKind string

const (
	UIKindDesktop UIKind = "desktop"
	UIKindWeb     UIKind = "web"
)

// Config carries the one-time initialization data the host environment
// supplies at startup: product metadata, stable machine/session identity,
// UI kind and remote-connection identity. It is read-only after
// initialization; the telemetry level itself lives on the coordinator and
// may change at runtime.
type Config struct {
	// Product metadata
	ProductName    string `json:"product_name" yaml:"product_name"`
	ProductVersion string `json:"product_version" yaml:"product_version"`

	// Publisher is the product's own publisher identity. Emitters owned by
	// this publisher get short (first-party) event qualifiers.
	Publisher string `json:"publisher" yaml:"publisher"`

	// TrustedPublishers lists additional publishers treated as first-party.
	TrustedPublishers []string `json:"trusted_publishers" yaml:"trusted_publishers"`

	// Identity seeds. Generated when the host does not supply them.
	MachineID string `json:"machine_id" yaml:"machine_id"`
	SessionID string `json:"session_id" yaml:"session_id"`

	// FirstSessionDate is an RFC 3339 timestamp of the first session ever
	// recorded for this installation. Used for the install-age flag.
	FirstSessionDate string `json:"first_session_date" yaml:"first_session_date"`

	// UIKind of the host surface.
	UIKind UIKind `json:"ui_kind" yaml:"ui_kind"`

	// RemoteAuthority identifies a remote connection, e.g. "ssh-remote+box1".
	// Only its sanitized connection type ever reaches an event.
	RemoteAuthority string `json:"remote_authority" yaml:"remote_authority"`

	// Logging configures the local trace sink.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// LoggingConfig configures the local trace sink.
type LoggingConfig struct {
	// Level is the minimum level written: trace, debug, info, warn, error.
	Level string `json:"level" yaml:"level"`
	// Format is "text" or "json". Empty means auto-detect.
	Format string `json:"format" yaml:"format"`
}

// Option modifies a Config during construction
type Option func(*Config) error

// DefaultConfig returns a Config with sensible defaults.
// Identity fields are freshly generated; the host should override MachineID
// with its stable value when it has one.
func DefaultConfig() *Config {
	return &Config{
		ProductName:      "telhub",
		ProductVersion:   "0.0.0",
		MachineID:        uuid.New().String(),
		SessionID:        uuid.New().String(),
		FirstSessionDate: time.Now().UTC().Format(time.RFC3339),
		UIKind:           UIKindDesktop,
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv applies TELHUB_* environment variables on top of the current
// values. Unset variables leave the existing value in place.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("TELHUB_PRODUCT_NAME"); v != "" {
		c.ProductName = v
	}
	if v := os.Getenv("TELHUB_PRODUCT_VERSION"); v != "" {
		c.ProductVersion = v
	}
	if v := os.Getenv("TELHUB_PUBLISHER"); v != "" {
		c.Publisher = v
	}
	if v := os.Getenv("TELHUB_TRUSTED_PUBLISHERS"); v != "" {
		c.TrustedPublishers = parseStringList(v)
	}
	if v := os.Getenv("TELHUB_MACHINE_ID"); v != "" {
		c.MachineID = v
	}
	if v := os.Getenv("TELHUB_SESSION_ID"); v != "" {
		c.SessionID = v
	}
	if v := os.Getenv("TELHUB_FIRST_SESSION_DATE"); v != "" {
		c.FirstSessionDate = v
	}
	if v := os.Getenv("TELHUB_UI_KIND"); v != "" {
		c.UIKind = UIKind(strings.ToLower(v))
	}
	if v := os.Getenv("TELHUB_REMOTE_AUTHORITY"); v != "" {
		c.RemoteAuthority = v
	}
	if v := os.Getenv("TELHUB_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("TELHUB_LOG_FORMAT"); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
	return nil
}

// LoadFromFile loads configuration from a JSON or YAML file.
// Values present in the file overwrite current values.
func (c *Config) LoadFromFile(path string) error {
	// Clean the path to prevent directory traversal
	cleanPath := filepath.Clean(path)

	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config file extension %s: %w", ext, ErrInvalidConfiguration)
	}

	if !filepath.IsAbs(cleanPath) {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		cleanPath = filepath.Join(wd, cleanPath)
	}

	data, err := os.ReadFile(filepath.Clean(cleanPath)) // nosec G304 -- path is validated
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", ErrInvalidConfiguration)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", ErrInvalidConfiguration)
		}
	}

	return nil
}

// Validate checks if the configuration is valid and returns an error if not.
// Called automatically by NewConfig() but can also be used after manual
// modification.
func (c *Config) Validate() error {
	if c.ProductName == "" {
		return &TelemetryError{
			Op:      "Config.Validate",
			Kind:    "config",
			Message: "product name is required",
			Err:     ErrMissingConfiguration,
		}
	}
	if c.MachineID == "" || c.SessionID == "" {
		return &TelemetryError{
			Op:      "Config.Validate",
			Kind:    "config",
			Message: "machine and session identifiers are required",
			Err:     ErrMissingConfiguration,
		}
	}
	switch c.UIKind {
	case UIKindDesktop, UIKindWeb:
	default:
		return &TelemetryError{
			Op:      "Config.Validate",
			Kind:    "config",
			Message: fmt.Sprintf("invalid ui kind: %q", c.UIKind),
			Err:     ErrInvalidConfiguration,
		}
	}
	switch c.Logging.Level {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return &TelemetryError{
			Op:      "Config.Validate",
			Kind:    "config",
			Message: fmt.Sprintf("invalid log level: %q", c.Logging.Level),
			Err:     ErrInvalidConfiguration,
		}
	}
	return nil
}

// parseStringList parses a comma-separated string into a list
func parseStringList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// WithProduct sets the product name and version
func WithProduct(name, version string) Option {
	return func(c *Config) error {
		if name == "" {
			return NewConfigError("WithProduct", "product name cannot be empty")
		}
		c.ProductName = name
		c.ProductVersion = version
		return nil
	}
}

// WithPublisher sets the product's own publisher identity
func WithPublisher(publisher string) Option {
	return func(c *Config) error {
		c.Publisher = publisher
		return nil
	}
}

// WithTrustedPublishers sets additional publishers treated as first-party
func WithTrustedPublishers(publishers ...string) Option {
	return func(c *Config) error {
		c.TrustedPublishers = publishers
		return nil
	}
}

// WithMachineID sets the stable machine identifier
func WithMachineID(id string) Option {
	return func(c *Config) error {
		if id == "" {
			return NewConfigError("WithMachineID", "machine id cannot be empty")
		}
		c.MachineID = id
		return nil
	}
}

// WithSessionID sets the session identifier for this process
func WithSessionID(id string) Option {
	return func(c *Config) error {
		if id == "" {
			return NewConfigError("WithSessionID", "session id cannot be empty")
		}
		c.SessionID = id
		return nil
	}
}

// WithFirstSessionDate sets the RFC 3339 timestamp of the installation's
// first session
func WithFirstSessionDate(ts string) Option {
	return func(c *Config) error {
		c.FirstSessionDate = ts
		return nil
	}
}

// WithUIKind sets the host surface kind
func WithUIKind(kind UIKind) Option {
	return func(c *Config) error {
		c.UIKind = kind
		return nil
	}
}

// WithRemoteAuthority sets the remote-connection identity
func WithRemoteAuthority(authority string) Option {
	return func(c *Config) error {
		c.RemoteAuthority = authority
		return nil
	}
}

// WithLogLevel sets the trace sink's minimum level
func WithLogLevel(level string) Option {
	return func(c *Config) error {
		c.Logging.Level = strings.ToLower(level)
		return nil
	}
}

// WithLogFormat sets the trace sink's output format ("text" or "json")
func WithLogFormat(format string) Option {
	return func(c *Config) error {
		c.Logging.Format = strings.ToLower(format)
		return nil
	}
}

// WithConfigFile loads configuration from a file before later options apply
func WithConfigFile(path string) Option {
	return func(c *Config) error {
		return c.LoadFromFile(path)
	}
}

// NewConfig builds a Config from defaults, environment variables and the
// given options, in that order, then validates it.
func NewConfig(opts ...Option) (*Config, error) {
	config := DefaultConfig()

	if err := config.LoadFromEnv(); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}
