package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "telhub", cfg.ProductName)
	assert.Equal(t, UIKindDesktop, cfg.UIKind)
	assert.NotEmpty(t, cfg.MachineID)
	assert.NotEmpty(t, cfg.SessionID)
	assert.NotEmpty(t, cfg.FirstSessionDate)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfigWithOptions(t *testing.T) {
	cfg, err := NewConfig(
		WithProduct("editor", "2.1.0"),
		WithPublisher("telhub-io"),
		WithTrustedPublishers("partner-co", "other-co"),
		WithMachineID("m-1"),
		WithSessionID("s-1"),
		WithUIKind(UIKindWeb),
		WithRemoteAuthority("ssh-remote+box1"),
		WithLogLevel("DEBUG"),
	)
	require.NoError(t, err)

	assert.Equal(t, "editor", cfg.ProductName)
	assert.Equal(t, "2.1.0", cfg.ProductVersion)
	assert.Equal(t, "telhub-io", cfg.Publisher)
	assert.Equal(t, []string{"partner-co", "other-co"}, cfg.TrustedPublishers)
	assert.Equal(t, "m-1", cfg.MachineID)
	assert.Equal(t, UIKindWeb, cfg.UIKind)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestOptionValidation(t *testing.T) {
	_, err := NewConfig(WithProduct("", "1.0.0"))
	assert.Error(t, err)

	_, err = NewConfig(WithMachineID(""))
	assert.Error(t, err)

	_, err = NewConfig(WithSessionID(""))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing product name", func(c *Config) { c.ProductName = "" }},
		{"missing machine id", func(c *Config) { c.MachineID = "" }},
		{"missing session id", func(c *Config) { c.SessionID = "" }},
		{"invalid ui kind", func(c *Config) { c.UIKind = "hologram" }},
		{"invalid log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var terr *TelemetryError
			assert.True(t, errors.As(err, &terr))
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	envVars := map[string]string{
		"TELHUB_PRODUCT_NAME":       "env-product",
		"TELHUB_PUBLISHER":          "env-pub",
		"TELHUB_TRUSTED_PUBLISHERS": "a, b ,c",
		"TELHUB_UI_KIND":            "WEB",
		"TELHUB_LOG_LEVEL":          "TRACE",
	}
	for k, v := range envVars {
		require.NoError(t, os.Setenv(k, v))
	}
	defer func() {
		for k := range envVars {
			_ = os.Unsetenv(k)
		}
	}()

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "env-product", cfg.ProductName)
	assert.Equal(t, "env-pub", cfg.Publisher)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.TrustedPublishers)
	assert.Equal(t, UIKindWeb, cfg.UIKind)
	assert.Equal(t, "trace", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "config.json")
		content := `{"product_name": "from-json", "publisher": "json-pub"}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromFile(path))
		assert.Equal(t, "from-json", cfg.ProductName)
		assert.Equal(t, "json-pub", cfg.Publisher)
	})

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "config.yaml")
		content := "product_name: from-yaml\ntrusted_publishers:\n  - partner-co\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromFile(path))
		assert.Equal(t, "from-yaml", cfg.ProductName)
		assert.Equal(t, []string{"partner-co"}, cfg.TrustedPublishers)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.LoadFromFile(filepath.Join(dir, "config.toml"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.Error(t, cfg.LoadFromFile(filepath.Join(dir, "missing.json")))
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{nope"), 0600))

		cfg := DefaultConfig()
		err := cfg.LoadFromFile(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	})
}

func TestTelemetryErrorFormatting(t *testing.T) {
	err := NewSenderError("coordinator.CreateLogger", "pub.ext", "sender is nil")
	assert.Contains(t, err.Error(), "coordinator.CreateLogger")
	assert.Contains(t, err.Error(), "pub.ext")
	assert.True(t, errors.Is(err, ErrInvalidSender))

	bare := &TelemetryError{Kind: "config"}
	assert.Equal(t, "config error", bare.Error())
}
