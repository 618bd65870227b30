package telemetry

// ProductConfig is the static per-deployment toggle, independent of the
// runtime Level. A category disabled here stays disabled regardless of how
// permissive the Level is.
type ProductConfig struct {
	Usage bool `json:"usage" yaml:"usage"`
	Error bool `json:"error" yaml:"error"`
}

// DefaultProductConfig enables both categories, matching a deployment that
// does not ship a product-level override.
func DefaultProductConfig() ProductConfig {
	return ProductConfig{Usage: true, Error: true}
}

// Details is the derived enablement snapshot for the current Level and
// ProductConfig.
type Details struct {
	Usage  bool `json:"usage"`
	Errors bool `json:"errors"`
	Crash  bool `json:"crash"`
}

// Derive computes enablement from the level and product configuration.
// It is a pure function; the coordinator recomputes it on every level
// change and nothing else ever stores it as independent state.
func Derive(level Level, pc ProductConfig) Details {
	return Details{
		Usage:  pc.Usage && level >= LevelUsage,
		Errors: pc.Error && level >= LevelError,
		Crash:  level >= LevelCrash,
	}
}

// Config is the coordinator's policy configuration: the initial level, the
// hard "is telemetry mechanically possible" override and the product
// toggles.
type Config struct {
	Level             Level
	SupportsTelemetry bool
	Product           ProductConfig
}

// Profile represents a pre-configured policy profile
type Profile string

const (
	ProfileDevelopment Profile = "development"
	ProfileProduction  Profile = "production"
)

// Profiles contains pre-configured policy profiles
var Profiles = map[Profile]Config{
	ProfileDevelopment: {
		Level:             LevelUsage,
		SupportsTelemetry: false, // logging-only: trace locally, never transmit
		Product:           ProductConfig{Usage: true, Error: true},
	},
	ProfileProduction: {
		Level:             LevelUsage,
		SupportsTelemetry: true,
		Product:           ProductConfig{Usage: true, Error: true},
	},
}

// UseProfile returns a policy configuration based on a profile name
func UseProfile(profile Profile) Config {
	if config, ok := Profiles[profile]; ok {
		return config
	}
	// Default to development profile
	return Profiles[ProfileDevelopment]
}
