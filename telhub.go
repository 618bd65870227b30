// Package telhub provides a lightweight meta-module that re-exports from submodules
// This is the main entry point for the telhub telemetry library
// Users should import specific packages based on their needs:
//   - github.com/telhub-io/telhub/core - Host configuration and sender interfaces
//   - github.com/telhub-io/telhub/telemetry - The coordinator, loggers, and senders
package telhub

import (
	"github.com/telhub-io/telhub/core"
	"github.com/telhub-io/telhub/telemetry"
)

// Re-export core types
type (
	// Configuration types
	Config        = core.Config
	LoggingConfig = core.LoggingConfig
	Option        = core.Option
	UIKind        = core.UIKind

	// Interfaces
	Sender    = core.Sender
	Flusher   = core.Flusher
	TraceSink = core.TraceSink

	// Telemetry types
	Level         = telemetry.Level
	ProductConfig = telemetry.ProductConfig
	Details       = telemetry.Details
	Coordinator   = telemetry.Coordinator
	Logger        = telemetry.Logger
	LoggerOptions = telemetry.LoggerOptions
	EmitterInfo   = telemetry.EmitterInfo
	Data          = telemetry.Data
	Health        = telemetry.Health
	Profile       = telemetry.Profile
)

// Re-export level constants
const (
	LevelNone  = telemetry.LevelNone
	LevelCrash = telemetry.LevelCrash
	LevelError = telemetry.LevelError
	LevelUsage = telemetry.LevelUsage

	UIKindDesktop = core.UIKindDesktop
	UIKindWeb     = core.UIKindWeb

	ProfileDevelopment = telemetry.ProfileDevelopment
	ProfileProduction  = telemetry.ProfileProduction
)

// Re-export core functions
var (
	NewConfig     = core.NewConfig
	DefaultConfig = core.DefaultConfig
	NewTraceSink  = core.NewTraceSink

	// Configuration options
	WithProduct           = core.WithProduct
	WithPublisher         = core.WithPublisher
	WithTrustedPublishers = core.WithTrustedPublishers
	WithMachineID         = core.WithMachineID
	WithSessionID         = core.WithSessionID
	WithFirstSessionDate  = core.WithFirstSessionDate
	WithUIKind            = core.WithUIKind
	WithRemoteAuthority   = core.WithRemoteAuthority
	WithLogLevel          = core.WithLogLevel
	WithLogFormat         = core.WithLogFormat
	WithConfigFile        = core.WithConfigFile
)

// Re-export telemetry functions
var (
	Initialize     = telemetry.Initialize
	Default        = telemetry.Default
	Shutdown       = telemetry.Shutdown
	GetHealth      = telemetry.GetHealth
	ParseLevel     = telemetry.ParseLevel
	Derive         = telemetry.Derive
	UseProfile     = telemetry.UseProfile
	NewData        = telemetry.NewData
	NewCoordinator = telemetry.NewCoordinator
	NewOTelSender  = telemetry.NewOTelSender
	NewHTTPSender  = telemetry.NewHTTPSender
	NewRedisSender = telemetry.NewRedisSender
	ValidateSender = telemetry.ValidateSender
)
