package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/telhub-io/telhub/core"
	"github.com/telhub-io/telhub/telemetry"
)

func main() {
	// Describe the host process
	host, err := core.NewConfig(
		core.WithProduct("telhub-example", "1.0.0"),
		core.WithPublisher("telhub-io"),
	)
	if err != nil {
		log.Fatal(err)
	}

	// Pick a policy: production transmits, development only traces
	policy := telemetry.UseProfile(telemetry.ProfileDevelopment)
	if os.Getenv("TELHUB_COLLECTOR") != "" {
		policy = telemetry.UseProfile(telemetry.ProfileProduction)
	}

	if err := telemetry.Initialize(*host, policy); err != nil {
		log.Fatal(err)
	}

	coord := telemetry.Default()

	// Wire a sender. The OTel sender falls back to stdout export when
	// no collector endpoint is configured.
	sender, err := telemetry.NewOTelSender(telemetry.OTelSenderConfig{
		ServiceName:    host.ProductName,
		ServiceVersion: host.ProductVersion,
		Endpoint:       os.Getenv("TELHUB_COLLECTOR"),
	})
	if err != nil {
		log.Fatal(err)
	}

	logger, err := coord.CreateLogger(
		telemetry.EmitterInfo{
			ID:        "telhub-io.example",
			Name:      "example",
			Publisher: "telhub-io",
			Version:   "1.0.0",
		},
		sender,
		nil,
	)
	if err != nil {
		log.Fatal(err)
	}

	logger.LogUsage("startup", map[string]interface{}{
		"mode":     "example",
		"warmupMs": 12.5,
	})
	logger.LogError("cache.miss", map[string]interface{}{
		"key": "sales/2026-08",
	})
	logger.LogException(errors.New("simulated failure"), map[string]interface{}{
		"phase": "demo",
	})

	log.Printf("health: %+v", telemetry.GetHealth())

	logger.Dispose()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sender.Shutdown(ctx); err != nil {
		log.Printf("sender shutdown: %v", err)
	}
	if err := telemetry.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
