package telemetry

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/telhub-io/telhub/core"
)

// newAppInstallWindow is how long after the first session an installation
// counts as new.
const newAppInstallWindow = 24 * time.Hour

// EmitterInfo identifies a registered emitter (an extension or plugin that
// owns a telemetry logger).
type EmitterInfo struct {
	// ID is the stable registration key, conventionally "publisher.name".
	ID        string
	Name      string
	Publisher string
	Version   string
}

// qualifier returns the prefix prepended to every event name this emitter
// logs. First-party emitters keep the short name so their event names stay
// stable; everything else is qualified with the full identity.
func (e EmitterInfo) qualifier(firstParty bool) string {
	if firstParty && e.Name != "" {
		return e.Name
	}
	if e.ID != "" {
		return e.ID
	}
	return e.Name
}

// buildCommonProperties computes the immutable contextual property set for
// one registering emitter. It is built exactly once at logger creation and
// never mutated afterwards.
func buildCommonProperties(host core.Config, emitter EmitterInfo) map[string]string {
	sessionID := host.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	props := map[string]string{
		"common.emittername":      emitter.Name,
		"common.emitterversion":   emitter.Version,
		"common.emitterpublisher": emitter.Publisher,
		"common.machineid":        host.MachineID,
		"common.sessionid":        sessionID,
		"common.product":          host.ProductName,
		"common.productversion":   host.ProductVersion,
		"common.uikind":           string(host.UIKind),
		"common.isnewappinstall":  boolString(isNewAppInstall(host.FirstSessionDate, time.Now())),
	}
	if host.RemoteAuthority != "" {
		props["common.remotename"] = sanitizeRemoteAuthority(host.RemoteAuthority)
	}
	return props
}

// isNewAppInstall reports whether the first session happened within the
// install window. An unparseable timestamp means unknown, which counts as
// not new; it never produces an error.
func isNewAppInstall(firstSessionDate string, now time.Time) bool {
	if firstSessionDate == "" {
		return false
	}
	first, err := time.Parse(time.RFC3339, firstSessionDate)
	if err != nil {
		return false
	}
	age := now.Sub(first)
	return age >= 0 && age < newAppInstallWindow
}

// sanitizeRemoteAuthority reduces a remote authority like
// "ssh-remote+build-box.internal" to its connection type ("ssh-remote").
// The host part never reaches an event.
func sanitizeRemoteAuthority(authority string) string {
	if authority == "" {
		return ""
	}
	if idx := strings.IndexByte(authority, '+'); idx > 0 {
		return authority[:idx]
	}
	return "other"
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
