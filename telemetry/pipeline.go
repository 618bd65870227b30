package telemetry

import (
	"fmt"
	"regexp"
)

// Data is the event payload envelope. Properties carry contextual strings
// and pass through redaction; Measurements are pure numbers and bypass it.
type Data struct {
	Properties   map[string]string
	Measurements map[string]float64
}

// NewData builds a Data envelope from a flat property mapping. Numeric
// values become measurements; everything else is stringified into
// properties. A nil map yields an empty envelope.
func NewData(flat map[string]interface{}) Data {
	d := Data{
		Properties:   make(map[string]string, len(flat)),
		Measurements: make(map[string]float64),
	}
	for k, v := range flat {
		switch n := v.(type) {
		case float64:
			d.Measurements[k] = n
		case float32:
			d.Measurements[k] = float64(n)
		case int:
			d.Measurements[k] = float64(n)
		case int32:
			d.Measurements[k] = float64(n)
		case int64:
			d.Measurements[k] = float64(n)
		case uint:
			d.Measurements[k] = float64(n)
		case bool:
			if n {
				d.Properties[k] = "true"
			} else {
				d.Properties[k] = "false"
			}
		case string:
			d.Properties[k] = n
		default:
			d.Properties[k] = fmt.Sprintf("%v", v)
		}
	}
	return d
}

// clone returns a copy so pipeline stages never mutate caller-owned maps.
func (d Data) clone() Data {
	out := Data{
		Properties:   make(map[string]string, len(d.Properties)),
		Measurements: make(map[string]float64, len(d.Measurements)),
	}
	for k, v := range d.Properties {
		out.Properties[k] = v
	}
	for k, v := range d.Measurements {
		out.Measurements[k] = v
	}
	return out
}

// redaction couples a recognizer with the kind marker substituted for
// matches. Patterns are ordered: credential assignments first so their
// values are not partially consumed by the path patterns below.
type redaction struct {
	kind string
	re   *regexp.Regexp
}

var redactions = []redaction{
	{"secret", regexp.MustCompile(`(?i)(token|secret|password|api[_-]?key|auth)\s*[=:]\s*\S+`)},
	{"email", regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`)},
	{"path", regexp.MustCompile(`(?i)[a-z]:(?:\\\\?|/)(?:[\w.$ -]+(?:\\\\?|/))*[\w.$ -]*`)},
	{"path", regexp.MustCompile(`(?:^|[\s"'=:(])(?:/[\w.~+-]+){2,}/?`)},
}

// redactValue strips recognized sensitive patterns from a single property
// value, replacing each match with a kind marker.
func redactValue(value string) string {
	for _, r := range redactions {
		value = r.re.ReplaceAllString(value, "<REDACTED: "+r.kind+">")
	}
	return value
}

// cleanData runs redaction over every property value. Measurements are
// defined to be pure numbers and pass through untouched.
func cleanData(d Data) Data {
	out := d.clone()
	for k, v := range out.Properties {
		out.Properties[k] = redactValue(v)
	}
	return out
}

// mixin merges extra into props without overwriting existing keys.
// Enrichment order is: event data, then per-logger additional properties,
// then builtin common properties; later never overwrites earlier.
func mixin(props map[string]string, extra map[string]string) {
	for k, v := range extra {
		if _, exists := props[k]; !exists {
			props[k] = v
		}
	}
}

// runPipeline applies redaction then enrichment and returns the payload
// that is both transmitted and traced.
func runPipeline(d Data, additional, builtin map[string]string) Data {
	out := cleanData(d)
	mixin(out.Properties, additional)
	mixin(out.Properties, builtin)
	return out
}
