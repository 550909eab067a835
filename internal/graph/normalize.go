package graph

import (
	"encoding/json"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// vendorPrefix marks protocol metadata keys injected by Graph into JSON
// payloads. They carry no domain value and inflate responses.
const vendorPrefix = "@odata."

// NormalizeOptions steer response post-processing for one call.
type NormalizeOptions struct {
	// Minimal suppresses the response body entirely, returning only a
	// success marker. Takes precedence over Raw.
	Minimal bool
	// Raw passes the payload through without metadata stripping.
	Raw bool
	// IncludeHeaders captures selected response headers alongside the
	// body.
	IncludeHeaders bool
	// Format selects the output encoding: "json" (default) or "toml".
	Format string
}

// capturedHeaders are the response headers worth surfacing to callers
// when requested: concurrency control and created-resource location.
var capturedHeaders = []string{"ETag", "Location", "Content-Type", "Request-Id"}

// Normalize converts a raw Graph response body into the text returned to
// the caller. Non-JSON and empty payloads become a small success object
// so every tool call yields well-formed output.
func Normalize(body []byte, opts NormalizeOptions) string {
	if opts.Minimal {
		return encode(map[string]any{"success": true}, opts.Format)
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return encode(map[string]any{"success": true}, opts.Format)
	}

	var payload any
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return encode(map[string]any{"success": true, "raw": trimmed}, opts.Format)
	}

	if !opts.Raw {
		payload = stripVendorKeys(payload)
	}
	return encode(payload, opts.Format)
}

// CaptureHeaders extracts the surfaced response headers for inclusion in
// result metadata. Returns nil when none are present.
func CaptureHeaders(result *RawResult) map[string]string {
	if result == nil {
		return nil
	}
	captured := map[string]string{}
	for _, name := range capturedHeaders {
		if v := result.Header.Get(name); v != "" {
			captured[name] = v
		}
	}
	if len(captured) == 0 {
		return nil
	}
	return captured
}

// stripVendorKeys removes protocol metadata keys recursively, leaving
// the domain payload.
func stripVendorKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		cleaned := make(map[string]any, len(t))
		for key, value := range t {
			if strings.HasPrefix(key, vendorPrefix) {
				continue
			}
			cleaned[key] = stripVendorKeys(value)
		}
		return cleaned
	case []any:
		for i := range t {
			t[i] = stripVendorKeys(t[i])
		}
		return t
	default:
		return v
	}
}

// encode renders the payload in the selected format. TOML is offered as
// a compact alternative for token-constrained callers; payloads TOML
// cannot represent (top-level arrays, nulls) fall back to JSON.
func encode(payload any, format string) string {
	if strings.EqualFold(format, "toml") {
		if data, err := toml.Marshal(payload); err == nil {
			return string(data)
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return `{"success":true}`
	}
	return string(data)
}
