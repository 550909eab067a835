package graph

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/clye-gmbh/ms-365-mcp-server/internal/common"
)

// Control keys steer the dispatch pipeline and are never forwarded to
// Graph.
const (
	ControlFetchAllPages   = "fetchAllPages"
	ControlIncludeHeaders  = "includeHeaders"
	ControlExcludeResponse = "excludeResponse"
	ControlTimezone        = "timezone"
)

var controlKeys = map[string]bool{
	ControlFetchAllPages:   true,
	ControlIncludeHeaders:  true,
	ControlExcludeResponse: true,
	ControlTimezone:        true,
}

// odataQueryNames is the reserved vocabulary of protocol query keys that
// must carry the "$" prefix on the wire regardless of how the caller
// supplied them.
var odataQueryNames = map[string]bool{
	"filter":  true,
	"select":  true,
	"expand":  true,
	"orderby": true,
	"skip":    true,
	"top":     true,
	"count":   true,
	"search":  true,
	"format":  true,
}

// canonicalQueryName returns the "$"-prefixed form of an OData reserved
// query key. ok is false when the key is not reserved.
func canonicalQueryName(key string) (canonical string, base string, ok bool) {
	base = strings.TrimPrefix(key, "$")
	if !odataQueryNames[base] {
		return "", "", false
	}
	return "$" + base, base, true
}

// RequestShape is one fully bound request: resolved path, query, headers,
// and an optional serialized body. Built fresh per call, never reused.
type RequestShape struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   string
}

// RequestURL joins the shape onto a base URL, merging the bound query
// with any query string already present in the path template. Paths that
// are already absolute URLs (pagination cursors) pass through untouched.
func (r *RequestShape) RequestURL(base string) string {
	full := r.Path
	if !strings.HasPrefix(full, "http://") && !strings.HasPrefix(full, "https://") {
		full = base + full
	}
	if len(r.Query) == 0 {
		return full
	}
	sep := "?"
	if strings.Contains(full, "?") {
		sep = "&"
	}
	return full + sep + r.Query.Encode()
}

// BuildRequest binds a raw parameter map onto an endpoint descriptor.
//
// Binding never fails: unmatched or malformed inputs degrade to
// best-effort forwarding, because the remote service is the final arbiter
// of validity. Degradations are logged at debug level.
func BuildRequest(ep *Endpoint, args map[string]any, logger *common.Logger) RequestShape {
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	shape := RequestShape{
		Method: strings.ToUpper(ep.Method),
		Path:   ep.Path,
		Query:  url.Values{},
		Header: http.Header{},
	}

	var body any
	haveBody := false

	for key, value := range args {
		if controlKeys[key] {
			continue
		}

		canonical, base, reserved := canonicalQueryName(key)

		// Locate the descriptor: exact name first, then the unprefixed
		// form for reserved query names (the catalog may declare either
		// "filter" or "$filter").
		param := ep.findParam(key)
		if param == nil && reserved {
			if param = ep.findParam(base); param == nil {
				param = ep.findParam(canonical)
			}
		}

		if param == nil {
			if key == "body" {
				// Escape hatch for endpoints with untyped bodies.
				body = value
				haveBody = true
				continue
			}
			logger.Debug().Str("tool", ep.Tool).Str("param", key).Msg("no descriptor for parameter, dropping")
			continue
		}

		switch param.In {
		case ParamPath:
			encoded := url.PathEscape(stringify(value))
			shape.Path = strings.ReplaceAll(shape.Path, "{"+param.Name+"}", encoded)
			shape.Path = strings.ReplaceAll(shape.Path, ":"+param.Name, encoded)
		case ParamQuery:
			name := param.Name
			if reserved {
				name = canonical
			}
			shape.Query.Set(name, stringify(value))
		case ParamHeader:
			shape.Header.Set(param.Name, stringify(value))
		case ParamBody:
			bound := bindBodyValue(ep, param, value, logger)
			body = mergeBody(body, bound)
			haveBody = true
		}
	}

	if tz, ok := args[ControlTimezone].(string); ok && tz != "" && ep.SupportsTimezone {
		shape.Header.Set("Prefer", fmt.Sprintf("outlook.timezone=%q", tz))
	}

	if haveBody && shape.Method != http.MethodGet {
		if data, err := json.Marshal(body); err == nil {
			shape.Body = string(data)
		} else {
			logger.Debug().Str("tool", ep.Tool).Str("error", err.Error()).Msg("body not serializable, sending empty body")
		}
	}

	return shape
}

// bindBodyValue validates a body parameter value against its structural
// validator. On failure it attempts a single auto-correction: wrapping
// the value in an object keyed by the parameter name, tolerating callers
// who pass a nested field directly instead of the whole body shape. If
// the corrected form validates it is used; otherwise the original value
// passes through unvalidated.
func bindBodyValue(ep *Endpoint, param *ParamDescriptor, value any, logger *common.Logger) any {
	if param.Validator == nil {
		return value
	}

	err := param.Validator.Validate(value)
	if err == nil {
		return value
	}

	wrapped := map[string]any{param.Name: value}
	if param.Validator.Validate(wrapped) == nil {
		logger.Debug().Str("tool", ep.Tool).Str("param", param.Name).Msg("body value auto-wrapped under parameter name")
		return wrapped
	}

	logger.Debug().Str("tool", ep.Tool).Str("param", param.Name).Str("error", err.Error()).Msg("body validation failed, forwarding as-is")
	return value
}

// mergeBody combines body contributions from multiple parameters. Two
// objects shallow-merge; anything else is last-write-wins.
func mergeBody(existing, next any) any {
	if existing == nil {
		return next
	}
	prev, prevOK := existing.(map[string]any)
	cur, curOK := next.(map[string]any)
	if !prevOK || !curOK {
		return next
	}
	merged := make(map[string]any, len(prev)+len(cur))
	for k, v := range prev {
		merged[k] = v
	}
	for k, v := range cur {
		merged[k] = v
	}
	return merged
}

// stringify renders an arbitrary parameter value for path, query, or
// header placement.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers arrive as float64; render integers without the
		// trailing ".0".
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	case nil:
		return ""
	default:
		if data, err := json.Marshal(t); err == nil {
			return string(data)
		}
		return fmt.Sprint(t)
	}
}

// BoolArg reads a boolean control argument, tolerating string forms.
func BoolArg(args map[string]any, key string) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	default:
		return false
	}
}
