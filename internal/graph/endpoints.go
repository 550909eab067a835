// Package graph implements the generic Microsoft Graph endpoint dispatch
// engine: parameter binding, token lifecycle, pagination, and response
// normalization.
package graph

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clye-gmbh/ms-365-mcp-server/internal/common"
)

// ParamLocation describes where a bound parameter value is placed on the
// outgoing request.
type ParamLocation int

const (
	// ParamPath substitutes the value into the path template.
	ParamPath ParamLocation = iota
	// ParamQuery adds the value to the query string.
	ParamQuery
	// ParamHeader adds the value as a request header.
	ParamHeader
	// ParamBody merges the value into the request body.
	ParamBody
)

// locationNames maps wire names ("path", "query", ...) to locations.
var locationNames = map[string]ParamLocation{
	"path":   ParamPath,
	"query":  ParamQuery,
	"header": ParamHeader,
	"body":   ParamBody,
}

// Validator checks the structural shape of a body parameter value.
type Validator interface {
	Validate(v any) error
}

// RequireKeys validates that a body value is an object containing every
// listed key. It is the structural check most Graph write endpoints need.
type RequireKeys []string

// Validate implements Validator.
func (r RequireKeys) Validate(v any) error {
	obj, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("expected an object, got %T", v)
	}
	for _, key := range r {
		if _, present := obj[key]; !present {
			return fmt.Errorf("missing required key %q", key)
		}
	}
	return nil
}

// ParamDescriptor declares one parameter of an endpoint.
type ParamDescriptor struct {
	Name        string        `json:"name"`
	In          ParamLocation `json:"-"`
	Type        string        `json:"type"` // string, number, boolean, array, object
	Description string        `json:"description"`
	Required    bool          `json:"required"`
	Validator   Validator     `json:"-"`
}

// Endpoint is the static, declarative definition of one Graph operation.
// The catalog is loaded once at startup and shared read-only across all
// invocations.
type Endpoint struct {
	Tool        string `json:"name"`
	Description string `json:"description"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Category    string `json:"category"`

	Params []ParamDescriptor `json:"params"`
	Scopes []string          `json:"scopes"`

	// OrgOnly marks endpoints that require a work/school account.
	OrgOnly bool `json:"orgOnly"`
	// Binary marks endpoints whose response body is raw content rather
	// than JSON (drive item content, photos).
	Binary bool `json:"binary"`
	// ReturnDownloadURL requests a bare download reference instead of
	// inlined content; the response passes through unstripped.
	ReturnDownloadURL bool `json:"returnDownloadUrl"`
	// SupportsTimezone enables the caller-supplied timezone preference
	// header on this endpoint.
	SupportsTimezone bool `json:"supportsTimezone"`
}

// allowedMethods is the whitelist of HTTP methods for catalog endpoints.
var allowedMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
}

// ValidateEndpoint validates a single catalog entry.
func ValidateEndpoint(ep Endpoint) error {
	if ep.Tool == "" {
		return fmt.Errorf("endpoint has empty tool name")
	}
	if ep.Method == "" {
		return fmt.Errorf("endpoint %q has empty method", ep.Tool)
	}
	if !allowedMethods[strings.ToUpper(ep.Method)] {
		return fmt.Errorf("endpoint %q has unsupported method %q", ep.Tool, ep.Method)
	}
	if ep.Path == "" {
		return fmt.Errorf("endpoint %q has empty path", ep.Tool)
	}
	if !strings.HasPrefix(ep.Path, "/") {
		return fmt.Errorf("endpoint %q has invalid path %q (must start with /)", ep.Tool, ep.Path)
	}
	if strings.Contains(ep.Path, "..") {
		return fmt.Errorf("endpoint %q has invalid path %q (contains ..)", ep.Tool, ep.Path)
	}
	return nil
}

// ValidateCatalog filters catalog entries, logging warnings for invalid or
// duplicate tools. Order is preserved.
func ValidateCatalog(catalog []Endpoint, logger *common.Logger) []Endpoint {
	seen := make(map[string]bool, len(catalog))
	valid := make([]Endpoint, 0, len(catalog))
	for _, ep := range catalog {
		if err := ValidateEndpoint(ep); err != nil {
			logger.Warn().Str("error", err.Error()).Msg("skipping invalid catalog endpoint")
			continue
		}
		if seen[ep.Tool] {
			logger.Warn().Str("name", ep.Tool).Msg("skipping duplicate catalog endpoint")
			continue
		}
		seen[ep.Tool] = true
		valid = append(valid, ep)
	}
	return valid
}

// jsonParam mirrors ParamDescriptor for the external catalog format, with
// the location as a string and validators as a key list.
type jsonParam struct {
	Name         string   `json:"name"`
	In           string   `json:"in"`
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	Required     bool     `json:"required"`
	RequiredKeys []string `json:"requiredKeys"`
}

// jsonEndpoint mirrors Endpoint for the external catalog format.
type jsonEndpoint struct {
	Endpoint
	Params []jsonParam `json:"params"`
}

// LoadCatalog parses an external JSON endpoint catalog. The caller is
// expected to pass the result through ValidateCatalog.
func LoadCatalog(data []byte) ([]Endpoint, error) {
	var raw []jsonEndpoint
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse endpoint catalog: %w", err)
	}

	catalog := make([]Endpoint, 0, len(raw))
	for _, je := range raw {
		ep := je.Endpoint
		ep.Params = make([]ParamDescriptor, 0, len(je.Params))
		for _, jp := range je.Params {
			pd := ParamDescriptor{
				Name:        jp.Name,
				Type:        jp.Type,
				Description: jp.Description,
				Required:    jp.Required,
			}
			if loc, ok := locationNames[strings.ToLower(jp.In)]; ok {
				pd.In = loc
			}
			if len(jp.RequiredKeys) > 0 {
				pd.Validator = RequireKeys(jp.RequiredKeys)
			}
			ep.Params = append(ep.Params, pd)
		}
		catalog = append(catalog, ep)
	}
	return catalog, nil
}

// findParam locates a parameter descriptor by exact name.
func (ep *Endpoint) findParam(name string) *ParamDescriptor {
	for i := range ep.Params {
		if ep.Params[i].Name == name {
			return &ep.Params[i]
		}
	}
	return nil
}

// Mutating reports whether the endpoint modifies remote state.
func (ep *Endpoint) Mutating() bool {
	return strings.ToUpper(ep.Method) != "GET"
}
