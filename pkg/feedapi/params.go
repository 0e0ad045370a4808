package feedapi

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// PathParams supplies values for the named placeholders of an endpoint
// template. Implementations are small typed records used only for URL
// substitution; they are never sent as body or query.
type PathParams interface {
	PathValues() map[string]string
}

// QueryParams supplies a flat key-value mapping attached to the request URL.
// Keys absent from the mapping are simply absent from the query string.
type QueryParams interface {
	QueryValues() map[string]string
}

var placeholderRe = regexp.MustCompile(`\{(\w+)\}`)

// resolveEndpoint substitutes every {name} placeholder in endpoint with the
// matching value from params. Every placeholder must have a value; an
// unresolved placeholder is a format error and no request is made.
func resolveEndpoint(endpoint string, params PathParams) (string, error) {
	matches := placeholderRe.FindAllStringSubmatch(endpoint, -1)
	if len(matches) == 0 {
		return endpoint, nil
	}
	if params == nil {
		return "", fmt.Errorf("endpoint %q has placeholders but no path params given", endpoint)
	}

	values := params.PathValues()
	resolved := endpoint
	for _, m := range matches {
		val, ok := values[m[1]]
		if !ok {
			return "", fmt.Errorf("missing path parameter %q for endpoint %q", m[1], endpoint)
		}
		resolved = strings.ReplaceAll(resolved, m[0], url.PathEscape(val))
	}
	return resolved, nil
}
