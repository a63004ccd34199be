package apiclient

import (
	"net/url"
	"strings"
)

// WithQuery appends params to path, skipping empty values. Encode sorts keys
// so request paths are stable in logs and tests.
func WithQuery(path string, params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		if v = strings.TrimSpace(v); v != "" {
			values.Set(k, v)
		}
	}
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}

// PathEscape escapes an ID for use as a single path segment.
func PathEscape(id string) string {
	return url.PathEscape(id)
}
