package apiclient

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	dErrors "tausepro/pkg/domain-errors"
	"tausepro/pkg/platform/httputil"
)

// messagePaths are the places the API puts a human-readable error, in
// order of preference.
var messagePaths = []string{
	"message",
	"error_description",
	"error.message",
	"error",
	"errors.0.message",
}

// StatusError carries the upstream status next to the domain code.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return http.StatusText(e.Status)
}

// statusError maps a non-2xx response to a domain error. The message comes
// from the body when it has one.
func statusError(status int, raw []byte) error {
	code := httputil.HTTPStatusToDomainCode(status)
	msg := http.StatusText(status)

	if m := bodyMessage(raw); m != "" {
		msg = m
	}
	return dErrors.Wrap(&StatusError{Status: status, Body: strings.TrimSpace(string(raw))}, code, msg)
}

func bodyMessage(raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return ""
	}
	for _, r := range gjson.GetManyBytes(raw, messagePaths...) {
		if r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}

func transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "api request timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "api unreachable")
}

// Status extracts the upstream status from err, or 0.
func Status(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}
