// Package tracer is the console's tracing seam. Callers depend on Tracer and
// Span only; OTelTracer adapts OpenTelemetry and NoopTracer serves tests and
// deployments with tracing disabled.
package tracer

import (
	"context"
	"strconv"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, marking it failed when err is non-nil.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a span and returns a context carrying it.
	//
	//	ctx, span := t.Start(ctx, tracer.SpanAPIRequest,
	//	    tracer.String(tracer.AttrHTTPMethod, http.MethodGet),
	//	)
	//	defer span.End(err)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: int64(value)}
}

// Duration records the value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// StatusClass buckets an HTTP status as "2xx", "4xx" and so on.
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

// Span names.
const (
	SpanAPIRequest     = "apiclient.request"
	SpanTokenRefresh   = "apiclient.refresh"
	SpanAuthLogin      = "auth.login"
	SpanUsageRefresh   = "paywall.refresh_usage"
	SpanAdminDashboard = "admin.dashboard"
)

// Attribute keys.
const (
	AttrHTTPMethod = "http.method"
	AttrHTTPPath   = "http.path"
	AttrHTTPStatus = "http.status_code"
	AttrRetried    = "apiclient.retried"
	AttrRealm      = "auth.realm"
	AttrTenantID   = "tenant.id"
	AttrPlan       = "paywall.plan"
)

// Event names.
const (
	EventTokenRefreshed = "token.refreshed"
	EventLoggedOut      = "session.logged_out"
)
