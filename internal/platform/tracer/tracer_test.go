package tracer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"tausepro/internal/platform/tracer"
)

func TestNoopTracer(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	newCtx, span := tr.Start(ctx, tracer.SpanAPIRequest, tracer.String(tracer.AttrHTTPMethod, "GET"))
	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)

	span.SetAttributes(tracer.Int(tracer.AttrHTTPStatus, 200))
	span.AddEvent(tracer.EventTokenRefreshed)
	span.End(errors.New("ignored"))
}

func TestOTelTracerWithInjectedProvider(t *testing.T) {
	tr := tracer.NewOTel(tracer.WithOTelTracer(noop.NewTracerProvider().Tracer("test")))

	ctx, span := tr.Start(context.Background(), tracer.SpanTokenRefresh,
		tracer.Bool(tracer.AttrRetried, true),
		tracer.Int64("count", 2),
	)
	require.NotNil(t, ctx)
	span.AddEvent(tracer.EventLoggedOut, tracer.String(tracer.AttrRealm, "admin"))
	span.End(nil)
}

func TestAttributeConstructors(t *testing.T) {
	assert.Equal(t, int64(42), tracer.Int("n", 42).Value)
	assert.Equal(t, int64(150), tracer.Duration("latency", 150*1e6).Value)
	assert.Equal(t, "v", tracer.String("k", "v").Value)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", tracer.StatusClass(204))
	assert.Equal(t, "4xx", tracer.StatusClass(401))
	assert.Equal(t, "5xx", tracer.StatusClass(503))
	assert.Equal(t, "unknown", tracer.StatusClass(0))
}
