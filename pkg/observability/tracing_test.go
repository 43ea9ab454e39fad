package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ajitpratap0/uniunit/pkg/config"
	"github.com/ajitpratap0/uniunit/pkg/errors"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{Enabled: false})
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "convert")
	assert.False(t, span.SpanContext().IsValid())
	EndSpan(span, nil)

	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_StdoutExporter(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{
		Enabled:     true,
		ServiceName: "uniunit-test",
		SampleRate:  1,
		Exporter:    "stdout",
	}, WithWriter(&buf), WithVersion("test"))
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "quick_convert", attribute.String("system.target", "CGS"))
	assert.True(t, span.SpanContext().IsValid())
	EndSpan(span, errors.New(errors.ErrorTypeNotFound, "Preset 'Bogus' not found"))

	require.NoError(t, shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "uniunit.quick_convert")
	assert.Contains(t, out, "system.target")
	assert.Contains(t, out, "not_found")
	assert.Contains(t, out, "uniunit-test")

	// leave a no-op tracer behind for other tests
	_, err = InitTracing(context.Background(), config.TracingConfig{})
	require.NoError(t, err)
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(0).Description(), "AlwaysOff")
	assert.Contains(t, sampler(1).Description(), "AlwaysOn")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}
