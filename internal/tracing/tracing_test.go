package tracing_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotgrid/internal/testsupport"
	"spotgrid/internal/tracing"
)

func TestSetupDisabledIsNoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	p, err := tracing.Setup(context.Background(), cfg)
	require.NoError(t, err)

	_, span := p.Tracer().Start(context.Background(), "noop")
	span.End()
	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, p.Shutdown(context.Background()))
	assert.NoFileExists(t, cfg.Tracing.OutputPath)
}

func TestSetupExportsToFile(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTelemetry())
	p, err := tracing.Setup(context.Background(), cfg)
	require.NoError(t, err)

	_, span := p.Tracer().Start(context.Background(), "assign.batch")
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))

	data, err := os.ReadFile(cfg.Tracing.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Name":"assign.batch"`)
}
