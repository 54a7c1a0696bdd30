// Package tracing wires OpenTelemetry spans around batch assignment and the
// category partition. When enabled, spans are exported as JSON lines to a
// local file; otherwise a no-op tracer is used.
package tracing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"spotgrid/internal/config"
)

const instrumentationName = "spotgrid"

// Provider hands out tracers and flushes exported spans on Shutdown.
type Provider struct {
	provider trace.TracerProvider
	sdk      *sdktrace.TracerProvider
	file     *os.File
}

// Noop returns a provider whose spans are discarded.
func Noop() *Provider {
	return &Provider{provider: noop.NewTracerProvider()}
}

// Setup builds a provider from cfg.Tracing.
func Setup(ctx context.Context, cfg *config.Config) (*Provider, error) {
	if cfg == nil || !cfg.Tracing.Enabled {
		return Noop(), nil
	}
	path := cfg.Tracing.OutputPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure trace directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(file))
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", cfg.Tracing.ServiceName),
	))
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("build trace resource: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	return &Provider{provider: tp, sdk: tp, file: file}, nil
}

// Tracer returns the spotgrid tracer.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil || p.provider == nil {
		return noop.NewTracerProvider().Tracer(instrumentationName)
	}
	return p.provider.Tracer(instrumentationName)
}

// Shutdown flushes pending spans and closes the output file.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.sdk == nil {
		return nil
	}
	err := p.sdk.Shutdown(ctx)
	if p.file != nil {
		if closeErr := p.file.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}
