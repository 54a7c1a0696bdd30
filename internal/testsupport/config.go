package testsupport

import (
	"path/filepath"
	"testing"

	"spotgrid/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Metrics.TextfilePath = filepath.Join(base, "data", "spotgrid.prom")
	cfgVal.Tracing.OutputPath = filepath.Join(base, "logs", "traces.jsonl")
	cfgVal.Assignment.Workers = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithWorkers sets the batch assignment worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Assignment.Workers = n
	}
}

// WithRoadblocksFile points the roadblock oracle at a YAML file written with
// the provided content.
func WithRoadblocksFile(content string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "roadblocks.yaml")
		WriteFile(b.t, path, content)
		b.cfg.Roadblocks.Source = config.RoadblocksFile
		b.cfg.Roadblocks.File = path
	}
}

// WithTelemetry enables the metrics textfile and trace file outputs.
func WithTelemetry() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.Enabled = true
		b.cfg.Tracing.Enabled = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
