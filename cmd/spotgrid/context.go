package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"spotgrid/internal/config"
	"spotgrid/internal/logging"
	"spotgrid/internal/metrics"
	"spotgrid/internal/preflight"
	"spotgrid/internal/services"
	"spotgrid/internal/store"
	"spotgrid/internal/tracing"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// session holds everything one command invocation needs. close flushes
// telemetry and releases the store.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	metrics *metrics.Recorder
	tracing *tracing.Provider
}

func (c *commandContext) openSession(ctx context.Context) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	provider, err := tracing.Setup(ctx, cfg)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	return &session{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		metrics: metrics.New(),
		tracing: provider,
	}, nil
}

func (s *session) close() error {
	var errs []error
	if s.cfg.Metrics.Enabled {
		if err := s.metrics.WriteTextfile(s.cfg.Metrics.TextfilePath); err != nil {
			errs = append(errs, fmt.Errorf("write metrics textfile: %w", err))
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.tracing.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("flush traces: %w", err))
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}

// withSession opens a session, runs fn, and closes the session. A close
// failure is reported only when fn succeeded.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(context.Context, *session) error) error {
	ctx := services.WithRequestID(cmd.Context(), cmd.CommandPath())
	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	runErr := fn(ctx, s)
	closeErr := s.close()
	if runErr != nil {
		return runErr
	}
	return closeErr
}

// requirePreflight fails when a blocking readiness check fails.
func (s *session) requirePreflight(ctx context.Context) error {
	blocking := preflight.Blocking(preflight.RunAll(ctx, s.cfg, s.store))
	if len(blocking) == 0 {
		return nil
	}
	parts := make([]string, 0, len(blocking))
	for _, r := range blocking {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "", strings.Join(parts, "; "), nil)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
