package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAssignment()
	c.normalizeCategories()
	if err := c.normalizeRoadblocks(); err != nil {
		return err
	}
	c.normalizeLogging()
	return c.normalizeTelemetry()
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("SPOTGRID_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = value
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}

	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Database.Path, err = expandPath(strings.TrimSpace(c.Database.Path)); err != nil {
		return fmt.Errorf("database.path: %w", err)
	}
	if c.Database.BusyTimeoutMS <= 0 {
		c.Database.BusyTimeoutMS = defaultBusyTimeoutMS
	}
	return nil
}

func (c *Config) normalizeAssignment() {
	if c.Assignment.Workers <= 0 {
		c.Assignment.Workers = defaultWorkers
	}
	if c.Assignment.MaxSpannedBlocks <= 0 {
		c.Assignment.MaxSpannedBlocks = defaultMaxSpannedBlocks
	}
	if c.Assignment.BatchLimit <= 0 {
		c.Assignment.BatchLimit = defaultBatchLimit
	}
	c.Assignment.Method = strings.TrimSpace(c.Assignment.Method)
	if c.Assignment.Method == "" {
		c.Assignment.Method = defaultAssignmentMethod
	}
}

func (c *Config) normalizeCategories() {
	c.Categories.DirectResponseAgencies = trimList(c.Categories.DirectResponseAgencies)
	c.Categories.OvernightShoppingCustomers = trimList(c.Categories.OvernightShoppingCustomers)
	c.Categories.ExcludedRevenueTypes = trimList(c.Categories.ExcludedRevenueTypes)
	c.Categories.PrimeTimeName = strings.TrimSpace(c.Categories.PrimeTimeName)
	if c.Categories.PrimeTimeName == "" {
		c.Categories.PrimeTimeName = defaultPrimeTimeName
	}
	for i := range c.Categories.PrimeTime {
		w := &c.Categories.PrimeTime[i]
		w.Name = strings.TrimSpace(w.Name)
		w.Start = strings.TrimSpace(w.Start)
		w.End = strings.TrimSpace(w.End)
		w.Days = trimList(w.Days)
		w.Languages = trimList(w.Languages)
	}
}

func (c *Config) normalizeRoadblocks() error {
	if value, ok := os.LookupEnv("SPOTGRID_ROADBLOCKS_FILE"); ok && strings.TrimSpace(value) != "" {
		c.Roadblocks.File = value
		if strings.TrimSpace(c.Roadblocks.Source) == "" || c.Roadblocks.Source == defaultRoadblocksSource {
			c.Roadblocks.Source = RoadblocksFile
		}
	}
	c.Roadblocks.Source = strings.ToLower(strings.TrimSpace(c.Roadblocks.Source))
	if c.Roadblocks.Source == "" {
		c.Roadblocks.Source = defaultRoadblocksSource
	}
	var err error
	if c.Roadblocks.File, err = expandPath(strings.TrimSpace(c.Roadblocks.File)); err != nil {
		return fmt.Errorf("roadblocks.file: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("SPOTGRID_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.File != "" && !filepath.IsAbs(c.Logging.File) {
		c.Logging.File = filepath.Join(c.Paths.LogDir, c.Logging.File)
	}
	if c.Logging.RetentionDays <= 0 {
		c.Logging.RetentionDays = defaultLogRetentionDays
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups <= 0 {
		c.Logging.MaxBackups = defaultLogMaxBackups
	}
}

func (c *Config) normalizeTelemetry() error {
	var err error
	if strings.TrimSpace(c.Metrics.TextfilePath) == "" {
		c.Metrics.TextfilePath = filepath.Join(c.Paths.DataDir, defaultMetricsTextfileName)
	}
	if c.Metrics.TextfilePath, err = expandPath(c.Metrics.TextfilePath); err != nil {
		return fmt.Errorf("metrics.textfile_path: %w", err)
	}
	if strings.TrimSpace(c.Tracing.OutputPath) == "" {
		c.Tracing.OutputPath = filepath.Join(c.Paths.LogDir, defaultTracingFileName)
	}
	if c.Tracing.OutputPath, err = expandPath(c.Tracing.OutputPath); err != nil {
		return fmt.Errorf("tracing.output_path: %w", err)
	}
	c.Tracing.ServiceName = strings.TrimSpace(c.Tracing.ServiceName)
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = defaultTracingServiceName
	}
	return nil
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
