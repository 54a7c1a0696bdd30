package config

import (
	"errors"
	"fmt"

	"spotgrid/internal/spots"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAssignment(); err != nil {
		return err
	}
	if err := c.validatePrimeTime(); err != nil {
		return err
	}
	if err := c.validateRoadblocks(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAssignment() error {
	if c.Assignment.Workers > 64 {
		return errors.New("assignment.workers must be between 1 and 64")
	}
	if c.Assignment.MaxSpannedBlocks < 1 {
		return errors.New("assignment.max_spanned_blocks must be positive")
	}
	return nil
}

func (c *Config) validatePrimeTime() error {
	for i, w := range c.Categories.PrimeTime {
		label := w.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		if len(w.Days) == 0 {
			return fmt.Errorf("categories.prime_time %s: days must not be empty", label)
		}
		for _, day := range w.Days {
			if _, err := spots.ParseDay(day); err != nil {
				return fmt.Errorf("categories.prime_time %s: %w", label, err)
			}
		}
		start, err := spots.ParseClock(w.Start)
		if err != nil {
			return fmt.Errorf("categories.prime_time %s start: %w", label, err)
		}
		end, err := spots.ParseClock(w.End)
		if err != nil {
			return fmt.Errorf("categories.prime_time %s end: %w", label, err)
		}
		if end.EndMinutes() <= start.Minutes() {
			return fmt.Errorf("categories.prime_time %s: end %s must be after start %s", label, w.End, w.Start)
		}
	}
	return nil
}

func (c *Config) validateRoadblocks() error {
	switch c.Roadblocks.Source {
	case RoadblocksStore, RoadblocksNone:
		return nil
	case RoadblocksFile:
		if c.Roadblocks.File == "" {
			return errors.New("roadblocks.file is required when roadblocks.source is \"file\" (or set SPOTGRID_ROADBLOCKS_FILE)")
		}
		return nil
	default:
		return fmt.Errorf("roadblocks.source must be one of store, file, none (got %q)", c.Roadblocks.Source)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
