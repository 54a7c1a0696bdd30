// Package config loads and validates spotgrid configuration.
//
// Configuration is read from TOML (default ~/.config/spotgrid/config.toml, or
// spotgrid.toml in the working directory). A .env file beside the config or in
// the working directory is loaded first so SPOTGRID_* fallbacks can be kept
// out of the TOML. Paths are expanded and defaults filled in by normalize
// before Validate runs.
package config
