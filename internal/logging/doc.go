// Package logging assembles structured slog loggers and formatting helpers used
// across spotgrid.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing (rotating file outputs go through lumberjack), and exposes
// context-aware helpers so assignment code tags log lines with spot ids,
// stages, and run ids automatically. A no-op logger is provided for tests and
// wiring code that cannot fail.
package logging
