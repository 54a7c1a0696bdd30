// Package preflight provides readiness checks for the data directory, the
// SQLite store, the programming grid, and the roadblock source.
//
// The CLI "grid check" command prints every result; batch commands call
// RunAll first and refuse to start when a blocking check fails. Grid
// well-formedness issues are reported but never block a run, since matching
// still works on overlapping blocks.
package preflight
