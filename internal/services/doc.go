// Package services defines shared utilities consumed by the assignment and
// categorization stages.
//
// Key responsibilities:
//   - Context helpers that stamp spot IDs, stage names, and batch run
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent batch outcomes (skipped vs errored).
//
// Use these helpers when wiring new stage logic so operational behaviour (error
// handling, observability) stays uniform across the engine.
package services
