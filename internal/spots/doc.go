// Package spots defines the immutable records the engine reasons about: aired
// spots, their language-block assignments, and the value types (clock times,
// cents, spot types, intents) shared by the grid, intent, store, and
// categories packages.
//
// Spots are created by ingestion and never mutated here. Assignment records are
// the engine's output and are always rebuilt from scratch rather than patched.
package spots
