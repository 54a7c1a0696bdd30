// Package assignment drives block assignment for spots: it resolves each
// spot's programming grid, matches overlapping language blocks, classifies
// intent, and persists the outcome.
//
// Batch entry points load one immutable grid snapshot and fan spots out over a
// bounded errgroup. A failing spot is recorded in the Result and never stops
// the batch; cancelling the context stops the batch between spots. A file lock
// in the data directory keeps two batch runs from writing at once.
package assignment
