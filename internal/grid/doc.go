// Package grid models weekly programming schedules and answers the two
// questions the assignment stage asks of them: which schedule governs a market
// on a date (Resolve), and which language blocks overlap a spot's air time
// (Match).
//
// A Snapshot is built once per batch from the store and is read-only after
// construction, so workers can share it without locking. Mixing snapshots
// inside one batch would break reconciliation; callers load one and keep it.
package grid
