// Command spotgrid assigns aired spots to programming-grid language blocks and
// prints the reconciled revenue category breakdown for a broadcast year.
//
// Every command opens the SQLite store named by the configuration, runs to
// completion, and exits. Batch commands take a lock in the data directory so
// two writers never run at once.
package main
