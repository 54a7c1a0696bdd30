// Package store persists spots, programming grids, block assignments, and
// roadblock membership in SQLite.
//
// The Store owns connection setup, schema initialization, and every SQL
// statement in spotgrid. Grid tables are read in one pass by LoadGrid to build
// the immutable snapshot shared by assignment workers. Assignment writes go
// through ReplaceAssignment, which deletes and inserts inside one transaction
// so readers never observe zero or two rows for an assigned spot.
//
// Schema changes bump the version in schema.go; operators rebuild the database
// to adopt the new schema.
package store
