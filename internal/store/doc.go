// Package store keeps the probe history in SQLite.
//
// Each probed file becomes one row tagged with the run identifier of the
// invocation that probed it. Writers from concurrent mediaprobe processes
// are serialized with an advisory file lock next to the database.
//
// The schema is versioned; a database written by a different version is
// rejected with ErrSchemaMismatch and has to be cleared.
package store
