// Package storage persists small document collections for the integration
// handlers.
//
// Each collection is an ordered list of JSON documents with three operations:
// find all, insert, and delete all. Drivers:
//   - "file": one JSON Lines file per collection under Path (a directory)
//   - "sqlite": a single SQLite database file at Path
//   - "memory": process-local, nothing survives a restart
package storage
