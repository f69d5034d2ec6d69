// Package repository defines persistence for saved topologies.
//
// A saved topology is a named copy of a snapshot taken from the engine. It is
// stored with its node order, positions, neighbor lists, routing tables and
// link weights, so loading it back produces a snapshot with the same digest.
//
// # SQLite Implementation
//
// The sqlite subpackage stores topologies in three tables (header, nodes,
// links) with cascade deletes, and replaces a saved topology in a single
// transaction. Tests run against in-memory databases.
package repository
