// Package domain defines the core types of the netlens topology visualization engine.
//
// # Core Types
//
// Topology is a named, ordered snapshot of nodes and weighted links. A Topology is
// treated as immutable once built: callers replace it wholesale rather than mutating
// fields, so renderers and hit-testers always observe a self-consistent graph.
//
// Node carries a fixed diagram position, the neighbor list reported by the data
// source, and an optional routing table.
//
// RouteEntry is a tagged value: a route is either Reachable with a next hop and a
// non-negative distance, or Unreachable. Data sources encode unreachable routes with
// a -1 distance sentinel; DecodeRoute is the only place that sentinel is interpreted.
//
// Link is an unordered pair of node identifiers with a single normalized Weight.
//
// # Canonical Library
//
// Library returns the built-in topologies (linear, star, mesh, tree) with
// precomputed positions for an 800x400 canvas.
//
// # Design Principles
//
// - Immutable snapshots
// - No database or transport dependencies
// - Data integrity problems are described by DataError values, never panics
package domain
