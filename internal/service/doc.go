// Package service coordinates topology sources with the rendering engine.
//
// TopologyService is the single entry point used by the HTTP handlers, the CLI
// and the file watcher. It resolves where a topology comes from (canonical
// library, remote simulation service, imported file, saved snapshot), runs it
// through the loader and swaps the result into the engine. A failed remote
// call keeps the last good snapshot and moves the status to error.
//
// # Event System
//
// State changes are published on an EventBus. The server forwards them to
// Server-Sent Events clients under the event type name.
package service
