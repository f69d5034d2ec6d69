// Package handler implements the netlens HTTP API.
//
// TopologyHandler serves topology selection, import and export, node detail,
// statistics, frames and pointer input. WSHandler runs interactive WebSocket
// sessions that push frames and accept pointer events.
//
// # Response Format
//
// Success responses return JSON with status 200 or 201. Error responses return
// JSON with an {error, details} structure. Remote failures map to 502, a
// missing remote service or repository to 503.
//
// # Middleware
//
// Chain composes RequestID, Recover, CORS and Logger around the mux.
package handler
