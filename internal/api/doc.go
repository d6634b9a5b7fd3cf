// Package api exposes batch runs over HTTP.
//
// The server can trigger a run, report its status and last result, serve
// Prometheus metrics and stream run events to WebSocket clients. It only
// observes simulated runs; transactions never perform real I/O.
//
// # Endpoints
//
//   - GET  /api/status   running flag, last run id, completed run count
//   - POST /api/run      start a run (add ?wait=true to block for the result)
//   - GET  /api/result   last completed run as JSON
//   - GET  /api/presets  available presets
//   - GET  /metrics      Prometheus exposition
//   - /ws                JSON event stream
package api
