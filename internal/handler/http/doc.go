// Package http implements the HTTP API surface of the streamhub server:
// account registration and validation, per-class session endpoints, channel
// list management, the XML channel feed, and the status report, together
// with the middleware chain (trace ids, request logging, origin filtering,
// and session gating).
package http
