// Package audit provides the asynchronous audit event pipeline used by the
// authcore engine: a structured Event model, pluggable sinks, and a buffered
// dispatcher that keeps event delivery off the request path.
package audit
