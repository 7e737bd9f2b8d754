// Package stores contains the Redis-backed state behind the authcore engine:
// revoked access tokens, the single active refresh session per principal, and
// pending email verification codes.
//
// Every store wraps backend failures in its own unavailability sentinel so
// the engine can fail closed on reads and fail loud on writes without ever
// leaking raw Redis errors across the package boundary. Multi-key updates go
// through MULTI/EXEC pipelines or Lua scripts; single keys rely on Redis's
// native last-write-wins semantics.
package stores
