// Package authcore implements the authentication session lifecycle: issuance,
// validation, rotation, and revocation of JWT bearer credentials, plus the
// one-time-code email verification flow that gates account registration.
//
// The package is the public surface. It exposes [Engine], [Builder], [Config],
// the collaborator interfaces ([UserStore], [PasswordHasher], [EmailSender]),
// and value types (Principal, TokenPair, LoginResult). All coordination with
// Redis (revocation entries, refresh sessions, verification codes, rate
// counters) lives under internal/ and is never exported.
//
// # Architecture boundaries
//
// authcore owns tokens and Redis state only. User records, password hashing,
// and email delivery are supplied by the host application through interfaces;
// a default argon2id hasher ships in the password sub-package. HTTP routing,
// cookies, and status-code mapping belong to the caller (see middleware and
// examples/http-minimal for the intended integration shape).
//
// # Concurrency
//
// Engine methods are safe to call from multiple goroutines after
// [Builder.Build]. The signing secret is read once at build time and never
// mutated; all cross-request state lives in Redis, so correctness under
// concurrent refresh calls rests on the store's single-key atomicity and a
// Lua compare-and-swap, not on in-process locks.
package authcore
