// Package token signs and verifies the bearer credentials used by authcore:
// HS256 JWTs carrying issuer, issued-at, expiry, subject (principal id), a
// kind claim distinguishing access from refresh tokens, and the principal's
// email on access tokens.
//
// The codec is stateless apart from the secret fixed at construction. It
// performs no I/O, so every other component can treat a token string as a
// self-contained capability and keep statefulness where revocation and
// rotation genuinely require it.
package token
