// Package middleware provides net/http guards backed by an authcore Engine.
// It works with any router that accepts func(http.Handler) http.Handler,
// including chi.
package middleware
