// Package internal holds cross-cutting helpers shared by the authcore
// engine and its internal stores. Nothing here is part of the public API.
package internal
