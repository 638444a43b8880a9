// Package market holds the two read-only collaborators the SQL generator
// depends on: per-instrument session configuration and the holiday rule
// provider.
//
// Both are synchronous and deterministic per input. The generator calls
// them once per request (once per spanned year for holidays) and does no
// caching of its own.
package market
