// Package queryspec defines the declarative query model consumed by the
// SQL generator.
//
// A QuerySpec is pure data: it is built once per request from upstream
// input (YAML, CUE, or JSON), validated as a whole, and discarded after
// the SQL string is produced. Validation collects every structural
// problem before failing so a caller can report them all in one round
// trip.
//
// The enums in this package are closed sets. The generator switches over
// them exhaustively; a value outside the set is caught by Validate and
// never reaches a builder.
package queryspec
