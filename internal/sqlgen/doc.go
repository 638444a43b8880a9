// Package sqlgen translates a validated queryspec.QuerySpec into SQL
// text for an analytical engine with minute-resolution OHLCV bars.
//
// The generator is deterministic: the same spec always yields
// byte-identical SQL. It is also pure apart from read-only lookups
// against the session configuration and the holiday rule provider, so an
// Assembler is safe to share across goroutines.
//
// Output targets a DuckDB-flavored dialect: FIRST/LAST aggregates with
// ORDER BY, YEAR/MONTH/DAYNAME/DAYOFWEEK/QUARTER date parts,
// time_bucket for intraday flooring, and ::date / ::time casts.
//
// Every literal spliced into the output passes through sqlsafe; no
// function in this package formats a raw user-controlled string into a
// SQL buffer.
package sqlgen
