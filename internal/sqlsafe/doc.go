// Package sqlsafe is the single chokepoint between user-influenced values
// and generated SQL text.
//
// The generator emits human-readable SQL with inline literals rather than
// bind parameters, so every literal must be validated and escaped before
// interpolation. The Literal and List wrapper types make that explicit:
// nothing in this module splices a raw string into a SQL buffer, only
// values produced by the functions in this package.
//
// Every function either returns a wrapper that is safe to interpolate or a
// *Rejection identifying the offending field. There is no fallback to
// unescaped interpolation.
package sqlsafe
