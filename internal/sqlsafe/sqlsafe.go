package sqlsafe

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Literal is a single value that has been validated and escaped for
// direct interpolation into SQL text.
type Literal string

// List is a validated, comma-joined sequence of literals, ready to be
// placed inside an IN (...) clause.
type List string

// Rejection is returned when a value fails validation. It is always fatal
// to the request that produced it; callers must never fall back to
// interpolating the raw value.
type Rejection struct {
	Field   string // logical field name, e.g. "symbol", "filters.weekdays"
	Value   string // the offending input, verbatim (never reaches SQL)
	Message string
}

func (e *Rejection) Error() string {
	return fmt.Sprintf("unsafe value for %s: %s (got %q)", e.Field, e.Message, e.Value)
}

// IsRejection reports whether err is (or wraps) a *Rejection.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}

func reject(field, value, message string) *Rejection {
	return &Rejection{Field: field, Value: value, Message: message}
}

// symbolPattern admits exchange-style instrument codes: "ES", "AAPL",
// "BRK.B", "EURUSD=X", "^GSPC", "BTC-USD". Quotes, whitespace and
// semicolons are outside the class; single hyphens are legal in pair
// codes, so the "--" comment marker needs its own check in Symbol.
var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9^][A-Za-z0-9._=-]{0,23}$`)

// timePattern pins the input shape to HH:MM or HH:MM:SS before parsing;
// time.Parse alone would also admit single-digit hours.
var timePattern = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)

// identPattern admits plain lowercase SQL identifiers (column names).
var identPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// WeekdayNames is the closed whitelist of weekday literals, in natural
// Monday-first order.
var WeekdayNames = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// MonthNames is the closed whitelist of month literals, January first.
var MonthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Symbol validates an instrument code and returns it as a quoted SQL
// string literal.
func Symbol(s string) (Literal, error) {
	if !symbolPattern.MatchString(s) || strings.Contains(s, "--") {
		return "", reject("symbol", s, "must match an exchange-style instrument code")
	}
	return Literal("'" + s + "'"), nil
}

// Column validates a bare column identifier. The result is unquoted; the
// pattern itself guarantees it cannot terminate or extend a SQL clause.
func Column(field, s string) (Literal, error) {
	if !identPattern.MatchString(s) {
		return "", reject(field, s, "must be a plain lowercase identifier")
	}
	return Literal(s), nil
}

// Date validates an ISO calendar date and returns a DATE literal.
func Date(field, s string) (Literal, error) {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", reject(field, s, "must be an ISO date (YYYY-MM-DD)")
	}
	return Literal("DATE '" + s + "'"), nil
}

// DateList validates a set of ISO dates and returns a sorted list of DATE
// literals. Sorting makes the output independent of input order, which
// keeps generated SQL byte-identical across calls.
func DateList(field string, dates []string) (List, error) {
	sorted := make([]string, len(dates))
	copy(sorted, dates)
	sort.Strings(sorted)

	parts := make([]string, 0, len(sorted))
	for _, d := range sorted {
		lit, err := Date(field, d)
		if err != nil {
			return "", err
		}
		parts = append(parts, string(lit))
	}
	return List(strings.Join(parts, ", ")), nil
}

// Time validates a local time of day in HH:MM or HH:MM:SS form and
// returns a TIME literal normalized to HH:MM:SS.
func Time(field, s string) (Literal, error) {
	if !timePattern.MatchString(s) {
		return "", reject(field, s, "must be a time of day (HH:MM or HH:MM:SS)")
	}
	layout := "15:04"
	if len(s) == len("15:04:05") {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return "", reject(field, s, "must be a time of day (HH:MM or HH:MM:SS)")
	}
	return Literal("TIME '" + t.Format("15:04:05") + "'"), nil
}

// WeekdayList validates weekday names against the fixed 7-name whitelist
// and returns quoted literals in natural Monday-first order.
func WeekdayList(field string, days []string) (List, error) {
	seen := make(map[string]bool, len(days))
	for _, d := range days {
		ok := false
		for _, name := range WeekdayNames {
			if d == name {
				ok = true
				break
			}
		}
		if !ok {
			return "", reject(field, d, "must be a full English weekday name")
		}
		seen[d] = true
	}

	parts := make([]string, 0, len(seen))
	for _, name := range WeekdayNames {
		if seen[name] {
			parts = append(parts, "'"+name+"'")
		}
	}
	return List(strings.Join(parts, ", ")), nil
}

// MonthList validates month names against the fixed 12-name whitelist
// and returns quoted literals in natural January-first order.
func MonthList(field string, months []string) (List, error) {
	seen := make(map[string]bool, len(months))
	for _, m := range months {
		ok := false
		for _, name := range MonthNames {
			if m == name {
				ok = true
				break
			}
		}
		if !ok {
			return "", reject(field, m, "must be a full English month name")
		}
		seen[m] = true
	}

	parts := make([]string, 0, len(seen))
	for _, name := range MonthNames {
		if seen[name] {
			parts = append(parts, "'"+name+"'")
		}
	}
	return List(strings.Join(parts, ", ")), nil
}

// IntKind selects the range check applied by IntList.
type IntKind int

const (
	// IntPlain applies no range check beyond integer-ness.
	IntPlain IntKind = iota
	// IntYear requires a plausible 4-digit calendar year.
	IntYear
	// IntMonth requires a calendar month number, 1 through 12.
	IntMonth
)

// IntList validates a set of integers and returns them as a sorted,
// comma-joined list. Integers carry no quoting concerns; the check here
// is range sanity so nonsense like year 99999 is rejected up front.
func IntList(field string, vals []int, kind IntKind) (List, error) {
	sorted := make([]int, len(vals))
	copy(sorted, vals)
	sort.Ints(sorted)

	parts := make([]string, 0, len(sorted))
	for _, v := range sorted {
		switch kind {
		case IntYear:
			if v < 1900 || v > 2200 {
				return "", reject(field, strconv.Itoa(v), "must be a 4-digit calendar year")
			}
		case IntMonth:
			if v < 1 || v > 12 {
				return "", reject(field, strconv.Itoa(v), "must be a month number 1..12")
			}
		}
		parts = append(parts, strconv.Itoa(v))
	}
	return List(strings.Join(parts, ", ")), nil
}

// String returns the literal as plain SQL text.
func (l Literal) String() string { return string(l) }

// String returns the list as plain SQL text.
func (l List) String() string { return string(l) }
