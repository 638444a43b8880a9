package queryspec

import (
	"fmt"
	"strings"

	"github.com/roach88/barsql/internal/sqlsafe"
)

// ValidationError describes one structural problem in a QuerySpec.
type ValidationError struct {
	Field   string // dotted path into the spec, e.g. "top_n.n"
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is the collected result of Validate. Validation never
// stops at the first problem: a caller gets every error in one pass.
type ValidationErrors []*ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("invalid query spec: %s", strings.Join(parts, "; "))
}

// Validate checks the spec for structural consistency and returns all
// problems at once, or nil when the spec is well-formed. It is a pure
// function: no field is coerced or defaulted.
func (s QuerySpec) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if s.Symbol == "" {
		add("symbol", "symbol is required")
	} else if _, err := sqlsafe.Symbol(s.Symbol); err != nil {
		add("symbol", "not a valid instrument code")
	}

	if !s.Source.known() {
		add("source", "unknown source %q", string(s.Source))
	}
	if !s.Grouping.norm().known() {
		add("grouping", "unknown grouping %q", string(s.Grouping))
	}
	if !s.SpecialOp.known() {
		add("special_op", "unknown special op %q", string(s.SpecialOp))
	}

	s.validateFilters(add)
	s.validateMetrics(add)
	s.validatePayloads(add)
	s.validateOrdering(add)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s QuerySpec) validateFilters(add func(string, string, ...any)) {
	f := s.Filters

	hasStart := f.PeriodStart != "" && f.PeriodStart != "all"
	hasEnd := f.PeriodEnd != "" && f.PeriodEnd != "all"
	if hasStart != hasEnd {
		add("filters.period_start", "period_start and period_end must be set together (or both \"all\")")
	}
	if hasStart {
		if _, err := sqlsafe.Date("filters.period_start", f.PeriodStart); err != nil {
			add("filters.period_start", "not an ISO date")
		}
	}
	if hasEnd {
		if _, err := sqlsafe.Date("filters.period_end", f.PeriodEnd); err != nil {
			add("filters.period_end", "not an ISO date")
		}
	}

	if _, err := sqlsafe.DateList("filters.specific_dates", f.SpecificDates); err != nil {
		add("filters.specific_dates", "contains a value that is not an ISO date")
	}
	if _, err := sqlsafe.IntList("filters.years", f.Years, sqlsafe.IntYear); err != nil {
		add("filters.years", "contains a value that is not a calendar year")
	}
	if _, err := sqlsafe.IntList("filters.months", f.Months, sqlsafe.IntMonth); err != nil {
		add("filters.months", "contains a value outside 1..12")
	}
	if _, err := sqlsafe.WeekdayList("filters.weekdays", f.Weekdays); err != nil {
		add("filters.weekdays", "contains a value that is not a weekday name")
	}

	hasCustomWindow := f.TimeStart != "" || f.TimeEnd != ""
	if hasCustomWindow {
		if f.TimeStart == "" || f.TimeEnd == "" {
			add("filters.time_start", "time_start and time_end must be set together")
		}
		if f.Session != "" {
			add("filters.session", "session and a custom time window are mutually exclusive")
		}
		if f.TimeStart != "" {
			if _, err := sqlsafe.Time("filters.time_start", f.TimeStart); err != nil {
				add("filters.time_start", "not a time of day")
			}
		}
		if f.TimeEnd != "" {
			if _, err := sqlsafe.Time("filters.time_end", f.TimeEnd); err != nil {
				add("filters.time_end", "not a time of day")
			}
		}
	}

	if !f.MarketHolidays.known() {
		add("filters.market_holidays", "unknown holiday policy %q", string(f.MarketHolidays))
	}
	if !f.EarlyCloseDays.known() {
		add("filters.early_close_days", "unknown holiday policy %q", string(f.EarlyCloseDays))
	}

	for i, c := range f.Conditions {
		field := fmt.Sprintf("filters.conditions[%d]", i)
		if !conditionOperators[c.Operator] {
			add(field, "unknown operator %q", c.Operator)
		}
		if _, err := sqlsafe.Column(field, c.Column); err != nil {
			add(field, "not a valid column name")
		}
	}
}

func (s QuerySpec) validateMetrics(add func(string, string, ...any)) {
	for i, m := range s.Metrics {
		field := fmt.Sprintf("metrics[%d]", i)
		if !m.Metric.known() {
			add(field, "unknown metric %q", string(m.Metric))
			continue
		}
		if m.Metric == MetricCount {
			continue
		}
		if m.Column == "" {
			add(field, "metric %s requires a column", string(m.Metric))
		} else if _, err := sqlsafe.Column(field, m.Column); err != nil {
			add(field, "not a valid column name")
		}
		if m.Alias != "" {
			if _, err := sqlsafe.Column(field+".alias", m.Alias); err != nil {
				add(field, "not a valid alias")
			}
		}
	}
}

// validatePayloads enforces the core invariant: exactly the payload named
// by special_op is populated, and its fields are consistent.
func (s QuerySpec) validatePayloads(add func(string, string, ...any)) {
	op := s.Op()

	type payload struct {
		name string
		set  bool
		op   SpecialOp
	}
	payloads := []payload{
		{"event_time", s.EventTime != nil, OpEventTime},
		{"find_extremum", s.FindExtremum != nil, OpFindExtremum},
		{"top_n", s.TopN != nil, OpTopN},
		{"compare", s.Compare != nil, OpCompare},
	}
	for _, p := range payloads {
		if p.set && op != p.op {
			add(p.name, "payload populated but special_op is %q", string(op))
		}
		if !p.set && op == p.op {
			add(p.name, "special_op %q requires the %s payload", string(op), p.name)
		}
	}

	switch op {
	case OpEventTime:
		if s.EventTime != nil && !s.EventTime.Find.known() {
			add("event_time.find", "must be high, low, or both")
		}
		if !s.GroupBy().IsIntraday() {
			add("grouping", "event_time requires an intraday time-bucket grouping")
		}
	case OpFindExtremum:
		if s.FindExtremum != nil && !s.FindExtremum.Find.known() {
			add("find_extremum.find", "must be high, low, or both")
		}
	case OpTopN:
		// The rewrite turns top_n into ORDER BY + LIMIT on the grouped
		// rows, so the same single-row rule as a literal limit applies.
		if s.GroupBy() == GroupingTotal {
			add("top_n", "top_n is meaningless on a single-row total grouping")
		}
		if s.TopN != nil {
			if s.TopN.N <= 0 {
				add("top_n.n", "must be a positive integer")
			}
			if s.TopN.OrderBy == "" {
				add("top_n.order_by", "order_by is required")
			} else if _, err := sqlsafe.Column("top_n.order_by", s.TopN.OrderBy); err != nil {
				add("top_n.order_by", "not a valid column name")
			}
			if !validDirection(s.TopN.Direction) {
				add("top_n.direction", "must be asc or desc")
			}
		}
	case OpCompare:
		if s.Compare != nil && len(s.Compare.Items) == 0 {
			add("compare.items", "at least one item is required")
		}
	}

	// Event-time and find-extremum search raw minutes for the daily
	// extremum; a pre-aggregated source has no intraday timestamps left.
	if (op == OpEventTime || op == OpFindExtremum) && s.Source != SourceMinutes {
		add("source", "%s requires the minutes source", string(op))
	}
}

func (s QuerySpec) validateOrdering(add func(string, string, ...any)) {
	if s.OrderBy != "" {
		if _, err := sqlsafe.Column("order_by", s.OrderBy); err != nil {
			add("order_by", "not a valid column name")
		}
	}
	if s.OrderDirection != "" && !validDirection(s.OrderDirection) {
		add("order_direction", "must be asc or desc")
	}
	if s.Limit < 0 {
		add("limit", "must be a positive integer")
	}
	if s.Limit > 0 && s.GroupBy() == GroupingTotal {
		add("limit", "limit is meaningless on a single-row total grouping")
	}

	g := s.GroupBy()
	if g.IsIntraday() && s.Source != SourceMinutes {
		add("grouping", "intraday bucket grouping requires the minutes source")
	}
	if g == GroupingSession && s.Source != SourceMinutes {
		add("grouping", "session grouping requires the minutes source")
	}
}

func validDirection(d OrderDirection) bool {
	switch strings.ToLower(string(d)) {
	case string(OrderAsc), string(OrderDesc):
		return true
	}
	return false
}
