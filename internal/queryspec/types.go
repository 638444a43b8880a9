package queryspec

// Source selects the base row set a query runs over.
type Source string

const (
	// SourceMinutes is raw minute-resolution OHLCV bars.
	SourceMinutes Source = "minutes"
	// SourceDaily aggregates minute bars into one row per trading day
	// with derived candle-geometry columns.
	SourceDaily Source = "daily"
	// SourceDailyWithPrev is SourceDaily plus lagged prior-day columns
	// (prev_close, prev_change_pct, gap_pct) for gap analysis.
	SourceDailyWithPrev Source = "daily_with_prev"
)

func (s Source) known() bool {
	switch s {
	case SourceMinutes, SourceDaily, SourceDailyWithPrev:
		return true
	}
	return false
}

// Grouping selects how result rows are bucketed.
//
// Three families: NONE/TOTAL (handled specially by the assembler),
// calendar buckets, and intraday time buckets. Intraday buckets floor a
// timestamp into a repeating time-of-day value, so the same quarter hour
// across many days lands in one bucket — they group time of day, not
// calendar time.
type Grouping string

const (
	GroupingNone    Grouping = "none"
	GroupingTotal   Grouping = "total"
	GroupingDay     Grouping = "day"
	GroupingWeek    Grouping = "week"
	GroupingMonth   Grouping = "month"
	GroupingQuarter Grouping = "quarter"
	GroupingYear    Grouping = "year"
	GroupingWeekday Grouping = "weekday"
	GroupingSession Grouping = "session"

	Grouping1Min  Grouping = "1min"
	Grouping5Min  Grouping = "5min"
	Grouping10Min Grouping = "10min"
	Grouping15Min Grouping = "15min"
	Grouping30Min Grouping = "30min"
	GroupingHour  Grouping = "hour"
	Grouping2Hour Grouping = "2hour"
)

// bucketIntervals maps each intraday grouping to the interval string used
// to floor timestamps into repeating time-of-day buckets.
var bucketIntervals = map[Grouping]string{
	Grouping1Min:  "1 minute",
	Grouping5Min:  "5 minutes",
	Grouping10Min: "10 minutes",
	Grouping15Min: "15 minutes",
	Grouping30Min: "30 minutes",
	GroupingHour:  "1 hour",
	Grouping2Hour: "2 hours",
}

// IsIntraday reports whether g is a repeating time-of-day bucket.
func (g Grouping) IsIntraday() bool {
	_, ok := bucketIntervals[g]
	return ok
}

// BucketInterval returns the SQL interval string for an intraday
// grouping, e.g. "15 minutes" for Grouping15Min.
func (g Grouping) BucketInterval() (string, bool) {
	iv, ok := bucketIntervals[g]
	return iv, ok
}

func (g Grouping) known() bool {
	switch g {
	case GroupingNone, GroupingTotal, GroupingDay, GroupingWeek, GroupingMonth,
		GroupingQuarter, GroupingYear, GroupingWeekday, GroupingSession:
		return true
	}
	return g.IsIntraday()
}

// norm maps the zero value to GroupingNone so omitted fields in authored
// spec files behave like "no grouping".
func (g Grouping) norm() Grouping {
	if g == "" {
		return GroupingNone
	}
	return g
}

// Metric is an aggregate (or passthrough) applied to a column.
type Metric string

const (
	MetricAvg    Metric = "avg"
	MetricSum    Metric = "sum"
	MetricCount  Metric = "count"
	MetricStddev Metric = "stddev"
	MetricMin    Metric = "min"
	MetricMax    Metric = "max"
	// MetricValue passes the column through unaggregated.
	MetricValue Metric = "value"
)

func (m Metric) known() bool {
	switch m {
	case MetricAvg, MetricSum, MetricCount, MetricStddev, MetricMin, MetricMax, MetricValue:
		return true
	}
	return false
}

// MetricSpec is one output column: a metric applied to a column with an
// optional alias. Column is required for every metric except count.
type MetricSpec struct {
	Metric Metric `yaml:"metric" json:"metric"`
	Column string `yaml:"column,omitempty" json:"column,omitempty"`
	Alias  string `yaml:"alias,omitempty" json:"alias,omitempty"`
}

// OrderDirection is the sort direction for explicit ordering.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "asc"
	OrderDesc OrderDirection = "desc"
)

// HolidayPolicy controls how holiday (or early-close) dates interact with
// a query's date range.
type HolidayPolicy string

const (
	// HolidayInclude leaves matching dates in — a no-op.
	HolidayInclude HolidayPolicy = "include"
	// HolidayExclude removes matching dates.
	HolidayExclude HolidayPolicy = "exclude"
	// HolidayOnly restricts the query to matching dates. Only takes
	// precedence over Exclude when both policies produce date sets.
	HolidayOnly HolidayPolicy = "only"
)

func (p HolidayPolicy) known() bool {
	switch p {
	case "", HolidayInclude, HolidayExclude, HolidayOnly:
		return true
	}
	return false
}

// Condition is a numeric filter over a column of the source row set,
// rendered into the outer WHERE clause.
type Condition struct {
	Column   string  `yaml:"column" json:"column"`
	Operator string  `yaml:"operator" json:"operator"`
	Value    float64 `yaml:"value" json:"value"`
}

// conditionOperators is the closed operator whitelist.
var conditionOperators = map[string]bool{
	">": true, "<": true, ">=": true, "<=": true, "=": true, "!=": true,
}

// Filters describes every row-level restriction of a query.
//
// PeriodStart/PeriodEnd form a half-open interval: start inclusive, end
// exclusive. The sentinel "all" (or empty) means the full available
// range. Category filters (years, months, weekdays, specific dates) are
// ANDed across categories and ORed within one. Session and the custom
// time window are mutually exclusive.
type Filters struct {
	PeriodStart   string   `yaml:"period_start,omitempty" json:"period_start,omitempty"`
	PeriodEnd     string   `yaml:"period_end,omitempty" json:"period_end,omitempty"`
	SpecificDates []string `yaml:"specific_dates,omitempty" json:"specific_dates,omitempty"`
	Years         []int    `yaml:"years,omitempty" json:"years,omitempty"`
	Months        []int    `yaml:"months,omitempty" json:"months,omitempty"`
	Weekdays      []string `yaml:"weekdays,omitempty" json:"weekdays,omitempty"`

	Session   string `yaml:"session,omitempty" json:"session,omitempty"`
	TimeStart string `yaml:"time_start,omitempty" json:"time_start,omitempty"`
	TimeEnd   string `yaml:"time_end,omitempty" json:"time_end,omitempty"`

	Conditions []Condition `yaml:"conditions,omitempty" json:"conditions,omitempty"`

	MarketHolidays HolidayPolicy `yaml:"market_holidays,omitempty" json:"market_holidays,omitempty"`
	EarlyCloseDays HolidayPolicy `yaml:"early_close_days,omitempty" json:"early_close_days,omitempty"`
}

// HasPeriod reports whether an explicit date interval is set.
func (f Filters) HasPeriod() bool {
	return f.PeriodStart != "" && f.PeriodStart != "all" &&
		f.PeriodEnd != "" && f.PeriodEnd != "all"
}

// SpecialOp tags the non-standard query shapes.
type SpecialOp string

const (
	OpNone         SpecialOp = "none"
	OpEventTime    SpecialOp = "event_time"
	OpFindExtremum SpecialOp = "find_extremum"
	OpTopN         SpecialOp = "top_n"
	OpCompare      SpecialOp = "compare"
)

func (op SpecialOp) known() bool {
	switch op {
	case "", OpNone, OpEventTime, OpFindExtremum, OpTopN, OpCompare:
		return true
	}
	return false
}

func (op SpecialOp) norm() SpecialOp {
	if op == "" {
		return OpNone
	}
	return op
}

// Extremum selects which daily extreme an event-time or find-extremum
// query targets.
type Extremum string

const (
	ExtremumHigh Extremum = "high"
	ExtremumLow  Extremum = "low"
	ExtremumBoth Extremum = "both"
)

func (e Extremum) known() bool {
	switch e {
	case ExtremumHigh, ExtremumLow, ExtremumBoth:
		return true
	}
	return false
}

// EventTimeSpec asks for the time-of-day distribution of the daily
// extremum, bucketed by the spec's intraday grouping.
type EventTimeSpec struct {
	Find Extremum `yaml:"find" json:"find"`
}

// FindExtremumSpec asks for the exact timestamp and value of the daily
// extremum, one row per day, no bucketing.
type FindExtremumSpec struct {
	Find Extremum `yaml:"find" json:"find"`
}

// TopNSpec is never compiled directly: it rewrites the spec into the
// standard path with ordering and a limit. See RewriteTopN.
type TopNSpec struct {
	N         int            `yaml:"n" json:"n"`
	OrderBy   string         `yaml:"order_by" json:"order_by"`
	Direction OrderDirection `yaml:"direction" json:"direction"`
}

// CompareSpec compares aggregates across category labels. The dimension
// (weekday, session, year, month) is inferred from the shape of Items.
type CompareSpec struct {
	Items []string `yaml:"items" json:"items"`
}

// QuerySpec is the root of the model: one complete query, immutable once
// built. Exactly one special-op payload may be populated, and it must
// match SpecialOp; OpNone implies no payload is read.
type QuerySpec struct {
	Symbol   string   `yaml:"symbol" json:"symbol"`
	Source   Source   `yaml:"source" json:"source"`
	Filters  Filters  `yaml:"filters,omitempty" json:"filters,omitempty"`
	Grouping Grouping `yaml:"grouping,omitempty" json:"grouping,omitempty"`

	Metrics []MetricSpec `yaml:"metrics,omitempty" json:"metrics,omitempty"`

	SpecialOp    SpecialOp         `yaml:"special_op,omitempty" json:"special_op,omitempty"`
	EventTime    *EventTimeSpec    `yaml:"event_time,omitempty" json:"event_time,omitempty"`
	FindExtremum *FindExtremumSpec `yaml:"find_extremum,omitempty" json:"find_extremum,omitempty"`
	TopN         *TopNSpec         `yaml:"top_n,omitempty" json:"top_n,omitempty"`
	Compare      *CompareSpec      `yaml:"compare,omitempty" json:"compare,omitempty"`

	OrderBy        string         `yaml:"order_by,omitempty" json:"order_by,omitempty"`
	OrderDirection OrderDirection `yaml:"order_direction,omitempty" json:"order_direction,omitempty"`
	Limit          int            `yaml:"limit,omitempty" json:"limit,omitempty"`
}

// Op returns the special-op tag with the zero value mapped to OpNone.
func (s QuerySpec) Op() SpecialOp { return s.SpecialOp.norm() }

// GroupBy returns the grouping with the zero value mapped to
// GroupingNone.
func (s QuerySpec) GroupBy() Grouping { return s.Grouping.norm() }
