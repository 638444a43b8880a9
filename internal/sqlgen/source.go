package sqlgen

import (
	"fmt"
	"strings"

	"github.com/roach88/barsql/internal/queryspec"
	"github.com/roach88/barsql/internal/sqlsafe"
)

// baseTable is the minute-resolution bar store:
// bars(symbol, ts, open, high, low, close, volume).
const baseTable = "bars"

// dailyAggColumns aggregates minute bars into one trading-day candle.
// FIRST/LAST with ORDER BY pin open and close to the earliest and latest
// minute of the day. The tail columns are the derived candle geometry.
var dailyAggColumns = []string{
	"ts::date AS date",
	"FIRST(open ORDER BY ts) AS open",
	"MAX(high) AS high",
	"MIN(low) AS low",
	"LAST(close ORDER BY ts) AS close",
	"SUM(volume) AS volume",
	"MAX(high) - MIN(low) AS range",
	"(LAST(close ORDER BY ts) - FIRST(open ORDER BY ts)) / FIRST(open ORDER BY ts) * 100 AS change_pct",
	"LAST(close ORDER BY ts) - MIN(low) AS close_to_low",
	"MAX(high) - LAST(close ORDER BY ts) AS close_to_high",
	"MAX(high) - FIRST(open ORDER BY ts) AS open_to_high",
	"FIRST(open ORDER BY ts) - MIN(low) AS open_to_low",
	"ABS(LAST(close ORDER BY ts) - FIRST(open ORDER BY ts)) AS body",
	"MAX(high) - GREATEST(FIRST(open ORDER BY ts), LAST(close ORDER BY ts)) AS upper_wick",
	"LEAST(FIRST(open ORDER BY ts), LAST(close ORDER BY ts)) - MIN(low) AS lower_wick",
}

// lagColumns derive the prior trading day's view for gap analysis,
// ordered by trading date.
var lagColumns = []string{
	"LAG(close) OVER (ORDER BY date) AS prev_close",
	"LAG(change_pct) OVER (ORDER BY date) AS prev_change_pct",
	"(open - LAG(close) OVER (ORDER BY date)) / LAG(close) OVER (ORDER BY date) * 100 AS gap_pct",
}

// sourceCTE is a rendered base CTE chain plus what the assembler needs
// to reference it: the final CTE name, the date column for calendar
// grouping, and the natural order column for ungrouped output.
type sourceCTE struct {
	sql      string
	name     string
	dateCol  string
	orderCol string
}

// buildSource renders the WITH clause for the spec's source. The Source
// enum is closed and checked by Validate; a value outside it here is a
// broken caller contract.
func (a *Assembler) buildSource(spec queryspec.QuerySpec) (sourceCTE, error) {
	switch spec.Source {
	case queryspec.SourceMinutes:
		return a.buildMinutes(spec)
	case queryspec.SourceDaily:
		return a.buildDaily(spec, false)
	case queryspec.SourceDailyWithPrev:
		return a.buildDaily(spec, true)
	}
	panic(fmt.Sprintf("unreachable: unknown source %q", string(spec.Source)))
}

// baseConditions renders the WHERE terms every scan of the bar table
// starts with: the symbol and the half-open period interval.
func baseConditions(spec queryspec.QuerySpec) ([]string, error) {
	sym, err := sqlsafe.Symbol(spec.Symbol)
	if err != nil {
		return nil, err
	}
	conds := []string{fmt.Sprintf("symbol = %s", sym)}

	if spec.Filters.HasPeriod() {
		start, err := sqlsafe.Date("filters.period_start", spec.Filters.PeriodStart)
		if err != nil {
			return nil, err
		}
		end, err := sqlsafe.Date("filters.period_end", spec.Filters.PeriodEnd)
		if err != nil {
			return nil, err
		}
		conds = append(conds, fmt.Sprintf("ts >= %s", start), fmt.Sprintf("ts < %s", end))
	}
	return conds, nil
}

// buildMinutes scans raw bars. All filters — time of day, calendar,
// holiday — apply directly to minute rows.
func (a *Assembler) buildMinutes(spec queryspec.QuerySpec) (sourceCTE, error) {
	conds, err := baseConditions(spec)
	if err != nil {
		return sourceCTE{}, err
	}
	extra, err := a.rowFilters(spec, "ts::date")
	if err != nil {
		return sourceCTE{}, err
	}
	conds = append(conds, extra...)

	var b strings.Builder
	b.WriteString("WITH minute_bars AS (\n")
	b.WriteString("  SELECT *\n")
	b.WriteString("  FROM " + baseTable + "\n")
	b.WriteString(whereBlock("  ", conds))
	b.WriteString("\n)")

	return sourceCTE{
		sql:      b.String(),
		name:     "minute_bars",
		dateCol:  "ts::date",
		orderCol: "ts",
	}, nil
}

// buildDaily aggregates minutes into daily candles, then applies the
// calendar and holiday filters over the aggregated rows. Those filters
// must see whole trading days, never partial-day slices, which is why
// they sit in the second stage while the time-of-day filter restricts
// the raw minutes feeding the aggregation. With prev columns requested,
// the lag window sits between the two stages so prior-day references
// always point at the adjacent trading day.
func (a *Assembler) buildDaily(spec queryspec.QuerySpec, withPrev bool) (sourceCTE, error) {
	conds, err := baseConditions(spec)
	if err != nil {
		return sourceCTE{}, err
	}
	tf, err := a.timeFilter(spec)
	if err != nil {
		return sourceCTE{}, err
	}
	if tf != "" {
		conds = append(conds, tf)
	}

	var dayConds []string
	cf, err := calendarFilter(spec.Filters, "date")
	if err != nil {
		return sourceCTE{}, err
	}
	if cf != "" {
		dayConds = append(dayConds, cf)
	}
	hf, err := a.holidayFilter(spec, "date")
	if err != nil {
		return sourceCTE{}, err
	}
	if hf != "" {
		dayConds = append(dayConds, hf)
	}

	var b strings.Builder
	b.WriteString("WITH daily_raw AS (\n")
	b.WriteString("  SELECT\n    ")
	b.WriteString(strings.Join(dailyAggColumns, ",\n    "))
	b.WriteString("\n  FROM " + baseTable + "\n")
	b.WriteString(whereBlock("  ", conds))
	b.WriteString("\n  GROUP BY ts::date")
	b.WriteString("\n)")

	name := "daily"
	if withPrev {
		// LAG must see every trading day: filtering first would make
		// prev_close skip over excluded days and misstate the gap. The
		// window runs over the unfiltered aggregation; calendar and
		// holiday filters apply afterwards.
		b.WriteString(",\ndaily_lagged AS (\n")
		b.WriteString("  SELECT\n    *,\n    ")
		b.WriteString(strings.Join(lagColumns, ",\n    "))
		b.WriteString("\n  FROM daily_raw\n")
		b.WriteString("),\ndaily_prev AS (\n")
		b.WriteString("  SELECT *\n")
		b.WriteString("  FROM daily_lagged")
		if len(dayConds) > 0 {
			b.WriteString("\n" + whereBlock("  ", dayConds))
		}
		b.WriteString("\n)")
		name = "daily_prev"
	} else {
		b.WriteString(",\ndaily AS (\n")
		b.WriteString("  SELECT *\n")
		b.WriteString("  FROM daily_raw")
		if len(dayConds) > 0 {
			b.WriteString("\n" + whereBlock("  ", dayConds))
		}
		b.WriteString("\n)")
	}

	return sourceCTE{
		sql:      b.String(),
		name:     name,
		dateCol:  "date",
		orderCol: "date",
	}, nil
}

// dailyAggCTE renders one named minute→daily aggregation CTE body with
// an extra row filter appended. Used by the session comparison, where
// each compared session needs its own independently time-filtered
// aggregation.
func dailyAggCTE(name string, conds []string) string {
	var b strings.Builder
	b.WriteString(name + " AS (\n")
	b.WriteString("  SELECT\n    ")
	b.WriteString(strings.Join(dailyAggColumns, ",\n    "))
	b.WriteString("\n  FROM " + baseTable + "\n")
	b.WriteString(whereBlock("  ", conds))
	b.WriteString("\n  GROUP BY ts::date")
	b.WriteString("\n)")
	return b.String()
}

// whereBlock lays out WHERE conditions one per line, AND-continued.
func whereBlock(indent string, conds []string) string {
	var b strings.Builder
	b.WriteString(indent + "WHERE " + conds[0])
	for _, c := range conds[1:] {
		b.WriteString("\n" + indent + "  AND " + c)
	}
	return b.String()
}
