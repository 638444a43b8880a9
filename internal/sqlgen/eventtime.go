package sqlgen

import (
	"fmt"
	"strings"

	"github.com/roach88/barsql/internal/queryspec"
)

// extremumSelect renders the per-day extremum search for one side. The
// tie-break is fixed: when the extreme value recurs within a day, the
// earliest timestamp wins, so ts ASC always follows the value ordering.
func extremumSelect(side queryspec.Extremum, valueCol bool) string {
	var orderBy, valueExpr string
	switch side {
	case queryspec.ExtremumHigh:
		orderBy = "high DESC, ts ASC"
		valueExpr = "MAX(high)"
	case queryspec.ExtremumLow:
		orderBy = "low ASC, ts ASC"
		valueExpr = "MIN(low)"
	default:
		panic(fmt.Sprintf("unreachable: extremum side %q", string(side)))
	}

	var b strings.Builder
	b.WriteString("  SELECT\n")
	b.WriteString("    ts::date AS date,\n")
	b.WriteString(fmt.Sprintf("    '%s' AS event_type,\n", string(side)))
	b.WriteString(fmt.Sprintf("    FIRST(ts ORDER BY %s) AS event_ts", orderBy))
	if valueCol {
		b.WriteString(fmt.Sprintf(",\n    %s AS value", valueExpr))
	}
	b.WriteString("\n  FROM minute_bars\n")
	b.WriteString("  GROUP BY ts::date")
	return b.String()
}

// sides expands a find target into the extremum sides to search.
func sides(find queryspec.Extremum) []queryspec.Extremum {
	if find == queryspec.ExtremumBoth {
		return []queryspec.Extremum{queryspec.ExtremumHigh, queryspec.ExtremumLow}
	}
	return []queryspec.Extremum{find}
}

// buildEventTime answers "when does the daily extreme usually happen":
// find the extremum timestamp per trading day, floor those timestamps
// into the spec's intraday bucket, and report each bucket's frequency
// and share of the total for its event type.
func (a *Assembler) buildEventTime(spec queryspec.QuerySpec) (string, error) {
	src, err := a.buildSource(spec)
	if err != nil {
		return "", err
	}

	interval, ok := spec.GroupBy().BucketInterval()
	if !ok {
		// Validate guarantees an intraday grouping for event_time.
		panic(fmt.Sprintf("unreachable: event_time with grouping %q", string(spec.Grouping)))
	}
	bucketExpr := fmt.Sprintf("CAST(time_bucket(INTERVAL '%s', event_ts) AS TIME)", interval)

	var eventSelects []string
	for _, side := range sides(spec.EventTime.Find) {
		eventSelects = append(eventSelects, extremumSelect(side, false))
	}

	var b strings.Builder
	b.WriteString(src.sql)
	b.WriteString(",\ndaily_events AS (\n")
	b.WriteString(strings.Join(eventSelects, "\n  UNION ALL\n"))
	b.WriteString("\n),\nbucketed AS (\n")
	b.WriteString("  SELECT\n")
	b.WriteString("    event_type,\n")
	b.WriteString("    " + bucketExpr + " AS time_bucket,\n")
	b.WriteString("    COUNT(*) AS frequency\n")
	b.WriteString("  FROM daily_events\n")
	b.WriteString("  GROUP BY event_type, " + bucketExpr + "\n")
	b.WriteString(")\n")
	b.WriteString("SELECT\n")
	b.WriteString("  event_type,\n")
	b.WriteString("  time_bucket,\n")
	b.WriteString("  frequency,\n")
	b.WriteString("  ROUND(100.0 * frequency / SUM(frequency) OVER (PARTITION BY event_type), 2) AS percentage\n")
	b.WriteString("FROM bucketed\n")
	b.WriteString("ORDER BY event_type, time_bucket")
	return b.String(), nil
}

// buildFindExtremum answers "when exactly did the extreme happen on
// these days": one row per trading day with the extremum's timestamp and
// value, no bucketing. The distribution view of the same search is
// buildEventTime.
func (a *Assembler) buildFindExtremum(spec queryspec.QuerySpec) (string, error) {
	src, err := a.buildSource(spec)
	if err != nil {
		return "", err
	}

	sideList := sides(spec.FindExtremum.Find)
	var selects []string
	for _, side := range sideList {
		// Top-level selects are not CTE bodies; strip the two-space
		// body indent extremumSelect applies.
		selects = append(selects, unindent(extremumSelect(side, true)))
	}

	var b strings.Builder
	b.WriteString(src.sql)
	b.WriteString("\n")
	b.WriteString(strings.Join(selects, "\nUNION ALL\n"))
	if len(sideList) > 1 {
		b.WriteString("\nORDER BY date, event_type")
	} else {
		b.WriteString("\nORDER BY date")
	}
	return b.String(), nil
}

func unindent(block string) string {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, "  ")
	}
	return strings.Join(lines, "\n")
}
