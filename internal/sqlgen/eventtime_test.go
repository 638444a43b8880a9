package sqlgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/barsql/internal/queryspec"
)

func eventTimeSpec(find queryspec.Extremum) queryspec.QuerySpec {
	spec := minuteSpec()
	spec.Filters.Session = "rth"
	spec.Grouping = queryspec.Grouping15Min
	spec.SpecialOp = queryspec.OpEventTime
	spec.EventTime = &queryspec.EventTimeSpec{Find: find}
	return spec
}

func TestBuildEventTime_High(t *testing.T) {
	a := testAssembler()

	sql, err := a.Build(eventTimeSpec(queryspec.ExtremumHigh))
	require.NoError(t, err)

	// Per-day extremum search with earliest-timestamp tie-break.
	assert.Contains(t, sql, "FIRST(ts ORDER BY high DESC, ts ASC) AS event_ts")
	// Session window restricts the raw minutes.
	assert.Contains(t, sql, "ts::time BETWEEN TIME '09:30:00' AND TIME '16:00:00'")
	// Time-only bucketing at the requested interval.
	assert.Contains(t, sql, "CAST(time_bucket(INTERVAL '15 minutes', event_ts) AS TIME)")
	// Distribution columns.
	assert.Contains(t, sql, "COUNT(*) AS frequency")
	assert.Contains(t, sql, "SUM(frequency) OVER (PARTITION BY event_type)")
	assert.Contains(t, sql, "AS percentage")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY event_type, time_bucket"))

	// Single side: no union of high and low.
	assert.NotContains(t, sql, "UNION ALL")
	assert.NotContains(t, sql, "'low'")
}

func TestBuildEventTime_BothUnionsAndTags(t *testing.T) {
	a := testAssembler()

	sql, err := a.Build(eventTimeSpec(queryspec.ExtremumBoth))
	require.NoError(t, err)

	assert.Contains(t, sql, "'high' AS event_type")
	assert.Contains(t, sql, "'low' AS event_type")
	assert.Contains(t, sql, "UNION ALL")
	assert.Contains(t, sql, "FIRST(ts ORDER BY low ASC, ts ASC)")
	// Percentages are per event type, not of the combined total.
	assert.Contains(t, sql, "PARTITION BY event_type")
}

func TestBuildFindExtremum_ExactFacts(t *testing.T) {
	a := testAssembler()
	spec := minuteSpec()
	spec.SpecialOp = queryspec.OpFindExtremum
	spec.FindExtremum = &queryspec.FindExtremumSpec{Find: queryspec.ExtremumLow}

	sql, err := a.Build(spec)
	require.NoError(t, err)

	assert.Contains(t, sql, "FIRST(ts ORDER BY low ASC, ts ASC) AS event_ts")
	assert.Contains(t, sql, "MIN(low) AS value")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY date"))
	// Exact facts, not a distribution: no bucketing, no percentages.
	assert.NotContains(t, sql, "time_bucket")
	assert.NotContains(t, sql, "percentage")
}

func TestBuildFindExtremum_Both(t *testing.T) {
	a := testAssembler()
	spec := minuteSpec()
	spec.SpecialOp = queryspec.OpFindExtremum
	spec.FindExtremum = &queryspec.FindExtremumSpec{Find: queryspec.ExtremumBoth}

	sql, err := a.Build(spec)
	require.NoError(t, err)

	assert.Contains(t, sql, "MAX(high) AS value")
	assert.Contains(t, sql, "MIN(low) AS value")
	assert.Contains(t, sql, "UNION ALL")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY date, event_type"))
}
