package sqlgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/barsql/internal/queryspec"
)

func compareSpec(items ...string) queryspec.QuerySpec {
	spec := dailySpec()
	spec.SpecialOp = queryspec.OpCompare
	spec.Compare = &queryspec.CompareSpec{Items: items}
	return spec
}

func TestCompare_Weekday(t *testing.T) {
	a := testAssembler()

	sql, err := a.Build(compareSpec("Monday", "Friday"))
	require.NoError(t, err)

	// One shared daily CTE, filtered and grouped by the dimension.
	assert.Equal(t, 1, strings.Count(sql, "GROUP BY ts::date"))
	assert.Contains(t, sql, "WHERE DAYNAME(date) IN ('Monday', 'Friday')")
	assert.Contains(t, sql, "GROUP BY DAYNAME(date), ISODOW(date)")
	// Natural weekday order, not alphabetical (Friday < Monday).
	assert.True(t, strings.HasSuffix(sql, "ORDER BY ISODOW(date)"))
	// Default comparison metrics.
	assert.Contains(t, sql, "AVG(change_pct) AS avg_change_pct")
	assert.Contains(t, sql, "COUNT(*) AS days")
}

func TestCompare_WeekdayCaseInsensitive(t *testing.T) {
	a := testAssembler()

	sql, err := a.Build(compareSpec("monday", "FRIDAY"))
	require.NoError(t, err)
	assert.Contains(t, sql, "IN ('Monday', 'Friday')")
}

func TestCompare_Year(t *testing.T) {
	a := testAssembler()
	spec := compareSpec("2024", "2023")
	spec.Filters = queryspec.Filters{} // compare across full history

	sql, err := a.Build(spec)
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE YEAR(date) IN (2023, 2024)")
	assert.Contains(t, sql, "GROUP BY YEAR(date)")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY YEAR(date)"))
}

func TestCompare_Month(t *testing.T) {
	a := testAssembler()

	sql, err := a.Build(compareSpec("September", "January"))
	require.NoError(t, err)

	// Natural calendar order, January first.
	assert.Contains(t, sql, "WHERE MONTHNAME(date) IN ('January', 'September')")
	assert.Contains(t, sql, "GROUP BY MONTHNAME(date), MONTH(date)")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY MONTH(date)"))
}

func TestCompare_SessionUnionsIndependentCTEs(t *testing.T) {
	a := testAssembler()

	sql, err := a.Build(compareSpec("RTH", "ETH"))
	require.NoError(t, err)

	// One independently time-filtered aggregation per session.
	assert.Contains(t, sql, "rth_daily AS (")
	assert.Contains(t, sql, "eth_daily AS (")
	assert.Equal(t, 2, strings.Count(sql, "GROUP BY ts::date"))
	assert.Contains(t, sql, "ts::time BETWEEN TIME '09:30:00' AND TIME '16:00:00'")
	assert.Contains(t, sql, "ts::time NOT BETWEEN TIME '09:30:00' AND TIME '16:00:00'")

	// Single-row aggregates unioned in item order.
	assert.Contains(t, sql, "'RTH' AS session")
	assert.Contains(t, sql, "'ETH' AS session")
	assert.Equal(t, 1, strings.Count(sql, "UNION ALL"))
	assert.Less(t, strings.Index(sql, "'RTH' AS session"), strings.Index(sql, "'ETH' AS session"))
}

func TestCompare_UsesSpecMetricsWhenGiven(t *testing.T) {
	a := testAssembler()
	spec := compareSpec("Monday", "Friday")
	spec.Metrics = []queryspec.MetricSpec{
		{Metric: queryspec.MetricMax, Column: "range", Alias: "worst_range"},
	}

	sql, err := a.Build(spec)
	require.NoError(t, err)
	assert.Contains(t, sql, "MAX(range) AS worst_range")
	assert.NotContains(t, sql, "avg_change_pct")
}

func TestCompare_MixedItemsRejected(t *testing.T) {
	a := testAssembler()

	_, err := a.Build(compareSpec("Monday", "2024"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot infer comparison dimension")
}

func TestCompare_MinutesSourceComparesDailyAggregates(t *testing.T) {
	a := testAssembler()
	spec := compareSpec("Monday", "Friday")
	spec.Source = queryspec.SourceMinutes

	sql, err := a.Build(spec)
	require.NoError(t, err)
	assert.Contains(t, sql, "daily AS (")
	assert.Contains(t, sql, "DAYNAME(date)")
}
