package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/barsql/internal/queryspec"
)

func TestResolveGrouping_Weekday(t *testing.T) {
	a := testAssembler()
	spec := minuteSpec()
	spec.Source = queryspec.SourceDaily
	spec.Grouping = queryspec.GroupingWeekday

	src, err := a.buildSource(spec)
	require.NoError(t, err)
	ge, err := a.resolveGrouping(spec, src)
	require.NoError(t, err)

	assert.Equal(t, []string{"DAYNAME(date) AS weekday", "DAYOFWEEK(date) AS day_num"}, ge.selectCols)
	assert.Equal(t, []string{"DAYNAME(date)", "DAYOFWEEK(date)"}, ge.groupBy)
	assert.Equal(t, "DAYOFWEEK(date)", ge.orderBy)
}

func TestResolveGrouping_IntradayBucketIsTimeOnly(t *testing.T) {
	a := testAssembler()
	spec := minuteSpec()
	spec.Grouping = queryspec.Grouping15Min

	src, err := a.buildSource(spec)
	require.NoError(t, err)
	ge, err := a.resolveGrouping(spec, src)
	require.NoError(t, err)

	// The cast to TIME is what merges the same slot across days.
	expr := "CAST(time_bucket(INTERVAL '15 minutes', ts) AS TIME)"
	assert.Equal(t, []string{expr + " AS time_bucket"}, ge.selectCols)
	assert.Equal(t, []string{expr}, ge.groupBy)
	assert.Equal(t, expr, ge.orderBy)
}

func TestResolveGrouping_Session(t *testing.T) {
	a := testAssembler()
	spec := minuteSpec()
	spec.Grouping = queryspec.GroupingSession

	src, err := a.buildSource(spec)
	require.NoError(t, err)
	ge, err := a.resolveGrouping(spec, src)
	require.NoError(t, err)

	expr := "CASE WHEN ts::time BETWEEN TIME '09:30:00' AND TIME '16:00:00' THEN 'RTH' ELSE 'ETH' END"
	assert.Equal(t, []string{expr + " AS session"}, ge.selectCols)
	assert.Equal(t, []string{expr}, ge.groupBy)
}

func TestResolveGrouping_QuarterGroupsYearAndQuarter(t *testing.T) {
	a := testAssembler()
	spec := minuteSpec()
	spec.Source = queryspec.SourceDaily
	spec.Grouping = queryspec.GroupingQuarter

	src, err := a.buildSource(spec)
	require.NoError(t, err)
	ge, err := a.resolveGrouping(spec, src)
	require.NoError(t, err)

	assert.Equal(t, []string{"YEAR(date) AS year", "QUARTER(date) AS quarter"}, ge.selectCols)
	assert.Equal(t, "YEAR(date), QUARTER(date)", ge.orderBy)
}

func TestResolveGrouping_DayOnMinutes(t *testing.T) {
	a := testAssembler()
	spec := minuteSpec()
	spec.Grouping = queryspec.GroupingDay

	src, err := a.buildSource(spec)
	require.NoError(t, err)
	ge, err := a.resolveGrouping(spec, src)
	require.NoError(t, err)

	// Raw minutes have no date column; the grouping derives one.
	assert.Equal(t, []string{"ts::date AS date"}, ge.selectCols)
	assert.Equal(t, []string{"ts::date"}, ge.groupBy)
}
