package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider().
		Add("ES", 2024, YearHolidays{
			FullClose:  []string{"2024-01-01", "2024-12-25"},
			EarlyClose: []string{"2024-07-03", "2024-11-29"},
		})

	h, err := p.HolidaysForYear("ES", 2024)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-12-25"}, h.FullClose)
	assert.Equal(t, []string{"2024-07-03", "2024-11-29"}, h.EarlyClose)

	// Unknown keys resolve to empty sets, not errors.
	h, err = p.HolidaysForYear("ES", 2019)
	require.NoError(t, err)
	assert.Empty(t, h.FullClose)
	assert.Empty(t, h.EarlyClose)
}

func TestMicForSymbol(t *testing.T) {
	assert.Equal(t, "xnys", micForSymbol("AAPL"))
	assert.Equal(t, "xnys", micForSymbol("ES"))
	assert.Equal(t, "xlon", micForSymbol("VOD.L"))
	assert.Equal(t, "xtks", micForSymbol("7203.T"))
	assert.Equal(t, "xhkg", micForSymbol("0005.HK"))
}

func TestCalendarProvider_DeterministicPerKey(t *testing.T) {
	p := &CalendarProvider{}

	a, err := p.HolidaysForYear("AAPL", 2024)
	require.NoError(t, err)
	b, err := p.HolidaysForYear("AAPL", 2024)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// NYSE closes on Christmas; it falls on a Wednesday in 2024.
	assert.Contains(t, a.FullClose, "2024-12-25")
}
