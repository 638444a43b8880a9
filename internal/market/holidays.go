package market

import (
	"fmt"
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// YearHolidays lists an instrument's non-standard trading days for one
// calendar year, as sorted ISO dates.
type YearHolidays struct {
	FullClose  []string // market fully closed
	EarlyClose []string // market closes early
}

// HolidayProvider answers holiday lookups keyed by (symbol, year). An
// implementation must be pure and deterministic per key: the generator
// relies on that to produce byte-identical SQL for identical specs.
type HolidayProvider interface {
	HolidaysForYear(symbol string, year int) (YearHolidays, error)
}

// StaticProvider is a map-backed HolidayProvider for tests and offline
// fixtures.
type StaticProvider struct {
	table map[string]map[int]YearHolidays
}

// NewStaticProvider creates an empty StaticProvider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{table: make(map[string]map[int]YearHolidays)}
}

// Add registers the holidays for one (symbol, year).
func (p *StaticProvider) Add(symbol string, year int, h YearHolidays) *StaticProvider {
	if p.table[symbol] == nil {
		p.table[symbol] = make(map[int]YearHolidays)
	}
	p.table[symbol][year] = h
	return p
}

// HolidaysForYear returns the registered holidays, or an empty set when
// the (symbol, year) is unknown.
func (p *StaticProvider) HolidaysForYear(symbol string, year int) (YearHolidays, error) {
	return p.table[symbol][year], nil
}

// CalendarProvider derives holiday rules from exchange calendars
// (scmhub/calendar), picking the calendar by the symbol's listing
// suffix.
type CalendarProvider struct{}

// micForSymbol maps a ticker suffix to an ISO 10383 MIC. Bare US tickers
// and futures codes fall through to NYSE.
func micForSymbol(symbol string) string {
	suffixes := []struct{ suffix, mic string }{
		{".L", "xlon"}, {".PA", "xpar"}, {".DE", "xfra"}, {".AS", "xams"},
		{".MI", "xmil"}, {".MC", "xmad"}, {".ST", "xsto"}, {".SW", "xswx"},
		{".TO", "xtse"}, {".T", "xtks"}, {".HK", "xhkg"}, {".AX", "xasx"},
		{".KS", "xkrx"}, {".SS", "xshg"}, {".SZ", "xshe"},
	}
	for _, s := range suffixes {
		if strings.HasSuffix(symbol, s.suffix) {
			return s.mic
		}
	}
	return "xnys"
}

// HolidaysForYear scans the year's weekdays against the exchange
// calendar. Weekends are not holidays — they are excluded by weekday
// filters, not holiday policy.
func (p *CalendarProvider) HolidaysForYear(symbol string, year int) (YearHolidays, error) {
	mic := micForSymbol(symbol)
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}
	if cal == nil {
		return YearHolidays{}, fmt.Errorf("no exchange calendar for symbol %q (mic %s)", symbol, mic)
	}

	loc := cal.Loc
	if loc == nil {
		loc = time.UTC
	}

	var out YearHolidays
	day := time.Date(year, time.January, 1, 12, 0, 0, 0, loc)
	for day.Year() == year {
		wd := day.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			switch {
			case cal.IsHoliday(day):
				out.FullClose = append(out.FullClose, day.Format("2006-01-02"))
			case cal.IsEarlyClose(day):
				out.EarlyClose = append(out.EarlyClose, day.Format("2006-01-02"))
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return out, nil
}
