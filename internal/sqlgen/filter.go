package sqlgen

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/roach88/barsql/internal/market"
	"github.com/roach88/barsql/internal/queryspec"
	"github.com/roach88/barsql/internal/sqlsafe"
)

// timeCol is the time-of-day expression over raw minute bars.
const timeCol = "ts::time"

// timeFilter renders the intraday window restriction: either a named
// session resolved through the instrument configuration or the spec's
// custom window. Returns "" when neither is set.
//
// A window whose end precedes its start crosses midnight and is rendered
// as an OR-disjunction, never a BETWEEN. A complement window (extended
// hours defined as "everything outside regular hours") renders as
// NOT BETWEEN.
func (a *Assembler) timeFilter(spec queryspec.QuerySpec) (string, error) {
	f := spec.Filters

	var w market.Window
	switch {
	case f.Session != "":
		var ok bool
		w, ok = a.sessions.SessionWindow(spec.Symbol, f.Session)
		if !ok {
			return "", queryspec.ValidationErrors{{
				Field:   "filters.session",
				Message: fmt.Sprintf("unknown session %q for symbol %s", f.Session, spec.Symbol),
			}}
		}
	case f.TimeStart != "":
		w = market.Window{Start: f.TimeStart, End: f.TimeEnd}
	default:
		return "", nil
	}

	return renderWindow(w)
}

func renderWindow(w market.Window) (string, error) {
	start, err := sqlsafe.Time("filters.time_start", w.Start)
	if err != nil {
		return "", err
	}
	end, err := sqlsafe.Time("filters.time_end", w.End)
	if err != nil {
		return "", err
	}

	switch {
	case w.Complement:
		return fmt.Sprintf("%s NOT BETWEEN %s AND %s", timeCol, start, end), nil
	case w.CrossesMidnight():
		return fmt.Sprintf("(%s >= %s OR %s < %s)", timeCol, start, timeCol, end), nil
	default:
		return fmt.Sprintf("%s BETWEEN %s AND %s", timeCol, start, end), nil
	}
}

// calendarFilter renders the year/month/weekday/specific-date
// restrictions over dateCol, ANDed together. Categories are ORed
// internally via IN lists; empty categories are omitted.
func calendarFilter(f queryspec.Filters, dateCol string) (string, error) {
	var parts []string

	if len(f.Years) > 0 {
		lst, err := sqlsafe.IntList("filters.years", f.Years, sqlsafe.IntYear)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("YEAR(%s) IN (%s)", dateCol, lst))
	}
	if len(f.Months) > 0 {
		lst, err := sqlsafe.IntList("filters.months", f.Months, sqlsafe.IntMonth)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("MONTH(%s) IN (%s)", dateCol, lst))
	}
	if len(f.Weekdays) > 0 {
		lst, err := sqlsafe.WeekdayList("filters.weekdays", f.Weekdays)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("DAYNAME(%s) IN (%s)", dateCol, lst))
	}
	if len(f.SpecificDates) > 0 {
		lst, err := sqlsafe.DateList("filters.specific_dates", f.SpecificDates)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("%s IN (%s)", dateCol, lst))
	}

	return strings.Join(parts, " AND "), nil
}

// holidayFilter renders the holiday policy over dateCol. For each
// calendar year spanned by the query it asks the rule provider for
// full-close and early-close dates, then builds one inclusion or
// exclusion set across both policies.
//
// A non-empty ONLY set always wins: the filter becomes date IN (...),
// and any EXCLUDE set is not emitted. Otherwise an EXCLUDE set becomes
// date NOT IN (...). INCLUDE is a no-op.
func (a *Assembler) holidayFilter(spec queryspec.QuerySpec, dateCol string) (string, error) {
	f := spec.Filters
	fullPolicy := f.MarketHolidays
	earlyPolicy := f.EarlyCloseDays

	activePolicy := func(p queryspec.HolidayPolicy) bool {
		return p == queryspec.HolidayExclude || p == queryspec.HolidayOnly
	}
	if !activePolicy(fullPolicy) && !activePolicy(earlyPolicy) {
		return "", nil
	}

	years := spannedYears(f)
	if len(years) == 0 {
		return "", nil
	}

	var only, excl []string
	for _, year := range years {
		h, err := a.holidays.HolidaysForYear(spec.Symbol, year)
		if err != nil {
			return "", fmt.Errorf("holiday lookup for %s/%d: %w", spec.Symbol, year, err)
		}
		switch fullPolicy {
		case queryspec.HolidayExclude:
			excl = append(excl, h.FullClose...)
		case queryspec.HolidayOnly:
			only = append(only, h.FullClose...)
		}
		switch earlyPolicy {
		case queryspec.HolidayExclude:
			excl = append(excl, h.EarlyClose...)
		case queryspec.HolidayOnly:
			only = append(only, h.EarlyClose...)
		}
	}

	if len(only) > 0 {
		lst, err := sqlsafe.DateList("holidays", only)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s IN (%s)", dateCol, lst), nil
	}
	if len(excl) > 0 {
		lst, err := sqlsafe.DateList("holidays", excl)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s NOT IN (%s)", dateCol, lst), nil
	}
	return "", nil
}

// spannedYears lists the calendar years a query touches: from the period
// interval when one is set (end exclusive), else from an explicit years
// filter. With neither there is no bounded range to resolve holidays
// against, and the holiday filter is skipped.
func spannedYears(f queryspec.Filters) []int {
	if f.HasPeriod() {
		start, err1 := time.Parse("2006-01-02", f.PeriodStart)
		end, err2 := time.Parse("2006-01-02", f.PeriodEnd)
		if err1 != nil || err2 != nil {
			return nil
		}
		last := end.AddDate(0, 0, -1)
		if last.Before(start) {
			return nil
		}
		var years []int
		for y := start.Year(); y <= last.Year(); y++ {
			years = append(years, y)
		}
		return years
	}

	if len(f.Years) > 0 {
		years := make([]int, len(f.Years))
		copy(years, f.Years)
		// Providers are queried in ascending year order so the
		// resulting date sets are stable.
		sort.Ints(years)
		return years
	}
	return nil
}

// rowFilters combines the time, calendar, and holiday filters for
// sources that apply everything at the row level (raw minutes), omitting
// empty parts.
func (a *Assembler) rowFilters(spec queryspec.QuerySpec, dateCol string) ([]string, error) {
	var parts []string

	tf, err := a.timeFilter(spec)
	if err != nil {
		return nil, err
	}
	if tf != "" {
		parts = append(parts, tf)
	}

	cf, err := calendarFilter(spec.Filters, dateCol)
	if err != nil {
		return nil, err
	}
	if cf != "" {
		parts = append(parts, cf)
	}

	hf, err := a.holidayFilter(spec, dateCol)
	if err != nil {
		return nil, err
	}
	if hf != "" {
		parts = append(parts, hf)
	}
	return parts, nil
}
