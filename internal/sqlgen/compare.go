package sqlgen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/barsql/internal/queryspec"
	"github.com/roach88/barsql/internal/sqlsafe"
)

// compareDimension is the inferred comparison axis.
type compareDimension int

const (
	dimWeekday compareDimension = iota
	dimSession
	dimYear
	dimMonth
)

var (
	titleCaser  = cases.Title(language.English)
	yearPattern = regexp.MustCompile(`^\d{4}$`)
)

// defaultCompareMetrics is what a comparison reports when the spec names
// no metrics of its own.
var defaultCompareMetrics = []queryspec.MetricSpec{
	{Metric: queryspec.MetricAvg, Column: "change_pct", Alias: "avg_change_pct"},
	{Metric: queryspec.MetricAvg, Column: "range", Alias: "avg_range"},
	{Metric: queryspec.MetricCount, Alias: "days"},
}

// inferCompareDimension derives the comparison axis from the shape of
// the items: all weekday names → weekday, all configured session names →
// session, all 4-digit numerals → year, all month names → month.
// Name matching is case-insensitive; the returned items are canonical.
func (a *Assembler) inferCompareDimension(spec queryspec.QuerySpec) (compareDimension, []string, error) {
	items := spec.Compare.Items

	titled := make([]string, len(items))
	for i, it := range items {
		titled[i] = titleCaser.String(strings.ToLower(it))
	}

	if allIn(titled, sqlsafe.WeekdayNames) {
		return dimWeekday, titled, nil
	}

	sessions := a.sessions.ListSessions(spec.Symbol)
	lowered := make([]string, len(items))
	for i, it := range items {
		lowered[i] = strings.ToLower(it)
	}
	if allIn(lowered, sessions) {
		return dimSession, lowered, nil
	}

	allYears := true
	for _, it := range items {
		if !yearPattern.MatchString(it) {
			allYears = false
			break
		}
	}
	if allYears {
		return dimYear, items, nil
	}

	if allIn(titled, sqlsafe.MonthNames) {
		return dimMonth, titled, nil
	}

	return 0, nil, queryspec.ValidationErrors{{
		Field:   "compare.items",
		Message: fmt.Sprintf("cannot infer comparison dimension from %v", items),
	}}
}

func allIn(items, allowed []string) bool {
	for _, it := range items {
		found := false
		for _, a := range allowed {
			if it == a {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// buildCompare dispatches on the inferred dimension. Weekday, year, and
// month comparisons share one grouped-CTE shape; session comparison is
// structurally different (one independently time-filtered CTE per item)
// and takes its own path.
func (a *Assembler) buildCompare(spec queryspec.QuerySpec) (string, error) {
	dim, items, err := a.inferCompareDimension(spec)
	if err != nil {
		return "", err
	}
	if dim == dimSession {
		return a.buildSessionCompare(spec, items)
	}
	return a.buildGroupedCompare(spec, dim, items)
}

// buildGroupedCompare emits one daily-aggregation CTE restricted to the
// compared items and grouped by the dimension, ordered by the
// dimension's natural order (Mon..Sun, Jan..Dec, ascending year) rather
// than alphabetically or by aggregate value.
func (a *Assembler) buildGroupedCompare(spec queryspec.QuerySpec, dim compareDimension, items []string) (string, error) {
	// Comparisons read whole trading days; a minute-level spec still
	// compares daily aggregates.
	if spec.Source == queryspec.SourceMinutes {
		spec.Source = queryspec.SourceDaily
	}
	src, err := a.buildSource(spec)
	if err != nil {
		return "", err
	}
	d := src.dateCol

	var labelCol, filter, groupBy, orderBy string
	switch dim {
	case dimWeekday:
		lst, err := sqlsafe.WeekdayList("compare.items", items)
		if err != nil {
			return "", err
		}
		labelCol = fmt.Sprintf("DAYNAME(%s) AS weekday", d)
		filter = fmt.Sprintf("DAYNAME(%s) IN (%s)", d, lst)
		// ISODOW is Monday-first; DAYOFWEEK would put Sunday ahead.
		groupBy = fmt.Sprintf("DAYNAME(%s), ISODOW(%s)", d, d)
		orderBy = fmt.Sprintf("ISODOW(%s)", d)

	case dimMonth:
		lst, err := sqlsafe.MonthList("compare.items", items)
		if err != nil {
			return "", err
		}
		labelCol = fmt.Sprintf("MONTHNAME(%s) AS month", d)
		filter = fmt.Sprintf("MONTHNAME(%s) IN (%s)", d, lst)
		groupBy = fmt.Sprintf("MONTHNAME(%s), MONTH(%s)", d, d)
		orderBy = fmt.Sprintf("MONTH(%s)", d)

	case dimYear:
		years := make([]int, len(items))
		for i, it := range items {
			years[i], _ = strconv.Atoi(it)
		}
		lst, err := sqlsafe.IntList("compare.items", years, sqlsafe.IntYear)
		if err != nil {
			return "", err
		}
		labelCol = fmt.Sprintf("YEAR(%s) AS year", d)
		filter = fmt.Sprintf("YEAR(%s) IN (%s)", d, lst)
		groupBy = fmt.Sprintf("YEAR(%s)", d)
		orderBy = fmt.Sprintf("YEAR(%s)", d)

	default:
		panic(fmt.Sprintf("unreachable: grouped compare dimension %d", dim))
	}

	metricCols, err := compareMetricCols(spec)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(src.sql)
	b.WriteString("\nSELECT\n  " + labelCol + ",\n  ")
	b.WriteString(strings.Join(metricCols, ",\n  "))
	b.WriteString("\nFROM " + src.name)
	b.WriteString("\nWHERE " + filter)
	b.WriteString("\nGROUP BY " + groupBy)
	b.WriteString("\nORDER BY " + orderBy)
	return b.String(), nil
}

// buildSessionCompare emits one independently time-filtered daily
// aggregation per compared session and unions their single-row
// aggregates. Sessions cannot share the grouped path: each one restricts
// a different intraday window, so no single CTE can feed them all.
func (a *Assembler) buildSessionCompare(spec queryspec.QuerySpec, items []string) (string, error) {
	metricCols, err := compareMetricCols(spec)
	if err != nil {
		return "", err
	}

	ctes := make([]string, 0, len(items))
	selects := make([]string, 0, len(items))
	for _, item := range items {
		// Session names double as CTE names and row labels; hold them
		// to plain identifiers even though they matched the config.
		if _, err := sqlsafe.Column("compare.items", item); err != nil {
			return "", err
		}
		w, ok := a.sessions.SessionWindow(spec.Symbol, item)
		if !ok {
			return "", queryspec.ValidationErrors{{
				Field:   "compare.items",
				Message: fmt.Sprintf("unknown session %q for symbol %s", item, spec.Symbol),
			}}
		}
		windowSQL, err := renderWindow(w)
		if err != nil {
			return "", err
		}

		conds, err := baseConditions(spec)
		if err != nil {
			return "", err
		}
		cf, err := calendarFilter(spec.Filters, "ts::date")
		if err != nil {
			return "", err
		}
		if cf != "" {
			conds = append(conds, cf)
		}
		hf, err := a.holidayFilter(spec, "ts::date")
		if err != nil {
			return "", err
		}
		if hf != "" {
			conds = append(conds, hf)
		}
		conds = append(conds, windowSQL)

		cteName := item + "_daily"
		ctes = append(ctes, dailyAggCTE(cteName, conds))

		var sb strings.Builder
		sb.WriteString("SELECT\n")
		sb.WriteString(fmt.Sprintf("  '%s' AS session,\n  ", strings.ToUpper(item)))
		sb.WriteString(strings.Join(metricCols, ",\n  "))
		sb.WriteString("\nFROM " + cteName)
		selects = append(selects, sb.String())
	}

	var b strings.Builder
	b.WriteString("WITH " + strings.Join(ctes, ",\n"))
	b.WriteString("\n")
	b.WriteString(strings.Join(selects, "\nUNION ALL\n"))
	return b.String(), nil
}

func compareMetricCols(spec queryspec.QuerySpec) ([]string, error) {
	metrics := spec.Metrics
	if len(metrics) == 0 {
		metrics = defaultCompareMetrics
	}
	cols := make([]string, 0, len(metrics))
	for _, m := range metrics {
		expr, err := renderMetric(m)
		if err != nil {
			return nil, err
		}
		cols = append(cols, expr)
	}
	return cols, nil
}
