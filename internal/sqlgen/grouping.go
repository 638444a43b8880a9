package sqlgen

import (
	"fmt"

	"github.com/roach88/barsql/internal/queryspec"
	"github.com/roach88/barsql/internal/sqlsafe"
)

// groupingExprs is the resolved SQL for one grouping: the SELECT columns
// that label each bucket, the GROUP BY expressions, and the natural
// ORDER BY expression.
type groupingExprs struct {
	selectCols []string
	groupBy    []string
	orderBy    string
}

// resolveGrouping maps a calendar or intraday grouping onto its SQL
// expressions. NONE and TOTAL never reach here — the assembler handles
// them before dispatch. The Grouping enum is closed and validated; an
// unknown value is a broken caller contract.
func (a *Assembler) resolveGrouping(spec queryspec.QuerySpec, src sourceCTE) (groupingExprs, error) {
	g := spec.GroupBy()
	d := src.dateCol

	if iv, ok := g.BucketInterval(); ok {
		// Intraday buckets floor the timestamp, then cast to a
		// time-only value so the same slot across many days merges
		// into one bucket. That cast is what separates these from
		// calendar groupings.
		expr := fmt.Sprintf("CAST(time_bucket(INTERVAL '%s', ts) AS TIME)", iv)
		return groupingExprs{
			selectCols: []string{expr + " AS time_bucket"},
			groupBy:    []string{expr},
			orderBy:    expr,
		}, nil
	}

	switch g {
	case queryspec.GroupingDay:
		sel := d
		if d != "date" {
			sel = d + " AS date"
		}
		return groupingExprs{
			selectCols: []string{sel},
			groupBy:    []string{d},
			orderBy:    d,
		}, nil

	case queryspec.GroupingWeek:
		expr := fmt.Sprintf("DATE_TRUNC('week', %s)", d)
		return groupingExprs{
			selectCols: []string{expr + " AS week"},
			groupBy:    []string{expr},
			orderBy:    expr,
		}, nil

	case queryspec.GroupingMonth:
		expr := fmt.Sprintf("DATE_TRUNC('month', %s)", d)
		return groupingExprs{
			selectCols: []string{expr + " AS month"},
			groupBy:    []string{expr},
			orderBy:    expr,
		}, nil

	case queryspec.GroupingQuarter:
		yearExpr := fmt.Sprintf("YEAR(%s)", d)
		qExpr := fmt.Sprintf("QUARTER(%s)", d)
		return groupingExprs{
			selectCols: []string{yearExpr + " AS year", qExpr + " AS quarter"},
			groupBy:    []string{yearExpr, qExpr},
			orderBy:    yearExpr + ", " + qExpr,
		}, nil

	case queryspec.GroupingYear:
		expr := fmt.Sprintf("YEAR(%s)", d)
		return groupingExprs{
			selectCols: []string{expr + " AS year"},
			groupBy:    []string{expr},
			orderBy:    expr,
		}, nil

	case queryspec.GroupingWeekday:
		// Both the name and the number are grouped so ORDER BY can use
		// the numeric form while display uses the name.
		nameExpr := fmt.Sprintf("DAYNAME(%s)", d)
		numExpr := fmt.Sprintf("DAYOFWEEK(%s)", d)
		return groupingExprs{
			selectCols: []string{nameExpr + " AS weekday", numExpr + " AS day_num"},
			groupBy:    []string{nameExpr, numExpr},
			orderBy:    numExpr,
		}, nil

	case queryspec.GroupingSession:
		expr, err := a.sessionCaseExpr(spec.Symbol)
		if err != nil {
			return groupingExprs{}, err
		}
		return groupingExprs{
			selectCols: []string{expr + " AS session"},
			groupBy:    []string{expr},
			orderBy:    expr,
		}, nil
	}

	panic(fmt.Sprintf("unreachable: unknown grouping %q", string(g)))
}

// sessionCaseExpr labels each minute row RTH or ETH using the
// instrument's configured regular-hours boundaries.
func (a *Assembler) sessionCaseExpr(symbol string) (string, error) {
	rth, ok := a.sessions.SessionWindow(symbol, "rth")
	if !ok {
		return "", queryspec.ValidationErrors{{
			Field:   "grouping",
			Message: fmt.Sprintf("no rth session configured for symbol %s", symbol),
		}}
	}
	start, err := sqlsafe.Time("sessions.rth.start", rth.Start)
	if err != nil {
		return "", err
	}
	end, err := sqlsafe.Time("sessions.rth.end", rth.End)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CASE WHEN %s BETWEEN %s AND %s THEN 'RTH' ELSE 'ETH' END", timeCol, start, end), nil
}
