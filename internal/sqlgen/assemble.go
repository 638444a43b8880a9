package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/barsql/internal/market"
	"github.com/roach88/barsql/internal/queryspec"
	"github.com/roach88/barsql/internal/sqlsafe"
)

// Assembler is the compiler entry point. It holds only its two read-only
// collaborators, so one Assembler can serve any number of concurrent
// Build calls.
type Assembler struct {
	sessions *market.SessionConfig
	holidays market.HolidayProvider
}

// NewAssembler creates an Assembler. A nil session config falls back to
// the built-in defaults; a nil holiday provider falls back to the
// exchange-calendar provider.
func NewAssembler(sessions *market.SessionConfig, holidays market.HolidayProvider) *Assembler {
	if sessions == nil {
		sessions = market.DefaultSessions()
	}
	if holidays == nil {
		holidays = &market.CalendarProvider{}
	}
	return &Assembler{sessions: sessions, holidays: holidays}
}

// Build compiles a spec to SQL text. It validates first (collecting all
// structural errors), rewrites a top-N spec into the standard shape,
// dispatches the self-contained special operations, and otherwise
// assembles the standard CTE → SELECT → WHERE → GROUP BY → ORDER BY →
// LIMIT query.
func (a *Assembler) Build(spec queryspec.QuerySpec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}

	// Single rewrite hop: the result always carries special_op none.
	if spec.Op() == queryspec.OpTopN {
		spec = queryspec.RewriteTopN(spec)
	}

	switch spec.Op() {
	case queryspec.OpEventTime:
		return a.buildEventTime(spec)
	case queryspec.OpFindExtremum:
		return a.buildFindExtremum(spec)
	case queryspec.OpCompare:
		return a.buildCompare(spec)
	}
	return a.buildStandard(spec)
}

func (a *Assembler) buildStandard(spec queryspec.QuerySpec) (string, error) {
	src, err := a.buildSource(spec)
	if err != nil {
		return "", err
	}

	g := spec.GroupBy()
	var ge groupingExprs
	if g != queryspec.GroupingNone && g != queryspec.GroupingTotal {
		ge, err = a.resolveGrouping(spec, src)
		if err != nil {
			return "", err
		}
	}

	selectCols := append([]string{}, ge.selectCols...)
	for _, m := range spec.Metrics {
		expr, err := renderMetric(m)
		if err != nil {
			return "", err
		}
		selectCols = append(selectCols, expr)
	}
	if len(selectCols) == 0 {
		selectCols = []string{"*"}
	}

	var b strings.Builder
	b.WriteString(src.sql)
	b.WriteString("\n" + selectBlock(selectCols))
	b.WriteString("\nFROM " + src.name)

	if len(spec.Filters.Conditions) > 0 {
		conds := make([]string, 0, len(spec.Filters.Conditions))
		for i, c := range spec.Filters.Conditions {
			sql, err := renderCondition(i, c)
			if err != nil {
				return "", err
			}
			conds = append(conds, sql)
		}
		b.WriteString("\n" + whereBlock("", conds))
	}

	if len(ge.groupBy) > 0 {
		b.WriteString("\nGROUP BY " + strings.Join(ge.groupBy, ", "))
	}

	if order := orderClause(spec, ge, src); order != "" {
		b.WriteString("\nORDER BY " + order)
	}

	if spec.Limit > 0 {
		b.WriteString("\nLIMIT " + strconv.Itoa(spec.Limit))
	}

	return b.String(), nil
}

// orderClause picks the ORDER BY expression: an explicit order_by wins,
// then the grouping's natural order, then date/timestamp order for
// ungrouped output. A total grouping returns one row and gets no
// ordering.
func orderClause(spec queryspec.QuerySpec, ge groupingExprs, src sourceCTE) string {
	if spec.OrderBy != "" {
		// Validated as a plain identifier by Validate.
		order := spec.OrderBy
		if spec.OrderDirection != "" {
			order += " " + strings.ToUpper(string(spec.OrderDirection))
		}
		return order
	}
	if ge.orderBy != "" {
		return ge.orderBy
	}
	if spec.GroupBy() == queryspec.GroupingNone {
		return src.orderCol
	}
	return ""
}

func selectBlock(cols []string) string {
	if len(cols) == 1 {
		return "SELECT " + cols[0]
	}
	return "SELECT\n  " + strings.Join(cols, ",\n  ")
}

// renderMetric renders one output column. Aliases default to
// metric_column ("avg_range"); count defaults to "count".
func renderMetric(m queryspec.MetricSpec) (string, error) {
	var expr, alias string

	switch m.Metric {
	case queryspec.MetricCount:
		expr = "COUNT(*)"
		alias = "count"
	case queryspec.MetricValue:
		col, err := sqlsafe.Column("metrics", m.Column)
		if err != nil {
			return "", err
		}
		expr = col.String()
		alias = m.Column
	case queryspec.MetricAvg, queryspec.MetricSum, queryspec.MetricStddev,
		queryspec.MetricMin, queryspec.MetricMax:
		col, err := sqlsafe.Column("metrics", m.Column)
		if err != nil {
			return "", err
		}
		expr = fmt.Sprintf("%s(%s)", strings.ToUpper(string(m.Metric)), col)
		alias = fmt.Sprintf("%s_%s", string(m.Metric), m.Column)
	default:
		panic(fmt.Sprintf("unreachable: unknown metric %q", string(m.Metric)))
	}

	if m.Alias != "" {
		aliasLit, err := sqlsafe.Column("metrics.alias", m.Alias)
		if err != nil {
			return "", err
		}
		alias = aliasLit.String()
	}
	return expr + " AS " + alias, nil
}

// renderCondition renders one numeric row condition for the outer WHERE.
func renderCondition(i int, c queryspec.Condition) (string, error) {
	field := fmt.Sprintf("filters.conditions[%d]", i)
	col, err := sqlsafe.Column(field, c.Column)
	if err != nil {
		return "", err
	}
	if !validOperator(c.Operator) {
		return "", &sqlsafe.Rejection{Field: field, Value: c.Operator, Message: "operator outside whitelist"}
	}
	val := strconv.FormatFloat(c.Value, 'f', -1, 64)
	if !strings.Contains(val, ".") {
		// Thresholds always render as decimals ("-2.0", not "-2") so the
		// emitted comparison is unambiguously floating point.
		val += ".0"
	}
	return fmt.Sprintf("%s %s %s", col, c.Operator, val), nil
}

func validOperator(op string) bool {
	switch op {
	case ">", "<", ">=", "<=", "=", "!=":
		return true
	}
	return false
}
