package queryspec

// RewriteTopN turns a top-N spec into the equivalent standard query:
// same source, filters, grouping, and metrics, ordered by the requested
// column and capped at n rows.
//
// Top-N is deliberately not a distinct SQL shape — it is "the standard
// query, sorted and capped". The rewrite clears the special-op tag and
// payload, so re-entering the assembler takes the standard path exactly
// once; there is no further hop.
func RewriteTopN(s QuerySpec) QuerySpec {
	if s.Op() != OpTopN || s.TopN == nil {
		return s
	}
	out := s
	out.SpecialOp = OpNone
	out.OrderBy = s.TopN.OrderBy
	out.OrderDirection = s.TopN.Direction
	out.Limit = s.TopN.N
	out.TopN = nil
	return out
}
