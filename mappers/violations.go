package mappers

import (
	"github.com/hugr-lab/gridframe/mapper"
	"github.com/hugr-lab/gridframe/network"
	"github.com/hugr-lab/gridframe/results"
)

// violations is read-only and indexed by (contingency_id, subject_id,
// limit_name). Pre-contingency violations have an empty contingency id.
var violations = must(mapper.NewBuilder[*results.SecurityAnalysis, results.ViolationRef]().
	StringIndex("contingency_id", func(v results.ViolationRef) string { return v.ContingencyID }).
	StringIndex("subject_id", func(v results.ViolationRef) string { return v.SubjectID }).
	StringIndex("limit_name", func(v results.ViolationRef) string { return v.LimitName }).
	Strings("subject_name", func(v results.ViolationRef) string { return v.SubjectName }, nil).
	Enums("limit_type", results.LimitTypes,
		func(v results.ViolationRef) int { return int(v.LimitType) }, nil).
	Doubles("limit", func(v results.ViolationRef) float64 { return v.Limit }, nil).
	Doubles("limit_reduction", func(v results.ViolationRef) float64 { return v.LimitReduction }, nil).
	Doubles("value", func(v results.ViolationRef) float64 { return v.Value }, nil).
	Enums("side", network.Sides,
		func(v results.ViolationRef) int { return int(v.Side) }, nil).
	Ints("acceptable_duration", func(v results.ViolationRef) int { return v.AcceptableDuration }, nil).
	Build(
		(*results.SecurityAnalysis).Violations,
		func(r *results.SecurityAnalysis, k mapper.Key) (results.ViolationRef, bool) {
			v, ok := r.Violation(k.Str(0), k.Str(1), k.Str(2))
			if !ok {
				return results.ViolationRef{}, false
			}
			return results.ViolationRef{ContingencyID: k.Str(0), LimitViolation: v}, true
		}))
