package native

import (
	"errors"

	"github.com/hugr-lab/gridframe/results"
)

// LimitViolation is the C layout of a limit violation (gf_limit_violation).
type LimitViolation struct {
	SubjectID          *byte
	SubjectName        *byte
	LimitType          int32
	Side               int32
	LimitName          *byte
	Limit              float64
	LimitReduction     float64
	Value              float64
	AcceptableDuration int64
}

// ContingencyResult is the C layout of one contingency result
// (gf_contingency_result). Violations is an array of LimitViolation.
type ContingencyResult struct {
	ContingencyID *byte
	Status        int32
	Violations    Array
}

// AllocContingencyResults copies results into a C array of
// gf_contingency_result, each holding its own violation array.
func AllocContingencyResults(h *Heap, crs []*results.ContingencyResult) Array {
	arr, view := AllocArray[ContingencyResult](h, len(crs))
	for i, cr := range crs {
		view[i] = ContingencyResult{
			ContingencyID: AllocString(h, cr.ContingencyID),
			Status:        int32(cr.Status),
		}
		var violations []LimitViolation
		view[i].Violations, violations = AllocArray[LimitViolation](h, len(cr.Violations))
		for j, v := range cr.Violations {
			violations[j] = LimitViolation{
				SubjectID:          AllocString(h, v.SubjectID),
				SubjectName:        AllocString(h, v.SubjectName),
				LimitType:          int32(v.LimitType),
				Side:               int32(v.Side),
				LimitName:          AllocString(h, v.LimitName),
				Limit:              v.Limit,
				LimitReduction:     v.LimitReduction,
				Value:              v.Value,
				AcceptableDuration: int64(v.AcceptableDuration),
			}
		}
	}
	return arr
}

// FreeContingencyResults releases an array returned by
// AllocContingencyResults: violation strings, then each violation array, then
// each result's own strings, then the outer array.
func FreeContingencyResults(h *Heap, a Array) error {
	if err := checkOwned(h, a); err != nil {
		return err
	}
	var errs []error
	view := View[ContingencyResult](a)
	for i := range view {
		cr := &view[i]
		violations := View[LimitViolation](cr.Violations)
		for j := range violations {
			v := &violations[j]
			errs = append(errs,
				FreeString(h, v.SubjectID),
				FreeString(h, v.SubjectName),
				FreeString(h, v.LimitName),
			)
		}
		errs = append(errs,
			FreeArray(h, cr.Violations),
			FreeString(h, cr.ContingencyID),
		)
		*cr = ContingencyResult{}
	}
	errs = append(errs, FreeArray(h, a))
	return errors.Join(errs...)
}
