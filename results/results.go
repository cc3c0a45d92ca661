// Package results holds security analysis results read back after an engine
// run: the pre-contingency state and one result per contingency, each with
// the limit violations it produced.
package results

import "github.com/hugr-lab/gridframe/network"

// ComputationStatus is the outcome of one load flow.
type ComputationStatus int

const (
	Converged ComputationStatus = iota
	MaxIterationReached
	SolverFailed
	Failed
	NoCalculation
)

// ComputationStatuses lists the enum names, indexed by ordinal.
var ComputationStatuses = []string{"CONVERGED", "MAX_ITERATION_REACHED", "SOLVER_FAILED", "FAILED", "NO_CALCULATION"}

func (s ComputationStatus) String() string {
	if s < 0 || int(s) >= len(ComputationStatuses) {
		return "UNKNOWN"
	}
	return ComputationStatuses[s]
}

// LimitType is the kind of limit a violation refers to.
type LimitType int

const (
	Current LimitType = iota
	LowVoltage
	HighVoltage
	ActivePower
	ApparentPower
)

// LimitTypes lists the enum names, indexed by ordinal.
var LimitTypes = []string{"CURRENT", "LOW_VOLTAGE", "HIGH_VOLTAGE", "ACTIVE_POWER", "APPARENT_POWER"}

func (t LimitType) String() string {
	if t < 0 || int(t) >= len(LimitTypes) {
		return "UNKNOWN"
	}
	return LimitTypes[t]
}

// PreContingencyID identifies the pre-contingency result in violation tables.
const PreContingencyID = ""

// LimitViolation is one limit exceeded on one element.
type LimitViolation struct {
	SubjectID          string
	SubjectName        string
	LimitType          LimitType
	LimitName          string
	Limit              float64
	LimitReduction     float64
	Value              float64
	Side               network.Side
	AcceptableDuration int
}

// ContingencyResult is the outcome of the load flow after one contingency.
type ContingencyResult struct {
	ContingencyID string
	Status        ComputationStatus
	Violations    []LimitViolation
}

// SecurityAnalysis gathers the results of one security analysis run.
type SecurityAnalysis struct {
	PreContingency  ContingencyResult
	PostContingency []ContingencyResult
}

// All returns the pre-contingency result followed by every post-contingency
// result.
func (r *SecurityAnalysis) All() []*ContingencyResult {
	out := make([]*ContingencyResult, 0, len(r.PostContingency)+1)
	out = append(out, &r.PreContingency)
	for i := range r.PostContingency {
		out = append(out, &r.PostContingency[i])
	}
	return out
}

// Contingency returns the post-contingency result with the given id.
func (r *SecurityAnalysis) Contingency(id string) (*ContingencyResult, bool) {
	for i := range r.PostContingency {
		if r.PostContingency[i].ContingencyID == id {
			return &r.PostContingency[i], true
		}
	}
	return nil, false
}

// ViolationRef is a limit violation together with the contingency that
// produced it.
type ViolationRef struct {
	ContingencyID string
	*LimitViolation
}

// Violations returns every violation, pre-contingency ones first.
func (r *SecurityAnalysis) Violations() []ViolationRef {
	var out []ViolationRef
	for _, cr := range r.All() {
		for i := range cr.Violations {
			out = append(out, ViolationRef{ContingencyID: cr.ContingencyID, LimitViolation: &cr.Violations[i]})
		}
	}
	return out
}

// Violation finds a violation by contingency, subject and limit name.
func (r *SecurityAnalysis) Violation(contingencyID, subjectID, limitName string) (*LimitViolation, bool) {
	var cr *ContingencyResult
	if contingencyID == PreContingencyID {
		cr = &r.PreContingency
	} else {
		var ok bool
		if cr, ok = r.Contingency(contingencyID); !ok {
			return nil, false
		}
	}
	for i := range cr.Violations {
		v := &cr.Violations[i]
		if v.SubjectID == subjectID && v.LimitName == limitName {
			return v, true
		}
	}
	return nil, false
}
