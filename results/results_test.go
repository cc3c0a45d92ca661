package results

import "testing"

func sample() *SecurityAnalysis {
	return &SecurityAnalysis{
		PreContingency: ContingencyResult{Violations: []LimitViolation{
			{SubjectID: "B1", LimitType: HighVoltage, LimitName: "max_v", Limit: 420, Value: 425},
		}},
		PostContingency: []ContingencyResult{
			{ContingencyID: "c1", Status: Converged, Violations: []LimitViolation{
				{SubjectID: "LINE1", LimitName: "permanent", Limit: 1000, Value: 1100},
				{SubjectID: "LINE1", LimitName: "10'", Limit: 1200, Value: 1100},
			}},
			{ContingencyID: "c2", Status: SolverFailed},
		},
	}
}

func TestViolations(t *testing.T) {
	r := sample()

	refs := r.Violations()
	if len(refs) != 3 {
		t.Fatalf("Violations() returned %d, want 3", len(refs))
	}
	if refs[0].ContingencyID != PreContingencyID || refs[1].ContingencyID != "c1" {
		t.Errorf("unexpected order: %+v", refs)
	}

	refs[2].Value = 1300
	if r.PostContingency[0].Violations[1].Value != 1300 {
		t.Error("ViolationRef must point into the result")
	}
}

func TestViolationLookup(t *testing.T) {
	r := sample()

	tests := []struct {
		name        string
		contingency string
		subject     string
		lim         string
		found       bool
	}{
		{"pre-contingency", PreContingencyID, "B1", "max_v", true},
		{"post-contingency", "c1", "LINE1", "10'", true},
		{"wrong limit", "c1", "LINE1", "1'", false},
		{"unknown contingency", "c9", "LINE1", "permanent", false},
		{"empty contingency", "c2", "LINE1", "permanent", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := r.Violation(tt.contingency, tt.subject, tt.lim)
			if ok != tt.found {
				t.Errorf("Violation() found = %v, want %v", ok, tt.found)
			}
		})
	}
}

func TestStatusNames(t *testing.T) {
	if SolverFailed.String() != "SOLVER_FAILED" || ComputationStatus(9).String() != "UNKNOWN" {
		t.Error("unexpected status names")
	}
	if ApparentPower.String() != "APPARENT_POWER" {
		t.Error("unexpected limit type name")
	}
}
