package entity

import "errors"

// TriageCategory is the proposed urgency
type TriageCategory string

const (
	TriageVeryUrgent TriageCategory = "Very Urgent"
	TriageUrgent     TriageCategory = "Urgent"
	TriageStandard   TriageCategory = "Standard"
)

// TriageSource records where a result came from
type TriageSource string

const (
	TriageSourceModel    TriageSource = "model"
	TriageSourceFallback TriageSource = "fallback"
)

// Provenance strings attached to TriageResult.Explanation
const (
	ExplanationModel    = "Model-generated based on intake; clinician sign-off required."
	ExplanationFallback = "Fallback suggestions (API unavailable)."
)

// TimeCriticalHint marks actions the backend flagged as time critical.
const TimeCriticalHint = "Time-critical"

var ErrActionIndexOutOfRange = errors.New("next action index out of range")

// Diagnosis is one entry of the working differential
type Diagnosis struct {
	Condition  string   `json:"condition"`
	Confidence *float64 `json:"confidence"`
	Rationale  string   `json:"rationale"`
}

// NextAction is a suggested order awaiting clinician sign-off
type NextAction struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Accepted bool   `json:"accepted"`
	Hint     string `json:"hint"`
}

// TriageResult is the normalized suggestion shown to the clinician. It is
// replaced wholesale on each regeneration; only Accepted flags change after
// creation.
type TriageResult struct {
	TriageCategory TriageCategory `json:"triage_category"`
	RedFlags       []string       `json:"red_flags"`
	DiagPrimary    *Diagnosis     `json:"diag_primary"`
	DiagSecondary  *Diagnosis     `json:"diag_secondary"`
	NextActions    []NextAction   `json:"next_actions"`
	Explanation    []string       `json:"explanation"`
	Summary        string         `json:"summary"`
	Source         TriageSource   `json:"source"`
}

// ToggleAction sets the accepted flag on one action
func (t *TriageResult) ToggleAction(index int, accepted bool) error {
	if index < 0 || index >= len(t.NextActions) {
		return ErrActionIndexOutOfRange
	}
	t.NextActions[index].Accepted = accepted
	return nil
}

// AcceptAllActions marks every action accepted
func (t *TriageResult) AcceptAllActions() {
	for i := range t.NextActions {
		t.NextActions[i].Accepted = true
	}
}

// AcceptedActions returns the actions signed off so far, in order.
func (t *TriageResult) AcceptedActions() []NextAction {
	accepted := make([]NextAction, 0, len(t.NextActions))
	for _, a := range t.NextActions {
		if a.Accepted {
			accepted = append(accepted, a)
		}
	}
	return accepted
}

func floatPtr(f float64) *float64 {
	return &f
}

// NewDiagnosis builds a diagnosis with a fixed confidence.
func NewDiagnosis(condition string, confidence float64, rationale string) *Diagnosis {
	return &Diagnosis{Condition: condition, Confidence: floatPtr(confidence), Rationale: rationale}
}
