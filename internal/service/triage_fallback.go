package service

import (
	"strconv"
	"strings"

	"ae-triage-intake/internal/domain/entity"
)

// Placeholder differential used when the backend is unavailable.
const (
	fallbackPrimaryCondition    = "Non-specific presentation"
	fallbackPrimaryConfidence   = 40
	fallbackPrimaryRationale    = "Requires further assessment."
	fallbackSecondaryCondition  = "Alternate common cause"
	fallbackSecondaryConfidence = 20
	fallbackSecondaryRationale  = "Refine with exam and vitals."
)

// Pain score at or above this escalates a chest pain presentation.
const severePainScore = 8

var veryUrgentComplaints = map[string]bool{
	entity.ComplaintChestPain:      true,
	entity.ComplaintShortBreath:    true,
	entity.ComplaintStrokeSymptoms: true,
}

// FallbackUrgency computes the proposed category from the complaint and the
// symptom answers. Escalation rules assign rather than compare, so the last
// rule that matches decides.
func FallbackUrgency(code string, formType entity.SymptomFormType, answers entity.SymptomAnswers) entity.TriageCategory {
	category := entity.TriageStandard
	if veryUrgentComplaints[code] {
		category = entity.TriageVeryUrgent
	} else if code == entity.ComplaintHeadInjury {
		category = entity.TriageUrgent
	}

	if formType == entity.FormChestPain && (answers.String("syncope") == "Yes" || painScoreAtLeast(answers.String("pain_score"), severePainScore)) {
		category = entity.TriageVeryUrgent
	}
	if formType == entity.FormStroke && answers.String("lkw") != "" {
		category = entity.TriageVeryUrgent
	}
	if formType == entity.FormLimb && answers.String("nv_compromise") == "Yes" {
		category = entity.TriageUrgent
	}

	return category
}

func painScoreAtLeast(raw string, threshold float64) bool {
	score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return false
	}
	return score >= threshold
}

// FallbackSummary is the templated one-paragraph case summary.
func FallbackSummary(c TriageContext, category entity.TriageCategory) string {
	in := c.Intake

	var b strings.Builder
	b.WriteString(in.Profile.FirstName + " " + in.Profile.LastName + ", " + c.AgeText())
	if in.Profile.Sex != "" {
		b.WriteString(" (" + string(in.Profile.Sex) + ")")
	}
	b.WriteString(". Complaint: " + orUnknown(c.ComplaintLabel()) + ".")
	if in.Complaint.Onset != entity.OnsetUnset {
		b.WriteString(" Onset: " + string(in.Complaint.Onset) + ".")
	}
	if in.Complaint.Summary != "" {
		b.WriteString(" Summary: " + in.Complaint.Summary + ".")
	}
	if assoc := in.Symptoms.String("assoc"); assoc != "" {
		b.WriteString(" Associated symptoms: " + assoc + ".")
	}
	b.WriteString(" Proposed urgency: " + string(category) + ".")

	return b.String()
}

// FallbackTriage builds a result locally from the intake alone. It is pure:
// the same context always yields an equal result.
func FallbackTriage(c TriageContext) *entity.TriageResult {
	category := FallbackUrgency(c.Intake.Complaint.Code, c.FormType(), c.Intake.Symptoms)

	return &entity.TriageResult{
		TriageCategory: category,
		RedFlags:       []string{},
		DiagPrimary:    entity.NewDiagnosis(fallbackPrimaryCondition, fallbackPrimaryConfidence, fallbackPrimaryRationale),
		DiagSecondary:  entity.NewDiagnosis(fallbackSecondaryCondition, fallbackSecondaryConfidence, fallbackSecondaryRationale),
		NextActions:    []entity.NextAction{},
		Explanation:    []string{entity.ExplanationFallback},
		Summary:        FallbackSummary(c, category),
		Source:         entity.TriageSourceFallback,
	}
}
