package service

import (
	"testing"
	"time"

	"ae-triage-intake/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(code string, category entity.ComplaintCategory, label string) TriageContext {
	dob := time.Date(1995, time.March, 15, 0, 0, 0, 0, time.UTC)
	in := entity.NewIntake(time.Now())
	in.Profile.FirstName = "Jane"
	in.Profile.LastName = "Doe"
	in.Profile.DateOfBirth = &dob
	in.Profile.Sex = entity.SexFemale
	in.Allergies.SetNoKnownAllergies(true)
	in.Complaint.Code = code

	ft := entity.ResolveFormType(code, category)
	in.EnsureSymptoms(ft)

	return TriageContext{
		Intake:    in,
		Complaint: &entity.ComplaintDefinition{Code: code, Label: label, Category: category},
		Today:     time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestFallbackUrgency(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		formType entity.SymptomFormType
		answers  entity.SymptomAnswers
		expected entity.TriageCategory
	}{
		{"Chest Pain Base", "chest_pain", entity.FormChestPain, entity.DefaultSymptoms(entity.FormChestPain), entity.TriageVeryUrgent},
		{"Short Breath Base", "short_breath", entity.FormSOB, entity.DefaultSymptoms(entity.FormSOB), entity.TriageVeryUrgent},
		{"Head Injury Base", "head_injury", entity.FormHeadInjury, entity.DefaultSymptoms(entity.FormHeadInjury), entity.TriageUrgent},
		{"Rash Base", "rash", entity.FormGeneric, entity.DefaultSymptoms(entity.FormGeneric), entity.TriageStandard},
		{"Chest Pain Severe Pain", "chest_pain", entity.FormChestPain, entity.SymptomAnswers{"pain_score": "9"}, entity.TriageVeryUrgent},
		{"Palpitations Severe Pain", "palpitations", entity.FormChestPain, entity.SymptomAnswers{"pain_score": "9"}, entity.TriageVeryUrgent},
		{"Palpitations Syncope", "palpitations", entity.FormChestPain, entity.SymptomAnswers{"syncope": "Yes"}, entity.TriageVeryUrgent},
		{"Palpitations Mild", "palpitations", entity.FormChestPain, entity.SymptomAnswers{"pain_score": "7.5"}, entity.TriageStandard},
		{"Unparseable Pain Score", "palpitations", entity.FormChestPain, entity.SymptomAnswers{"pain_score": "bad"}, entity.TriageStandard},
		{"Seizure With Last Known Well", "seizure", entity.FormStroke, entity.SymptomAnswers{"lkw": "2025-06-01T08:30"}, entity.TriageVeryUrgent},
		{"Fall With Neurovascular Compromise", "fall", entity.FormLimb, entity.SymptomAnswers{"nv_compromise": "Yes"}, entity.TriageUrgent},
		{"Fall Without Compromise", "fall", entity.FormLimb, entity.SymptomAnswers{"nv_compromise": "No"}, entity.TriageStandard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FallbackUrgency(tt.code, tt.formType, tt.answers))
		})
	}
}

func TestFallbackTriage(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		c := newTestContext("chest_pain", entity.CategoryCardiac, "Chest pain")
		require.NoError(t, c.Intake.Symptoms.Set(entity.FormChestPain, "pain_score", "9"))

		first := FallbackTriage(c)
		second := FallbackTriage(c)

		assert.Equal(t, first, second, "same intake should give an equal result")
		assert.Equal(t, entity.TriageVeryUrgent, first.TriageCategory)
		assert.Equal(t, entity.TriageSourceFallback, first.Source)
		assert.Equal(t, []string{entity.ExplanationFallback}, first.Explanation)
		assert.Empty(t, first.NextActions, "fallback proposes no actions")
		assert.Empty(t, first.RedFlags)
	})

	t.Run("Placeholder Differential", func(t *testing.T) {
		result := FallbackTriage(newTestContext("rash", entity.CategorySkin, "Rash"))

		require.NotNil(t, result.DiagPrimary)
		require.NotNil(t, result.DiagSecondary)
		assert.Equal(t, "Non-specific presentation", result.DiagPrimary.Condition)
		assert.Equal(t, 40.0, *result.DiagPrimary.Confidence)
		assert.Equal(t, 20.0, *result.DiagSecondary.Confidence)
	})

	t.Run("Summary Template", func(t *testing.T) {
		c := newTestContext("fall", entity.CategoryTrauma, "Fall")
		c.Intake.Complaint.Onset = entity.OnsetOneToFour
		c.Intake.Complaint.Summary = "Tripped on stairs"
		require.NoError(t, c.Intake.Symptoms.Set(entity.FormLimb, "assoc", "Grazed knee"))
		require.NoError(t, c.Intake.Symptoms.Set(entity.FormLimb, "nv_compromise", "Yes"))

		result := FallbackTriage(c)
		assert.Equal(t,
			"Jane Doe, 30 (female). Complaint: Fall. Onset: 1–4h. Summary: Tripped on stairs. Associated symptoms: Grazed knee. Proposed urgency: Urgent.",
			result.Summary)
	})

	t.Run("Summary Without Optional Parts", func(t *testing.T) {
		c := newTestContext("rash", entity.CategorySkin, "Rash")
		c.Intake.Profile.DateOfBirth = nil
		c.Intake.Profile.Sex = ""

		assert.Equal(t, "Jane Doe, ?. Complaint: Rash. Proposed urgency: Standard.", FallbackSummary(c, entity.TriageStandard))
	})
}
