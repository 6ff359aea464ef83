package service

import (
	"strconv"
	"strings"
	"time"

	"ae-triage-intake/internal/domain/entity"

	"github.com/goccy/go-json"
)

// TriageContext is the snapshot the request builder and the fallback work
// from. Complaint may be nil when the code is no longer in the catalog.
type TriageContext struct {
	Intake    *entity.Intake
	Complaint *entity.ComplaintDefinition
	Today     time.Time
}

// FormType returns the template in use, resolving it from the complaint
// when the symptoms stage was never entered.
func (c TriageContext) FormType() entity.SymptomFormType {
	if c.Intake.FormType != "" {
		return c.Intake.FormType
	}
	if c.Complaint != nil {
		return entity.ResolveFormType(c.Complaint.Code, c.Complaint.Category)
	}
	return entity.ResolveFormType(c.Intake.Complaint.Code, "")
}

// ComplaintLabel is the catalog label, or "" when unknown.
func (c TriageContext) ComplaintLabel() string {
	if c.Complaint == nil {
		return ""
	}
	return c.Complaint.Label
}

// AgeText renders the derived age, "?" when no date of birth is set.
func (c TriageContext) AgeText() string {
	age, ok := c.Intake.Profile.Age(c.Today)
	if !ok {
		return "?"
	}
	return strconv.Itoa(age)
}

const triagePromptHeader = `You are an A&E triage assistant for the NHS. Use cautious UK clinical practice.
Given the intake below, return ONLY a JSON object with these fields:
{
  "triage_category": "Very Urgent" | "Urgent" | "Standard",
  "primary_diagnosis": { "label": string, "probability_percent": number, "rationale": string },
  "secondary_diagnosis": { "label": string, "probability_percent": number, "rationale": string },
  "red_flags": [string],
  "recommended_actions": [ { "label": string, "is_time_critical": boolean } ],
  "summary": string  // <=120 words, plain English sentences describing case & plan.
}

Rules:
- Prioritise life/limb threats. If ambiguous, be conservative.
- No drug dosing. Keep concise, professional, and English only.
- Reflect pregnancy considerations if relevant.
`

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

// BuildTriagePrompt renders the full user message for the reasoning backend.
func BuildTriagePrompt(c TriageContext) string {
	in := c.Intake

	sex := string(in.Profile.Sex)
	if sex == "" {
		sex = "?"
	}

	meds := "Unknown"
	if len(in.Medications) > 0 {
		meds = strings.Join(in.Medications, ", ")
	}

	complaint := orUnknown(c.ComplaintLabel())
	if in.Complaint.Onset != entity.OnsetUnset {
		complaint += " | Onset " + string(in.Complaint.Onset)
	}

	answers := in.Symptoms
	if answers == nil {
		answers = entity.SymptomAnswers{}
	}
	symptomsJSON, err := json.Marshal(answers)
	if err != nil {
		symptomsJSON = []byte("{}")
	}

	var b strings.Builder
	b.WriteString(triagePromptHeader)
	b.WriteString("\nINTAKE\n")
	b.WriteString("Patient: " + in.Profile.FirstName + " " + in.Profile.LastName + " | Age " + c.AgeText() + " | Gender " + sex + "\n")
	if in.Profile.PregnancyFlagged(c.Today) {
		b.WriteString("Pregnancy: Pregnant/possible\n")
	}
	b.WriteString("Allergies: " + entity.FormatAllergyList(in.Allergies) + "\n")
	b.WriteString("Current meds: " + meds + "\n")
	b.WriteString("Complaint: " + complaint + "\n")
	b.WriteString("One_line_summary: " + orDash(in.Complaint.Summary) + "\n")
	b.WriteString("Symptoms_form_type: " + string(c.FormType()) + "\n")
	b.WriteString("Symptoms_key: " + string(symptomsJSON) + "\n")
	b.WriteString("Triage_notes: " + orDash(in.Notes) + "\n")
	b.WriteString("\nReturn JSON only.")

	return b.String()
}
