package converter

import (
	"strconv"
	"time"

	"ae-triage-intake/internal/delivery/dto"
	"ae-triage-intake/internal/domain/entity"
	"ae-triage-intake/internal/service"
)

// DateLayout is the wire format for date_of_birth
const DateLayout = "2006-01-02"

// IntakeToResponse converts the aggregate into the session view. Field
// errors are only included once an advance attempt has failed.
func IntakeToResponse(c service.TriageContext) *dto.IntakeResponse {
	in := c.Intake
	if in == nil {
		return nil
	}

	resp := &dto.IntakeResponse{
		ID:             in.ID,
		Stage:          int(in.Stage),
		StageName:      in.Stage.Name(),
		ShowValidation: in.ShowValidation,
		CanAdvance:     in.Stage < entity.StageTriage && entity.CanAdvance(in, in.Stage),
		Details:        detailsToResponse(&in.Profile, c.Today),
		Allergies:      AllergiesToResponse(in.Allergies),
		Medications:    append([]string{}, in.Medications...),
		Notes:          in.Notes,
		Complaint:      complaintSelectionToResponse(in.Complaint, c.Complaint),
		FormType:       string(in.FormType),
		Symptoms:       symptomsToMap(in.Symptoms),
		TriageError:    in.TriageError,
		CreatedAt:      in.CreatedAt,
		UpdatedAt:      in.UpdatedAt,
	}

	if in.ShowValidation && in.Stage < entity.StageTriage {
		if errs := entity.ValidateStage(in, in.Stage); len(errs) > 0 {
			resp.FieldErrors = errs
		}
	}

	if in.Triage != nil {
		resp.Triage = TriageToResponse(c)
	}

	return resp
}

func detailsToResponse(p *entity.PatientProfile, today time.Time) dto.DetailsResponse {
	resp := dto.DetailsResponse{
		FirstName:             p.FirstName,
		LastName:              p.LastName,
		Sex:                   string(p.Sex),
		PregnancyCheckApplies: p.PregnancyCheckApplies(today),
		IsPregnant:            p.PregnancyFlagged(today),
	}
	if p.DateOfBirth != nil {
		resp.DateOfBirth = p.DateOfBirth.Format(DateLayout)
	}
	if age, ok := p.Age(today); ok {
		resp.Age = &age
	}
	return resp
}

// AllergiesToResponse uses the same display string as the triage request.
func AllergiesToResponse(s entity.AllergyState) dto.AllergiesResponse {
	items := make([]dto.AllergyResponse, len(s.Allergies))
	for i, a := range s.Allergies {
		items[i] = dto.AllergyResponse{Allergen: a.Allergen, Reaction: string(a.Reaction)}
	}
	return dto.AllergiesResponse{
		NoKnownAllergies: s.NoKnownAllergies,
		Items:            items,
		Display:          entity.FormatAllergyList(s),
	}
}

func complaintSelectionToResponse(sel entity.ComplaintSelection, def *entity.ComplaintDefinition) dto.ComplaintSelectionResponse {
	resp := dto.ComplaintSelectionResponse{
		Code:    sel.Code,
		Onset:   string(sel.Onset),
		Summary: sel.Summary,
	}
	if def != nil {
		resp.Label = def.Label
		resp.Category = string(def.Category)
		resp.Hint = def.Hint
	}
	return resp
}

func symptomsToMap(a entity.SymptomAnswers) map[string]interface{} {
	out := make(map[string]interface{}, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// SymptomFormToResponse lists the template fields next to the answers.
func SymptomFormToResponse(ft entity.SymptomFormType, answers entity.SymptomAnswers) *dto.SymptomFormResponse {
	specs := entity.TemplateFields(ft)
	fields := make([]dto.FieldSpecResponse, len(specs))
	for i, f := range specs {
		fields[i] = dto.FieldSpecResponse{
			Name:    f.Name,
			Label:   f.Label,
			Kind:    string(f.Kind),
			Options: f.Options,
		}
	}
	return &dto.SymptomFormResponse{
		FormType: string(ft),
		Fields:   fields,
		Answers:  symptomsToMap(answers),
	}
}

func diagnosisToResponse(d *entity.Diagnosis) *dto.DiagnosisResponse {
	if d == nil {
		return nil
	}
	return &dto.DiagnosisResponse{
		Condition:  d.Condition,
		Confidence: d.Confidence,
		Rationale:  d.Rationale,
	}
}

// TriageHeader is the banner shown above the suggestion.
func TriageHeader(c service.TriageContext) dto.TriageHeaderResponse {
	in := c.Intake
	patient := in.Profile.FullName() + " | Age " + c.AgeText()
	if in.Profile.Sex != "" {
		patient += " | " + string(in.Profile.Sex)
	}
	if in.Profile.PregnancyFlagged(c.Today) {
		patient += " | Pregnant/possible"
	}

	complaint := c.ComplaintLabel()
	if complaint == "" {
		complaint = "Unknown"
	}
	if in.Complaint.Onset != entity.OnsetUnset {
		complaint += " | Onset " + string(in.Complaint.Onset)
	}

	ft := c.FormType()
	header := dto.TriageHeaderResponse{
		Patient:   patient,
		Allergies: entity.FormatAllergyList(in.Allergies),
		Complaint: complaint,
	}
	if ft == entity.FormChestPain {
		header.PainScore = in.Symptoms.String("pain_score")
	}
	header.LastKnownWellSet = ft == entity.FormStroke && in.Symptoms.String("lkw") != ""
	header.NVCompromise = ft == entity.FormLimb && in.Symptoms.String("nv_compromise") == "Yes"
	return header
}

func TriageToResponse(c service.TriageContext) *dto.TriageResponse {
	result := c.Intake.Triage
	if result == nil {
		return nil
	}

	actions := make([]dto.NextActionResponse, len(result.NextActions))
	accepted := 0
	for i, a := range result.NextActions {
		actions[i] = dto.NextActionResponse{
			Index:    i,
			ID:       a.ID,
			Label:    a.Label,
			Accepted: a.Accepted,
			Hint:     a.Hint,
		}
		if a.Accepted {
			accepted++
		}
	}

	return &dto.TriageResponse{
		TriageCategory: string(result.TriageCategory),
		RedFlags:       append([]string{}, result.RedFlags...),
		DiagPrimary:    diagnosisToResponse(result.DiagPrimary),
		DiagSecondary:  diagnosisToResponse(result.DiagSecondary),
		NextActions:    actions,
		AcceptedCount:  accepted,
		Explanation:    append([]string{}, result.Explanation...),
		Summary:        result.Summary,
		Source:         string(result.Source),
		Error:          c.Intake.TriageError,
		Header:         TriageHeader(c),
	}
}

// EPRReceiptToResponse flattens the receipt to action labels.
func EPRReceiptToResponse(r *service.EPRReceipt) *dto.EPRReceiptResponse {
	labels := make([]string, len(r.Actions))
	for i, a := range r.Actions {
		labels[i] = a.Label
	}
	return &dto.EPRReceiptResponse{
		Reference:   r.Reference,
		SessionID:   r.SessionID,
		SentAt:      r.SentAt,
		ActionCount: len(r.Actions),
		Actions:     labels,
	}
}

// HandoffFilename names the downloaded PDF.
func HandoffFilename(c service.TriageContext) string {
	return "handoff_" + c.Intake.ID.String() + "_" + strconv.FormatInt(c.Today.Unix(), 10) + ".pdf"
}
