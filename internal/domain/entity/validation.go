package entity

import "strings"

// FieldErrors maps a form field to its inline marker. Markers are UI state,
// never returned as errors.
type FieldErrors map[string]string

// Inline marker texts
const (
	MsgRequired          = "Required"
	MsgSelectOne         = "Please select one"
	MsgAllergiesRequired = "Select NKA or add at least one allergy"
	MsgSelectComplaint   = "Please select a complaint first."
)

// ValidateStage is the pure "can advance" rule set for each stage.
func ValidateStage(in *Intake, stage IntakeStage) FieldErrors {
	errs := FieldErrors{}
	switch stage {
	case StageDetails:
		if strings.TrimSpace(in.Profile.FirstName) == "" {
			errs["first_name"] = MsgRequired
		}
		if strings.TrimSpace(in.Profile.LastName) == "" {
			errs["last_name"] = MsgRequired
		}
		if in.Profile.DateOfBirth == nil {
			errs["date_of_birth"] = MsgRequired
		}
		if in.Profile.Sex == "" {
			errs["sex"] = MsgSelectOne
		}
		if !in.Allergies.Satisfied() {
			errs["allergies"] = MsgAllergiesRequired
		}
	case StageComplaint, StageSymptoms:
		if !in.Complaint.Selected() {
			errs["complaint"] = MsgSelectComplaint
		}
	}
	return errs
}

// CanAdvance reports whether the stage validates
func CanAdvance(in *Intake, stage IntakeStage) bool {
	return len(ValidateStage(in, stage)) == 0
}
