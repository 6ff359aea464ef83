package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// UpdateDetailsRequest is a partial update; nil fields are left untouched.
// An empty date_of_birth or sex clears the field.
type UpdateDetailsRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name" validate:"omitempty,max=100"`
	DateOfBirth *string `json:"date_of_birth"`
	Sex         *string `json:"sex"`
	IsPregnant  *bool   `json:"is_pregnant"`
	Notes       *string `json:"notes" validate:"omitempty,max=2000"`
}

type SetNoKnownAllergiesRequest struct {
	NoKnownAllergies *bool `json:"no_known_allergies" validate:"required"`
}

type AddAllergyRequest struct {
	Allergen string `json:"allergen" validate:"required,notblank,max=100"`
	Reaction string `json:"reaction"`
}

type AddMedicationRequest struct {
	Name string `json:"name" validate:"required,notblank,max=200"`
}

// SelectComplaintRequest is a partial update of the complaint stage.
// Changing the code clears onset and summary unless they are sent too.
type SelectComplaintRequest struct {
	Code    *string `json:"code" validate:"omitempty,max=64"`
	Onset   *string `json:"onset"`
	Summary *string `json:"summary" validate:"omitempty,max=140"`
}

type UpdateSymptomsRequest struct {
	Answers map[string]interface{} `json:"answers" validate:"required,min=1"`
}

type ToggleActionRequest struct {
	Accepted *bool `json:"accepted" validate:"required"`
}

// Response DTOs

type StartSessionResponse struct {
	Session   *IntakeResponse `json:"session"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
}

type DetailsResponse struct {
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	DateOfBirth           string `json:"date_of_birth,omitempty"`
	Age                   *int   `json:"age,omitempty"`
	Sex                   string `json:"sex,omitempty"`
	PregnancyCheckApplies bool   `json:"pregnancy_check_applies"`
	IsPregnant            bool   `json:"is_pregnant"`
}

type AllergyResponse struct {
	Allergen string `json:"allergen"`
	Reaction string `json:"reaction"`
}

type AllergiesResponse struct {
	NoKnownAllergies bool              `json:"no_known_allergies"`
	Items            []AllergyResponse `json:"items"`
	Display          string            `json:"display"`
}

type ComplaintSelectionResponse struct {
	Code     string `json:"code,omitempty"`
	Label    string `json:"label,omitempty"`
	Category string `json:"category,omitempty"`
	Hint     string `json:"hint,omitempty"`
	Onset    string `json:"onset,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

type IntakeResponse struct {
	ID             uuid.UUID                  `json:"id"`
	Stage          int                        `json:"stage"`
	StageName      string                     `json:"stage_name"`
	ShowValidation bool                       `json:"show_validation"`
	FieldErrors    map[string]string          `json:"field_errors,omitempty"`
	CanAdvance     bool                       `json:"can_advance"`
	Details        DetailsResponse            `json:"details"`
	Allergies      AllergiesResponse          `json:"allergies"`
	Medications    []string                   `json:"medications"`
	Notes          string                     `json:"notes"`
	Complaint      ComplaintSelectionResponse `json:"complaint"`
	FormType       string                     `json:"form_type,omitempty"`
	Symptoms       map[string]interface{}     `json:"symptoms"`
	Triage         *TriageResponse            `json:"triage,omitempty"`
	TriageError    string                     `json:"triage_error,omitempty"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

type AdvanceResponse struct {
	Advanced bool            `json:"advanced"`
	Session  *IntakeResponse `json:"session"`
}

type FieldSpecResponse struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Kind    string   `json:"kind"`
	Options []string `json:"options,omitempty"`
}

type SymptomFormResponse struct {
	FormType string                 `json:"form_type"`
	Fields   []FieldSpecResponse    `json:"fields"`
	Answers  map[string]interface{} `json:"answers"`
}

type DiagnosisResponse struct {
	Condition  string   `json:"condition"`
	Confidence *float64 `json:"confidence"`
	Rationale  string   `json:"rationale"`
}

type NextActionResponse struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Label    string `json:"label"`
	Accepted bool   `json:"accepted"`
	Hint     string `json:"hint,omitempty"`
}

// TriageHeaderResponse is the patient banner above the suggestion.
type TriageHeaderResponse struct {
	Patient          string `json:"patient"`
	Allergies        string `json:"allergies"`
	Complaint        string `json:"complaint"`
	PainScore        string `json:"pain_score,omitempty"`
	LastKnownWellSet bool   `json:"last_known_well_set"`
	NVCompromise     bool   `json:"nv_compromise"`
}

type TriageResponse struct {
	TriageCategory string               `json:"triage_category"`
	RedFlags       []string             `json:"red_flags"`
	DiagPrimary    *DiagnosisResponse   `json:"diag_primary"`
	DiagSecondary  *DiagnosisResponse   `json:"diag_secondary"`
	NextActions    []NextActionResponse `json:"next_actions"`
	AcceptedCount  int                  `json:"accepted_count"`
	Explanation    []string             `json:"explanation"`
	Summary        string               `json:"summary"`
	Source         string               `json:"source"`
	Error          string               `json:"error,omitempty"`
	Header         TriageHeaderResponse `json:"header"`
}

type EPRReceiptResponse struct {
	Reference   uuid.UUID `json:"reference"`
	SessionID   uuid.UUID `json:"session_id"`
	SentAt      time.Time `json:"sent_at"`
	ActionCount int       `json:"action_count"`
	Actions     []string  `json:"actions"`
}
