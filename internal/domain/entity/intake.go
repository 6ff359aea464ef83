package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// IntakeStage is the current step of the guided form
type IntakeStage int

const (
	StageDetails   IntakeStage = 1
	StageComplaint IntakeStage = 2
	StageSymptoms  IntakeStage = 3
	StageTriage    IntakeStage = 4
)

// Name returns the stepper label for the stage
func (s IntakeStage) Name() string {
	switch s {
	case StageDetails:
		return "Details"
	case StageComplaint:
		return "Complaint"
	case StageSymptoms:
		return "Symptoms"
	case StageTriage:
		return "Triage & actions"
	default:
		return "Unknown"
	}
}

var (
	ErrInvalidSex        = errors.New("invalid sex")
	ErrAlreadyFinalStage = errors.New("intake is already at the final stage")
	ErrAlreadyFirstStage = errors.New("intake is already at the first stage")
)

// Intake is the aggregate for one patient encounter. It lives only as long
// as the session that owns it.
type Intake struct {
	ID             uuid.UUID          `json:"id"`
	Stage          IntakeStage        `json:"stage"`
	ShowValidation bool               `json:"show_validation"`
	Profile        PatientProfile     `json:"profile"`
	Allergies      AllergyState       `json:"allergies"`
	Medications    Medications        `json:"medications"`
	Notes          string             `json:"notes"`
	Complaint      ComplaintSelection `json:"complaint"`
	FormType       SymptomFormType    `json:"form_type,omitempty"`
	Symptoms       SymptomAnswers     `json:"symptoms"`
	Triage         *TriageResult      `json:"triage,omitempty"`
	TriageError    string             `json:"triage_error,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// NewIntake starts an empty encounter on the details stage
func NewIntake(now time.Time) *Intake {
	return &Intake{
		ID:          uuid.New(),
		Stage:       StageDetails,
		Allergies:   AllergyState{Allergies: []AllergyRecord{}},
		Medications: Medications{},
		Symptoms:    SymptomAnswers{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SetSex accepts female, male or "" (unset)
func (in *Intake) SetSex(sex Sex) error {
	switch sex {
	case "", SexFemale, SexMale:
		in.Profile.Sex = sex
		return nil
	default:
		return ErrInvalidSex
	}
}

// EnsureSymptoms creates template defaults the first time the symptoms stage
// is entered for a form type. Existing answers for the same form are kept.
func (in *Intake) EnsureSymptoms(ft SymptomFormType) {
	if in.FormType == ft && len(in.Symptoms) > 0 {
		return
	}
	in.ResetSymptoms(ft)
}

// ResetSymptoms discards answers and restores template defaults
func (in *Intake) ResetSymptoms(ft SymptomFormType) {
	in.FormType = ft
	in.Symptoms = DefaultSymptoms(ft)
}

// Advance moves to the next stage when the current one validates. On failure
// the stage is unchanged, validation markers are switched on and the field
// errors are returned.
func (in *Intake) Advance() (FieldErrors, error) {
	if in.Stage >= StageTriage {
		return nil, ErrAlreadyFinalStage
	}
	if errs := ValidateStage(in, in.Stage); len(errs) > 0 {
		in.ShowValidation = true
		return errs, nil
	}
	in.Stage++
	in.ShowValidation = false
	return nil, nil
}

// Back returns to the previous stage without validation
func (in *Intake) Back() error {
	if in.Stage <= StageDetails {
		return ErrAlreadyFirstStage
	}
	in.Stage--
	return nil
}

// ReplaceTriage swaps in a freshly generated result. Results are never merged.
func (in *Intake) ReplaceTriage(result *TriageResult, errMsg string) {
	in.Triage = result
	in.TriageError = errMsg
}

// Touch records a mutation time
func (in *Intake) Touch(now time.Time) {
	in.UpdatedAt = now
}
