package entity

import (
	"time"
)

// Sex values accepted at intake. Displayed as "Gender" on the form.
type Sex string

const (
	SexFemale Sex = "female"
	SexMale   Sex = "male"
)

// Pregnancy check window (inclusive) for female patients.
const (
	PregnancyCheckMinAge = 12
	PregnancyCheckMaxAge = 55
)

// PatientProfile represents the demographics collected on the details stage
type PatientProfile struct {
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Sex         Sex        `json:"sex,omitempty"`
	IsPregnant  bool       `json:"is_pregnant"`
}

// AgeOn returns the age in whole years on the given day. The age drops by one
// while today's month/day precede the birth month/day.
func AgeOn(dob, today time.Time) int {
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return age
}

// Age returns the derived age and false when no date of birth is set.
func (p *PatientProfile) Age(today time.Time) (int, bool) {
	if p.DateOfBirth == nil {
		return 0, false
	}
	return AgeOn(*p.DateOfBirth, today), true
}

// PregnancyCheckApplies reports whether the pregnancy question is shown.
func (p *PatientProfile) PregnancyCheckApplies(today time.Time) bool {
	if p.Sex != SexFemale {
		return false
	}
	age, ok := p.Age(today)
	return ok && age >= PregnancyCheckMinAge && age <= PregnancyCheckMaxAge
}

// PregnancyFlagged is IsPregnant filtered through PregnancyCheckApplies.
func (p *PatientProfile) PregnancyFlagged(today time.Time) bool {
	return p.IsPregnant && p.PregnancyCheckApplies(today)
}

// FullName joins first and last name the way the intake header shows it.
func (p *PatientProfile) FullName() string {
	return p.FirstName + " " + p.LastName
}
