package entity

import (
	"errors"
	"unicode/utf8"
)

// ComplaintCategory groups complaints for browsing
type ComplaintCategory string

const (
	CategoryAll         ComplaintCategory = "All"
	CategoryCardiac     ComplaintCategory = "Cardiac"
	CategoryRespiratory ComplaintCategory = "Respiratory"
	CategoryNeuro       ComplaintCategory = "Neuro"
	CategoryTrauma      ComplaintCategory = "Trauma"
	CategoryAbdoGI      ComplaintCategory = "Abdo/GI"
	CategoryGU          ComplaintCategory = "GU"
	CategoryENTEye      ComplaintCategory = "ENT/Eye"
	CategorySkin        ComplaintCategory = "Skin"
	CategoryOBGyn       ComplaintCategory = "OB-Gyn"
	CategoryPsychTox    ComplaintCategory = "Psych/Tox"
	CategoryOther       ComplaintCategory = "Other"
)

// ComplaintCategories returns the browse tabs, "All" first.
func ComplaintCategories() []ComplaintCategory {
	return []ComplaintCategory{
		CategoryAll,
		CategoryCardiac,
		CategoryRespiratory,
		CategoryNeuro,
		CategoryTrauma,
		CategoryAbdoGI,
		CategoryGU,
		CategoryENTEye,
		CategorySkin,
		CategoryOBGyn,
		CategoryPsychTox,
		CategoryOther,
	}
}

// IsValid reports whether c is one of the browse tabs (including "All")
func (c ComplaintCategory) IsValid() bool {
	for _, known := range ComplaintCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// ComplaintDefinition is an immutable catalog entry
type ComplaintDefinition struct {
	Code     string            `json:"code"`
	Label    string            `json:"label"`
	Category ComplaintCategory `json:"category"`
	Hint     string            `json:"hint,omitempty"`
	Common   bool              `json:"common"`
}

// Complaint codes the triage rules refer to directly.
const (
	ComplaintChestPain      = "chest_pain"
	ComplaintShortBreath    = "short_breath"
	ComplaintStrokeSymptoms = "stroke_symptoms"
	ComplaintHeadInjury     = "head_injury"
)

// Onset is the coarse time since symptoms started
type Onset string

const (
	OnsetUnset        Onset = ""
	OnsetNow          Onset = "Now"
	OnsetUnderOneHour Onset = "<1h"
	OnsetOneToFour    Onset = "1–4h"
	OnsetFourToTwelve Onset = "4–12h"
	OnsetOverTwelve   Onset = ">12h"
	OnsetUnknown      Onset = "Unknown"
)

// MaxComplaintSummary caps the one-line summary length in characters.
const MaxComplaintSummary = 140

var (
	ErrInvalidOnset     = errors.New("invalid onset")
	ErrSummaryTooLong   = errors.New("one-line summary exceeds 140 characters")
	ErrComplaintMissing = errors.New("complaint not selected")
)

// OnsetBuckets lists the selectable onset values in display order.
func OnsetBuckets() []Onset {
	return []Onset{OnsetNow, OnsetUnderOneHour, OnsetOneToFour, OnsetFourToTwelve, OnsetOverTwelve, OnsetUnknown}
}

// IsValid accepts the unset value as well as any bucket
func (o Onset) IsValid() bool {
	if o == OnsetUnset {
		return true
	}
	for _, b := range OnsetBuckets() {
		if o == b {
			return true
		}
	}
	return false
}

// ComplaintSelection is the complaint stage state
type ComplaintSelection struct {
	Code    string `json:"code,omitempty"`
	Onset   Onset  `json:"onset,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// Selected reports whether a complaint code has been chosen
func (c *ComplaintSelection) Selected() bool {
	return c.Code != ""
}

// SetOnset validates and stores the onset bucket
func (c *ComplaintSelection) SetOnset(o Onset) error {
	if !o.IsValid() {
		return ErrInvalidOnset
	}
	c.Onset = o
	return nil
}

// SetSummary stores the optional one-line summary (counted in characters)
func (c *ComplaintSelection) SetSummary(s string) error {
	if utf8.RuneCountInString(s) > MaxComplaintSummary {
		return ErrSummaryTooLong
	}
	c.Summary = s
	return nil
}

// Reset clears code, onset and summary.
func (c *ComplaintSelection) Reset() {
	*c = ComplaintSelection{}
}
