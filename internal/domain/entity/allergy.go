package entity

import (
	"errors"
	"strings"
)

// AllergyReaction is the recorded reaction to an allergen
type AllergyReaction string

const (
	ReactionUnknown        AllergyReaction = "Unknown"
	ReactionMildRash       AllergyReaction = "Mild rash"
	ReactionSwelling       AllergyReaction = "Swelling"
	ReactionBreathlessness AllergyReaction = "Breathlessness"
	ReactionAnaphylaxis    AllergyReaction = "Anaphylaxis"
)

var (
	ErrEmptyAllergen          = errors.New("allergen is required")
	ErrInvalidReaction        = errors.New("invalid allergy reaction")
	ErrAllergiesWhileNKA      = errors.New("cannot add an allergy while no known allergies is set")
	ErrAllergyIndexOutOfRange = errors.New("allergy index out of range")
)

// AllergyReactions lists the reactions in the order the form offers them.
func AllergyReactions() []AllergyReaction {
	return []AllergyReaction{
		ReactionUnknown,
		ReactionMildRash,
		ReactionSwelling,
		ReactionBreathlessness,
		ReactionAnaphylaxis,
	}
}

// IsValid checks the reaction against the closed set
func (r AllergyReaction) IsValid() bool {
	for _, known := range AllergyReactions() {
		if r == known {
			return true
		}
	}
	return false
}

// AllergyRecord is one allergen with its reaction
type AllergyRecord struct {
	Allergen string          `json:"allergen"`
	Reaction AllergyReaction `json:"reaction"`
}

// AllergyState holds either NKA with an empty list, or a list of records.
// Setting NKA clears the list.
type AllergyState struct {
	NoKnownAllergies bool            `json:"no_known_allergies"`
	Allergies        []AllergyRecord `json:"allergies"`
}

// SetNoKnownAllergies toggles NKA; turning it on drops any recorded allergies.
func (s *AllergyState) SetNoKnownAllergies(nka bool) {
	s.NoKnownAllergies = nka
	if nka {
		s.Allergies = []AllergyRecord{}
	}
}

// Add appends a record. An empty reaction defaults to Unknown.
func (s *AllergyState) Add(allergen string, reaction AllergyReaction) error {
	if s.NoKnownAllergies {
		return ErrAllergiesWhileNKA
	}
	allergen = strings.TrimSpace(allergen)
	if allergen == "" {
		return ErrEmptyAllergen
	}
	if reaction == "" {
		reaction = ReactionUnknown
	}
	if !reaction.IsValid() {
		return ErrInvalidReaction
	}
	s.Allergies = append(s.Allergies, AllergyRecord{Allergen: allergen, Reaction: reaction})
	return nil
}

// RemoveAt deletes the record at index i, preserving order.
func (s *AllergyState) RemoveAt(i int) error {
	if i < 0 || i >= len(s.Allergies) {
		return ErrAllergyIndexOutOfRange
	}
	s.Allergies = append(s.Allergies[:i:i], s.Allergies[i+1:]...)
	return nil
}

// Satisfied is the details-stage allergy requirement.
func (s *AllergyState) Satisfied() bool {
	return s.NoKnownAllergies || len(s.Allergies) > 0
}

// FormatAllergyList renders the allergy state for both the reasoning backend
// and the clinician view. Both call sites must go through here.
func FormatAllergyList(s AllergyState) string {
	if s.NoKnownAllergies {
		return "NKA"
	}
	if len(s.Allergies) == 0 {
		return "Unknown"
	}
	parts := make([]string, len(s.Allergies))
	for i, a := range s.Allergies {
		parts[i] = a.Allergen + " (" + string(a.Reaction) + ")"
	}
	return strings.Join(parts, "; ")
}
