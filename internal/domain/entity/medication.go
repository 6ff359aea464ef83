package entity

import (
	"errors"
	"strings"
)

var (
	ErrEmptyMedication           = errors.New("medication is required")
	ErrMedicationIndexOutOfRange = errors.New("medication index out of range")
)

// Medications is an insertion-ordered list of free-text entries with exact
// duplicates suppressed.
type Medications []string

// Add trims and appends the entry. Returns false when it was already present.
func (m *Medications) Add(entry string) (bool, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return false, ErrEmptyMedication
	}
	for _, existing := range *m {
		if existing == entry {
			return false, nil
		}
	}
	*m = append(*m, entry)
	return true, nil
}

// RemoveAt deletes the entry at index i.
func (m *Medications) RemoveAt(i int) error {
	if i < 0 || i >= len(*m) {
		return ErrMedicationIndexOutOfRange
	}
	list := *m
	*m = append(list[:i:i], list[i+1:]...)
	return nil
}
