package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAgeOn(t *testing.T) {
	dob := date(1995, time.March, 15)

	t.Run("Birthday Already Passed", func(t *testing.T) {
		assert.Equal(t, 30, AgeOn(dob, date(2025, time.June, 1)), "age should count the completed year")
	})

	t.Run("Birthday Not Yet Reached", func(t *testing.T) {
		assert.Equal(t, 29, AgeOn(dob, date(2025, time.March, 14)), "age should drop by one the day before the birthday")
	})

	t.Run("On The Birthday", func(t *testing.T) {
		assert.Equal(t, 30, AgeOn(dob, date(2025, time.March, 15)), "age should increase on the birthday itself")
	})
}

func TestPregnancyCheck(t *testing.T) {
	today := date(2025, time.June, 1)
	dob := date(1995, time.March, 15)

	t.Run("Female In Window", func(t *testing.T) {
		p := PatientProfile{DateOfBirth: &dob, Sex: SexFemale, IsPregnant: true}
		assert.True(t, p.PregnancyCheckApplies(today), "check should apply to a 30 year old female")
		assert.True(t, p.PregnancyFlagged(today), "pregnancy should be flagged")
	})

	t.Run("Male Never Flagged", func(t *testing.T) {
		p := PatientProfile{DateOfBirth: &dob, Sex: SexMale, IsPregnant: true}
		assert.False(t, p.PregnancyCheckApplies(today), "check should not apply to males")
		assert.False(t, p.PregnancyFlagged(today), "stale pregnancy flag should be filtered")
	})

	t.Run("Window Bounds", func(t *testing.T) {
		twelve := date(2013, time.June, 1)
		fiftySix := date(1969, time.May, 31)
		assert.True(t, (&PatientProfile{DateOfBirth: &twelve, Sex: SexFemale}).PregnancyCheckApplies(today), "12 is inside the window")
		assert.False(t, (&PatientProfile{DateOfBirth: &fiftySix, Sex: SexFemale}).PregnancyCheckApplies(today), "56 is outside the window")
	})

	t.Run("No Date Of Birth", func(t *testing.T) {
		p := PatientProfile{Sex: SexFemale, IsPregnant: true}
		_, ok := p.Age(today)
		assert.False(t, ok, "age should be unknown")
		assert.False(t, p.PregnancyCheckApplies(today), "check needs an age")
	})
}
