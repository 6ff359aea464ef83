package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeDetails(in *Intake) {
	dob := date(1995, time.March, 15)
	in.Profile.FirstName = "Jane"
	in.Profile.LastName = "Doe"
	in.Profile.DateOfBirth = &dob
	in.Profile.Sex = SexFemale
	in.Allergies.SetNoKnownAllergies(true)
}

func TestValidateStage(t *testing.T) {
	t.Run("Empty Details", func(t *testing.T) {
		in := NewIntake(time.Now())
		errs := ValidateStage(in, StageDetails)

		assert.Equal(t, FieldErrors{
			"first_name":    MsgRequired,
			"last_name":     MsgRequired,
			"date_of_birth": MsgRequired,
			"sex":           MsgSelectOne,
			"allergies":     MsgAllergiesRequired,
		}, errs)
		assert.False(t, CanAdvance(in, StageDetails))
	})

	t.Run("Whitespace Name Is Missing", func(t *testing.T) {
		in := NewIntake(time.Now())
		completeDetails(in)
		in.Profile.FirstName = "   "

		errs := ValidateStage(in, StageDetails)
		assert.Equal(t, FieldErrors{"first_name": MsgRequired}, errs)
	})

	t.Run("Missing First Name Only", func(t *testing.T) {
		in := NewIntake(time.Now())
		dob := date(1990, time.February, 1)
		in.Profile.FirstName = ""
		in.Profile.LastName = "Doe"
		in.Profile.DateOfBirth = &dob
		in.Profile.Sex = SexMale
		in.Allergies.SetNoKnownAllergies(true)

		assert.Equal(t, FieldErrors{"first_name": MsgRequired}, ValidateStage(in, StageDetails))
		assert.False(t, CanAdvance(in, StageDetails))

		in.Profile.FirstName = "Jane"
		assert.Empty(t, ValidateStage(in, StageDetails))
		assert.True(t, CanAdvance(in, StageDetails))
	})

	t.Run("Complaint Required", func(t *testing.T) {
		in := NewIntake(time.Now())
		assert.Equal(t, MsgSelectComplaint, ValidateStage(in, StageComplaint)["complaint"])
		assert.Equal(t, MsgSelectComplaint, ValidateStage(in, StageSymptoms)["complaint"])

		in.Complaint.Code = "chest_pain"
		assert.True(t, CanAdvance(in, StageComplaint))
	})

	t.Run("Triage Stage Has No Rules", func(t *testing.T) {
		assert.Empty(t, ValidateStage(NewIntake(time.Now()), StageTriage))
	})
}

func TestIntakeNavigation(t *testing.T) {
	t.Run("Blocked Advance Shows Validation", func(t *testing.T) {
		in := NewIntake(time.Now())
		errs, err := in.Advance()

		require.NoError(t, err)
		assert.NotEmpty(t, errs)
		assert.Equal(t, StageDetails, in.Stage, "stage should not change")
		assert.True(t, in.ShowValidation, "markers should be switched on")
	})

	t.Run("Advance Through Stages", func(t *testing.T) {
		in := NewIntake(time.Now())
		completeDetails(in)

		errs, err := in.Advance()
		require.NoError(t, err)
		assert.Empty(t, errs)
		assert.Equal(t, StageComplaint, in.Stage)
		assert.False(t, in.ShowValidation)

		in.Complaint.Code = "fall"
		_, err = in.Advance()
		require.NoError(t, err)
		_, err = in.Advance()
		require.NoError(t, err)
		assert.Equal(t, StageTriage, in.Stage)

		_, err = in.Advance()
		assert.ErrorIs(t, err, ErrAlreadyFinalStage)
	})

	t.Run("Back", func(t *testing.T) {
		in := NewIntake(time.Now())
		assert.ErrorIs(t, in.Back(), ErrAlreadyFirstStage)

		in.Stage = StageSymptoms
		require.NoError(t, in.Back())
		assert.Equal(t, StageComplaint, in.Stage)
	})

	t.Run("Stage Names", func(t *testing.T) {
		assert.Equal(t, "Triage & actions", StageTriage.Name())
		assert.Equal(t, "Details", StageDetails.Name())
	})
}

func TestIntakeSymptoms(t *testing.T) {
	t.Run("Ensure Keeps Answers For Same Form", func(t *testing.T) {
		in := NewIntake(time.Now())
		in.EnsureSymptoms(FormChestPain)
		require.NoError(t, in.Symptoms.Set(FormChestPain, "syncope", "Yes"))

		in.EnsureSymptoms(FormChestPain)
		assert.Equal(t, "Yes", in.Symptoms.String("syncope"), "answers should survive a repeated ensure")
	})

	t.Run("Form Switch Replaces Keys", func(t *testing.T) {
		in := NewIntake(time.Now())
		in.EnsureSymptoms(FormChestPain)
		in.EnsureSymptoms(FormLimb)

		assert.Equal(t, FormLimb, in.FormType)
		assert.Equal(t, DefaultSymptoms(FormLimb), in.Symptoms)
		_, stale := in.Symptoms["pain_score"]
		assert.False(t, stale, "chest pain keys should be gone")
	})

	t.Run("Reset", func(t *testing.T) {
		in := NewIntake(time.Now())
		in.EnsureSymptoms(FormSOB)
		require.NoError(t, in.Symptoms.Set(FormSOB, "wheeze", "Yes"))

		in.ResetSymptoms(FormSOB)
		assert.Equal(t, DefaultSymptoms(FormSOB), in.Symptoms)
	})

	t.Run("Set Sex", func(t *testing.T) {
		in := NewIntake(time.Now())
		require.NoError(t, in.SetSex(SexMale))
		require.NoError(t, in.SetSex(""))
		assert.ErrorIs(t, in.SetSex("other"), ErrInvalidSex)
	})
}

func TestTriageResultActions(t *testing.T) {
	result := &TriageResult{NextActions: []NextAction{
		{ID: "ECG", Label: "ECG"},
		{ID: "Troponin", Label: "Troponin"},
	}}

	require.NoError(t, result.ToggleAction(1, true))
	assert.Equal(t, []NextAction{{ID: "Troponin", Label: "Troponin", Accepted: true}}, result.AcceptedActions())
	assert.ErrorIs(t, result.ToggleAction(2, true), ErrActionIndexOutOfRange)

	result.AcceptAllActions()
	assert.Len(t, result.AcceptedActions(), 2)
}
