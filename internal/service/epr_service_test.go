package service

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"ae-triage-intake/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func triagedContext() TriageContext {
	c := newTestContext("chest_pain", entity.CategoryCardiac, "Chest pain")
	c.Intake.ReplaceTriage(&entity.TriageResult{
		TriageCategory: entity.TriageVeryUrgent,
		RedFlags:       []string{"Syncope"},
		DiagPrimary:    entity.NewDiagnosis("Acute coronary syndrome", 60, "Typical pain"),
		NextActions: []entity.NextAction{
			{ID: "ECG", Label: "ECG", Hint: entity.TimeCriticalHint},
			{ID: "Troponin", Label: "Troponin"},
		},
		Explanation: []string{entity.ExplanationModel},
		Summary:     "Possible ACS — review.",
		Source:      entity.TriageSourceModel,
	}, "")
	return c
}

func TestEPRServiceSend(t *testing.T) {
	svc := NewEPRService(newTestLogger())

	t.Run("No Triage Result", func(t *testing.T) {
		c := newTestContext("rash", entity.CategorySkin, "Rash")
		_, err := svc.Send(context.Background(), c)
		assert.ErrorIs(t, err, ErrNoTriageResult)
	})

	t.Run("Nothing Accepted", func(t *testing.T) {
		_, err := svc.Send(context.Background(), triagedContext())
		assert.ErrorIs(t, err, ErrNoAcceptedActions)
	})

	t.Run("Accepted Actions Sent", func(t *testing.T) {
		fixed := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return fixed }

		c := triagedContext()
		require.NoError(t, c.Intake.Triage.ToggleAction(1, true))

		receipt, err := svc.Send(context.Background(), c)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, receipt.Reference)
		assert.Equal(t, c.Intake.ID, receipt.SessionID)
		assert.Equal(t, fixed, receipt.SentAt)
		assert.Equal(t, []entity.NextAction{{ID: "Troponin", Label: "Troponin", Accepted: true}}, receipt.Actions)
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		c := triagedContext()
		c.Intake.Triage.AcceptAllActions()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := svc.Send(ctx, c)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestEPRServiceHandoffPDF(t *testing.T) {
	svc := NewEPRService(newTestLogger())

	t.Run("Renders Document", func(t *testing.T) {
		c := triagedContext()
		c.Intake.Triage.AcceptAllActions()
		c.Intake.Profile.IsPregnant = true

		doc, err := svc.HandoffPDF(c)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")), "output should be a PDF")
	})

	t.Run("Requires Triage Result", func(t *testing.T) {
		_, err := svc.HandoffPDF(newTestContext("rash", entity.CategorySkin, "Rash"))
		assert.ErrorIs(t, err, ErrNoTriageResult)
	})
}
