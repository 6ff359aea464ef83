package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ae-triage-intake/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoTriageResult    = errors.New("no triage result to send")
	ErrNoAcceptedActions = errors.New("no accepted actions to send")
)

// EPRReceipt acknowledges a handoff to the patient record
type EPRReceipt struct {
	Reference uuid.UUID
	SessionID uuid.UUID
	SentAt    time.Time
	Actions   []entity.NextAction
}

// EPRService is the boundary to the electronic patient record. The record
// system itself is not integrated: submissions are logged and acknowledged.
type EPRService struct {
	log *logrus.Logger
	now func() time.Time
}

func NewEPRService(log *logrus.Logger) *EPRService {
	return &EPRService{log: log, now: time.Now}
}

// Send hands the accepted actions over. At least one action must be accepted.
func (s *EPRService) Send(ctx context.Context, c TriageContext) (*EPRReceipt, error) {
	in := c.Intake
	if in.Triage == nil {
		return nil, ErrNoTriageResult
	}
	accepted := in.Triage.AcceptedActions()
	if len(accepted) == 0 {
		return nil, ErrNoAcceptedActions
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	receipt := &EPRReceipt{
		Reference: uuid.New(),
		SessionID: in.ID,
		SentAt:    s.now(),
		Actions:   accepted,
	}

	labels := make([]string, len(accepted))
	for i, a := range accepted {
		labels[i] = a.Label
	}

	s.log.WithFields(logrus.Fields{
		"session_id":      in.ID.String(),
		"reference":       receipt.Reference.String(),
		"triage_category": string(in.Triage.TriageCategory),
		"source":          string(in.Triage.Source),
		"actions":         strings.Join(labels, "; "),
	}).Info("Sent accepted actions to EPR")

	return receipt, nil
}

// HandoffPDF renders the clinician handoff sheet: demographics, allergies,
// complaint, proposed urgency, differential and accepted actions.
func (s *EPRService) HandoffPDF(c TriageContext) ([]byte, error) {
	in := c.Intake
	if in.Triage == nil {
		return nil, ErrNoTriageResult
	}
	result := in.Triage

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("A&E triage handoff", false)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr("A&E triage handoff"))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Generated: %s", s.now().Format("02 Jan 2006 15:04"))))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Session: %s", in.ID)))
	pdf.Ln(10)

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
	}
	line := func(text string) {
		pdf.MultiCell(0, 5, tr(text), "", "L", false)
	}

	section("Patient")
	sex := string(in.Profile.Sex)
	if sex == "" {
		sex = "?"
	}
	line(fmt.Sprintf("%s | Age %s | Gender %s", in.Profile.FullName(), c.AgeText(), sex))
	if in.Profile.PregnancyFlagged(c.Today) {
		line("Pregnancy: Pregnant/possible")
	}
	line("Allergies: " + entity.FormatAllergyList(in.Allergies))
	meds := "Unknown"
	if len(in.Medications) > 0 {
		meds = strings.Join(in.Medications, ", ")
	}
	line("Current meds: " + meds)
	pdf.Ln(3)

	section("Presentation")
	complaint := orUnknown(c.ComplaintLabel())
	if in.Complaint.Onset != entity.OnsetUnset {
		complaint += " | Onset " + string(in.Complaint.Onset)
	}
	line("Complaint: " + complaint)
	line("Summary: " + orDash(in.Complaint.Summary))
	line("Triage notes: " + orDash(in.Notes))
	pdf.Ln(3)

	section("Proposed urgency: " + string(result.TriageCategory))
	for _, flag := range result.RedFlags {
		line("Red flag: " + flag)
	}
	for _, d := range []*entity.Diagnosis{result.DiagPrimary, result.DiagSecondary} {
		if d == nil {
			continue
		}
		confidence := "?"
		if d.Confidence != nil {
			confidence = fmt.Sprintf("%.0f%%", *d.Confidence)
		}
		line(fmt.Sprintf("%s (%s): %s", d.Condition, confidence, d.Rationale))
	}
	if result.Summary != "" {
		line(result.Summary)
	}
	pdf.Ln(3)

	section("Accepted actions")
	accepted := result.AcceptedActions()
	if len(accepted) == 0 {
		line("None accepted.")
	}
	for _, a := range accepted {
		text := "- " + a.Label
		if a.Hint != "" {
			text += " [" + a.Hint + "]"
		}
		line(text)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "I", 8)
	line(strings.Join(result.Explanation, " "))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write handoff PDF: %w", err)
	}
	return buf.Bytes(), nil
}
