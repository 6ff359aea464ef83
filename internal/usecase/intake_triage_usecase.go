package usecase

import (
	"context"
	"errors"
	"time"

	"ae-triage-intake/internal/converter"
	"ae-triage-intake/internal/delivery/dto"
	"ae-triage-intake/internal/domain/entity"
	"ae-triage-intake/internal/infrastructure/llm"
	"ae-triage-intake/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestTriageSuggestion regenerates the triage result. Backend failures
// never surface here: the fallback result is stored together with the error
// message instead.
func (u *intakeUsecase) RequestTriageSuggestion(ctx context.Context, id uuid.UUID) (*dto.TriageResponse, error) {
	in, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Stage != entity.StageTriage {
		return nil, ErrTriageNotReady
	}

	in, err = u.runTriage(ctx, id)
	if err != nil {
		return nil, err
	}
	return converter.TriageToResponse(u.triageContext(in)), nil
}

// runTriage snapshots the intake under the session lock, calls the backend
// without holding it, then stores whichever result arrives. A later call
// simply overwrites an earlier one.
//
// Flow:
// 1. Snapshot the aggregate (symptom defaults ensured for the current complaint)
// 2. Build the request and call the backend once
// 3. Normalize the answer, or build the fallback on any failure
// 4. Replace the stored result
func (u *intakeUsecase) runTriage(ctx context.Context, id uuid.UUID) (*entity.Intake, error) {
	snapshot, err := u.mutate(ctx, id, func(in *entity.Intake) error {
		ft, err := u.formTypeFor(in)
		if err != nil {
			return err
		}
		in.EnsureSymptoms(ft)
		return nil
	})
	if err != nil {
		return nil, err
	}
	tc := u.triageContext(snapshot)

	prompt := service.BuildTriagePrompt(tc)

	start := time.Now()
	raw, backendErr := u.reasoning.Suggest(ctx, prompt)
	u.metrics.BackendRequestDuration.Observe(time.Since(start).Seconds())

	var result *entity.TriageResult
	errMsg := ""
	if backendErr != nil {
		kind := backendErrorKind(backendErr)
		u.metrics.BackendErrorsTotal.WithLabelValues(kind).Inc()
		u.log.WithFields(logrus.Fields{
			"session_id": id.String(),
			"kind":       kind,
		}).Warnf("Reasoning backend failed, using fallback: %v", backendErr)

		result = service.FallbackTriage(tc)
		errMsg = backendErr.Error()
	} else {
		result = service.NormalizeTriageResult(raw)
	}

	// The client may have gone away while the backend was answering; the
	// result is still kept for the session.
	saveCtx := context.WithoutCancel(ctx)
	in, err := u.mutate(saveCtx, id, func(in *entity.Intake) error {
		in.ReplaceTriage(result, errMsg)
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.metrics.TriageResultsTotal.WithLabelValues(string(result.Source), string(result.TriageCategory)).Inc()
	u.log.WithFields(logrus.Fields{
		"session_id":      id.String(),
		"source":          string(result.Source),
		"triage_category": string(result.TriageCategory),
		"actions":         len(result.NextActions),
	}).Info("Triage suggestion stored")

	return in, nil
}

func backendErrorKind(err error) string {
	var transportErr *llm.TransportError
	var malformedErr *llm.MalformedResponseError
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		return "configuration"
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &malformedErr):
		return "malformed"
	default:
		return "unknown"
	}
}

// ToggleAction sets one accepted flag
func (u *intakeUsecase) ToggleAction(ctx context.Context, id uuid.UUID, index int, req *dto.ToggleActionRequest) (*dto.TriageResponse, error) {
	in, err := u.mutate(ctx, id, func(in *entity.Intake) error {
		if in.Triage == nil {
			return service.ErrNoTriageResult
		}
		wasAccepted := index >= 0 && index < len(in.Triage.NextActions) && in.Triage.NextActions[index].Accepted
		if err := in.Triage.ToggleAction(index, *req.Accepted); err != nil {
			return err
		}
		if *req.Accepted && !wasAccepted {
			u.metrics.ActionsAcceptedTotal.Inc()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return converter.TriageToResponse(u.triageContext(in)), nil
}

func (u *intakeUsecase) AcceptAllActions(ctx context.Context, id uuid.UUID) (*dto.TriageResponse, error) {
	in, err := u.mutate(ctx, id, func(in *entity.Intake) error {
		if in.Triage == nil {
			return service.ErrNoTriageResult
		}
		newly := len(in.Triage.NextActions) - len(in.Triage.AcceptedActions())
		in.Triage.AcceptAllActions()
		u.metrics.ActionsAcceptedTotal.Add(float64(newly))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return converter.TriageToResponse(u.triageContext(in)), nil
}

// SendToEPR hands the accepted actions to the patient record stub
func (u *intakeUsecase) SendToEPR(ctx context.Context, id uuid.UUID) (*dto.EPRReceiptResponse, error) {
	unlock := u.locker.Lock(id)
	defer unlock()

	in, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	receipt, err := u.eprService.Send(ctx, u.triageContext(in))
	if err != nil {
		return nil, err
	}

	u.metrics.EPRSubmissionsTotal.Inc()
	return converter.EPRReceiptToResponse(receipt), nil
}

// HandoffDocument renders the handoff PDF and its download name
func (u *intakeUsecase) HandoffDocument(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	in, err := u.load(ctx, id)
	if err != nil {
		return nil, "", err
	}

	tc := u.triageContext(in)
	doc, err := u.eprService.HandoffPDF(tc)
	if err != nil {
		if !errors.Is(err, service.ErrNoTriageResult) {
			u.log.Errorf("Failed to render handoff for session %s: %+v", id, err)
		}
		return nil, "", err
	}
	return doc, converter.HandoffFilename(tc), nil
}
