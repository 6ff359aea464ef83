package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"ae-triage-intake/internal/converter"
	"ae-triage-intake/internal/delivery/dto"
	"ae-triage-intake/internal/domain/entity"
	"ae-triage-intake/internal/domain/repository"
	"ae-triage-intake/internal/infrastructure/llm"
	"ae-triage-intake/internal/service"
	"ae-triage-intake/pkg/jwt"
	"ae-triage-intake/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrSessionNotFound     = errors.New("intake session not found")
	ErrInvalidDateOfBirth  = errors.New("date of birth must use YYYY-MM-DD")
	ErrDateOfBirthInFuture = errors.New("date of birth cannot be in the future")
	ErrTriageNotReady      = errors.New("triage suggestions are only available on the final stage")
)

type IntakeUsecase interface {
	StartSession(ctx context.Context) (*dto.StartSessionResponse, error)
	GetSession(ctx context.Context, id uuid.UUID) (*dto.IntakeResponse, error)
	EndSession(ctx context.Context, id uuid.UUID) error

	UpdateDetails(ctx context.Context, id uuid.UUID, req *dto.UpdateDetailsRequest) (*dto.IntakeResponse, error)
	SetNoKnownAllergies(ctx context.Context, id uuid.UUID, req *dto.SetNoKnownAllergiesRequest) (*dto.IntakeResponse, error)
	AddAllergy(ctx context.Context, id uuid.UUID, req *dto.AddAllergyRequest) (*dto.IntakeResponse, error)
	RemoveAllergy(ctx context.Context, id uuid.UUID, index int) (*dto.IntakeResponse, error)
	AddMedication(ctx context.Context, id uuid.UUID, req *dto.AddMedicationRequest) (*dto.IntakeResponse, error)
	RemoveMedication(ctx context.Context, id uuid.UUID, index int) (*dto.IntakeResponse, error)

	SelectComplaint(ctx context.Context, id uuid.UUID, req *dto.SelectComplaintRequest) (*dto.IntakeResponse, error)
	ResetComplaint(ctx context.Context, id uuid.UUID) (*dto.IntakeResponse, error)

	GetSymptoms(ctx context.Context, id uuid.UUID) (*dto.SymptomFormResponse, error)
	UpdateSymptoms(ctx context.Context, id uuid.UUID, req *dto.UpdateSymptomsRequest) (*dto.SymptomFormResponse, error)
	ResetSymptoms(ctx context.Context, id uuid.UUID) (*dto.SymptomFormResponse, error)

	Advance(ctx context.Context, id uuid.UUID) (*dto.AdvanceResponse, error)
	Back(ctx context.Context, id uuid.UUID) (*dto.IntakeResponse, error)

	RequestTriageSuggestion(ctx context.Context, id uuid.UUID) (*dto.TriageResponse, error)
	ToggleAction(ctx context.Context, id uuid.UUID, index int, req *dto.ToggleActionRequest) (*dto.TriageResponse, error)
	AcceptAllActions(ctx context.Context, id uuid.UUID) (*dto.TriageResponse, error)
	SendToEPR(ctx context.Context, id uuid.UUID) (*dto.EPRReceiptResponse, error)
	HandoffDocument(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}

type intakeUsecase struct {
	log           *logrus.Logger
	sessionRepo   repository.IntakeSessionRepository
	complaintRepo repository.ComplaintRepository
	reasoning     llm.ReasoningClient
	eprService    *service.EPRService
	locker        *service.SessionLocker
	jwtService    *jwt.JWTService
	metrics       *metrics.Collector
	now           func() time.Time
}

func NewIntakeUsecase(
	log *logrus.Logger,
	sessionRepo repository.IntakeSessionRepository,
	complaintRepo repository.ComplaintRepository,
	reasoning llm.ReasoningClient,
	eprService *service.EPRService,
	locker *service.SessionLocker,
	jwtService *jwt.JWTService,
	collector *metrics.Collector,
) IntakeUsecase {
	return &intakeUsecase{
		log:           log,
		sessionRepo:   sessionRepo,
		complaintRepo: complaintRepo,
		reasoning:     reasoning,
		eprService:    eprService,
		locker:        locker,
		jwtService:    jwtService,
		metrics:       collector,
		now:           time.Now,
	}
}

// StartSession creates an empty intake and a token bound to it
func (u *intakeUsecase) StartSession(ctx context.Context) (*dto.StartSessionResponse, error) {
	in := entity.NewIntake(u.now())
	if err := u.sessionRepo.Create(ctx, in); err != nil {
		u.log.Errorf("Failed to create intake session: %+v", err)
		return nil, err
	}

	token, expiresAt, err := u.jwtService.GenerateSessionToken(in.ID)
	if err != nil {
		u.log.Errorf("Failed to sign token for session %s: %+v", in.ID, err)
		return nil, err
	}

	u.metrics.SessionsStartedTotal.Inc()
	u.log.Infof("Intake session started: id=%s", in.ID)

	return &dto.StartSessionResponse{
		Session:   converter.IntakeToResponse(u.triageContext(in)),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (u *intakeUsecase) GetSession(ctx context.Context, id uuid.UUID) (*dto.IntakeResponse, error) {
	in, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return converter.IntakeToResponse(u.triageContext(in)), nil
}

// EndSession discards the aggregate
func (u *intakeUsecase) EndSession(ctx context.Context, id uuid.UUID) error {
	unlock := u.locker.Lock(id)
	defer unlock()

	if err := u.sessionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		u.log.Warnf("Failed to delete session %s: %+v", id, err)
		return err
	}
	u.locker.Forget(id)

	u.metrics.SessionsEndedTotal.Inc()
	u.log.Infof("Intake session ended: id=%s", id)
	return nil
}

func (u *intakeUsecase) UpdateDetails(ctx context.Context, id uuid.UUID, req *dto.UpdateDetailsRequest) (*dto.IntakeResponse, error) {
	today := u.now()
	return u.mutateView(ctx, id, func(in *entity.Intake) error {
		if req.FirstName != nil {
			in.Profile.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			in.Profile.LastName = *req.LastName
		}
		if req.DateOfBirth != nil {
			dob, err := parseDateOfBirth(*req.DateOfBirth, today)
			if err != nil {
				return err
			}
			in.Profile.DateOfBirth = dob
		}
		if req.Sex != nil {
			if err := in.SetSex(entity.Sex(strings.ToLower(strings.TrimSpace(*req.Sex)))); err != nil {
				return err
			}
		}
		if req.IsPregnant != nil {
			in.Profile.IsPregnant = *req.IsPregnant
		}
		if req.Notes != nil {
			in.Notes = *req.Notes
		}
		return nil
	})
}

func parseDateOfBirth(raw string, today time.Time) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	dob, err := time.ParseInLocation(converter.DateLayout, raw, today.Location())
	if err != nil {
		return nil, ErrInvalidDateOfBirth
	}
	if dob.After(today) {
		return nil, ErrDateOfBirthInFuture
	}
	return &dob, nil
}

func (u *intakeUsecase) SetNoKnownAllergies(ctx context.Context, id uuid.UUID, req *dto.SetNoKnownAllergiesRequest) (*dto.IntakeResponse, error) {
	return u.mutateView(ctx, id, func(in *entity.Intake) error {
		in.Allergies.SetNoKnownAllergies(*req.NoKnownAllergies)
		return nil
	})
}

func (u *intakeUsecase) AddAllergy(ctx context.Context, id uuid.UUID, req *dto.AddAllergyRequest) (*dto.IntakeResponse, error) {
	return u.mutateView(ctx, id, func(in *entity.Intake) error {
		return in.Allergies.Add(req.Allergen, entity.AllergyReaction(req.Reaction))
	})
}

func (u *intakeUsecase) RemoveAllergy(ctx context.Context, id uuid.UUID, index int) (*dto.IntakeResponse, error) {
	return u.mutateView(ctx, id, func(in *entity.Intake) error {
		return in.Allergies.RemoveAt(index)
	})
}

// AddMedication ignores exact duplicates
func (u *intakeUsecase) AddMedication(ctx context.Context, id uuid.UUID, req *dto.AddMedicationRequest) (*dto.IntakeResponse, error) {
	return u.mutateView(ctx, id, func(in *entity.Intake) error {
		added, err := in.Medications.Add(req.Name)
		if err != nil {
			return err
		}
		if !added {
			u.log.Debugf("Duplicate medication ignored for session %s", in.ID)
		}
		return nil
	})
}

func (u *intakeUsecase) RemoveMedication(ctx context.Context, id uuid.UUID, index int) (*dto.IntakeResponse, error) {
	return u.mutateView(ctx, id, func(in *entity.Intake) error {
		return in.Medications.RemoveAt(index)
	})
}

// SelectComplaint sets code, onset and summary. A new code clears onset and
// summary; once past the complaint stage it also swaps the symptom template
// when the new complaint maps to a different one.
func (u *intakeUsecase) SelectComplaint(ctx context.Context, id uuid.UUID, req *dto.SelectComplaintRequest) (*dto.IntakeResponse, error) {
	return u.mutateView(ctx, id, func(in *entity.Intake) error {
		if req.Code != nil {
			code := strings.TrimSpace(*req.Code)
			if code == "" {
				u.clearComplaint(in)
			} else if code != in.Complaint.Code {
				def, err := u.complaintRepo.FindByCode(code)
				if err != nil {
					return ErrComplaintUnknown
				}
				in.Complaint = entity.ComplaintSelection{Code: def.Code}
				if in.Stage >= entity.StageSymptoms {
					in.EnsureSymptoms(entity.ResolveFormType(def.Code, def.Category))
				}
			}
		}

		if (req.Onset != nil || req.Summary != nil) && !in.Complaint.Selected() {
			return entity.ErrComplaintMissing
		}
		if req.Onset != nil {
			if err := in.Complaint.SetOnset(entity.Onset(strings.TrimSpace(*req.Onset))); err != nil {
				return err
			}
		}
		if req.Summary != nil {
			if err := in.Complaint.SetSummary(*req.Summary); err != nil {
				return err
			}
		}
		return nil
	})
}

func (u *intakeUsecase) ResetComplaint(ctx context.Context, id uuid.UUID) (*dto.IntakeResponse, error) {
	return u.mutateView(ctx, id, func(in *entity.Intake) error {
		u.clearComplaint(in)
		return nil
	})
}

func (u *intakeUsecase) clearComplaint(in *entity.Intake) {
	in.Complaint.Reset()
	in.FormType = ""
	in.Symptoms = entity.SymptomAnswers{}
}

func (u *intakeUsecase) GetSymptoms(ctx context.Context, id uuid.UUID) (*dto.SymptomFormResponse, error) {
	in, err := u.mutate(ctx, id, func(in *entity.Intake) error {
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
	return converter.SymptomFormToResponse(in.FormType, in.Symptoms), nil
}

// UpdateSymptoms applies every answer or none of them.
func (u *intakeUsecase) UpdateSymptoms(ctx context.Context, id uuid.UUID, req *dto.UpdateSymptomsRequest) (*dto.SymptomFormResponse, error) {
	in, err := u.mutate(ctx, id, func(in *entity.Intake) error {
		ft, err := u.formTypeFor(in)
		if err != nil {
			return err
		}
		in.EnsureSymptoms(ft)

		next := make(entity.SymptomAnswers, len(in.Symptoms))
		for k, v := range in.Symptoms {
			next[k] = v
		}

		keys := make([]string, 0, len(req.Answers))
		for k := range req.Answers {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			if err := next.Set(ft, k, req.Answers[k]); err != nil {
				return err
			}
		}
		in.Symptoms = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return converter.SymptomFormToResponse(in.FormType, in.Symptoms), nil
}

func (u *intakeUsecase) ResetSymptoms(ctx context.Context, id uuid.UUID) (*dto.SymptomFormResponse, error) {
	in, err := u.mutate(ctx, id, func(in *entity.Intake) error {
		ft, err := u.formTypeFor(in)
		if err != nil {
			return err
		}
		in.ResetSymptoms(ft)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return converter.SymptomFormToResponse(in.FormType, in.Symptoms), nil
}

// Advance attempts the next stage. A blocked attempt is not an error: the
// session comes back with validation markers switched on. Reaching the
// final stage requests a triage suggestion before returning.
func (u *intakeUsecase) Advance(ctx context.Context, id uuid.UUID) (*dto.AdvanceResponse, error) {
	var from entity.IntakeStage
	advanced := false

	in, err := u.mutate(ctx, id, func(in *entity.Intake) error {
		from = in.Stage
		fieldErrs, err := in.Advance()
		if err != nil {
			return err
		}
		if len(fieldErrs) > 0 {
			return nil
		}
		advanced = true
		if in.Stage == entity.StageSymptoms {
			ft, err := u.formTypeFor(in)
			if err != nil {
				return err
			}
			in.EnsureSymptoms(ft)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome := "blocked"
	if advanced {
		outcome = "advanced"
	}
	u.metrics.StageAdvancesTotal.WithLabelValues(from.Name(), outcome).Inc()

	if advanced && in.Stage == entity.StageTriage {
		in, err = u.runTriage(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	return &dto.AdvanceResponse{
		Advanced: advanced,
		Session:  converter.IntakeToResponse(u.triageContext(in)),
	}, nil
}

func (u *intakeUsecase) Back(ctx context.Context, id uuid.UUID) (*dto.IntakeResponse, error) {
	return u.mutateView(ctx, id, func(in *entity.Intake) error {
		if err := in.Back(); err != nil {
			return err
		}
		in.ShowValidation = false
		return nil
	})
}

// =============================================================================
// Helpers
// =============================================================================

func (u *intakeUsecase) load(ctx context.Context, id uuid.UUID) (*entity.Intake, error) {
	in, err := u.sessionRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to load session %s: %+v", id, err)
		return nil, err
	}
	if in == nil {
		return nil, ErrSessionNotFound
	}
	return in, nil
}

// mutate runs fn on the stored aggregate under the session lock and saves
// the result. Nothing is saved when fn fails.
func (u *intakeUsecase) mutate(ctx context.Context, id uuid.UUID, fn func(in *entity.Intake) error) (*entity.Intake, error) {
	unlock := u.locker.Lock(id)
	defer unlock()

	in, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(in); err != nil {
		return nil, err
	}

	in.Touch(u.now())
	if err := u.sessionRepo.Update(ctx, in); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		u.log.Warnf("Failed to save session %s: %+v", id, err)
		return nil, err
	}
	return in, nil
}

func (u *intakeUsecase) mutateView(ctx context.Context, id uuid.UUID, fn func(in *entity.Intake) error) (*dto.IntakeResponse, error) {
	in, err := u.mutate(ctx, id, fn)
	if err != nil {
		return nil, err
	}
	return converter.IntakeToResponse(u.triageContext(in)), nil
}

func (u *intakeUsecase) complaintFor(in *entity.Intake) *entity.ComplaintDefinition {
	if !in.Complaint.Selected() {
		return nil
	}
	def, err := u.complaintRepo.FindByCode(in.Complaint.Code)
	if err != nil {
		return nil
	}
	return def
}

func (u *intakeUsecase) formTypeFor(in *entity.Intake) (entity.SymptomFormType, error) {
	def := u.complaintFor(in)
	if def == nil {
		return "", entity.ErrComplaintMissing
	}
	return entity.ResolveFormType(def.Code, def.Category), nil
}

func (u *intakeUsecase) triageContext(in *entity.Intake) service.TriageContext {
	return service.TriageContext{
		Intake:    in,
		Complaint: u.complaintFor(in),
		Today:     u.now(),
	}
}
