package handler

import (
	"errors"
	"net/http"
	"strconv"

	"ae-triage-intake/internal/delivery/dto"
	"ae-triage-intake/internal/delivery/http/middleware"
	"ae-triage-intake/internal/domain/entity"
	"ae-triage-intake/internal/service"
	"ae-triage-intake/internal/usecase"
	"ae-triage-intake/pkg/response"
	"ae-triage-intake/pkg/validator"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type IntakeHandler struct {
	intakeUsecase usecase.IntakeUsecase
	validator     *validator.CustomValidator
}

func NewIntakeHandler(intakeUsecase usecase.IntakeUsecase, validator *validator.CustomValidator) *IntakeHandler {
	return &IntakeHandler{
		intakeUsecase: intakeUsecase,
		validator:     validator,
	}
}

// writeIntakeError maps usecase and domain errors to HTTP responses.
func writeIntakeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrSessionNotFound):
		response.NotFound(w, "Intake session not found")
	case errors.Is(err, usecase.ErrComplaintUnknown):
		response.BadRequest(w, "Unknown complaint code")
	case errors.Is(err, usecase.ErrInvalidDateOfBirth),
		errors.Is(err, usecase.ErrDateOfBirthInFuture),
		errors.Is(err, entity.ErrInvalidSex),
		errors.Is(err, entity.ErrEmptyAllergen),
		errors.Is(err, entity.ErrInvalidReaction),
		errors.Is(err, entity.ErrEmptyMedication),
		errors.Is(err, entity.ErrInvalidOnset),
		errors.Is(err, entity.ErrSummaryTooLong),
		errors.Is(err, entity.ErrUnknownSymptomField),
		errors.Is(err, entity.ErrInvalidSymptomValue):
		response.BadRequest(w, err.Error())
	case errors.Is(err, entity.ErrAllergyIndexOutOfRange),
		errors.Is(err, entity.ErrMedicationIndexOutOfRange),
		errors.Is(err, entity.ErrActionIndexOutOfRange):
		response.NotFound(w, err.Error())
	case errors.Is(err, entity.ErrAllergiesWhileNKA),
		errors.Is(err, entity.ErrComplaintMissing),
		errors.Is(err, entity.ErrAlreadyFinalStage),
		errors.Is(err, entity.ErrAlreadyFirstStage),
		errors.Is(err, usecase.ErrTriageNotReady),
		errors.Is(err, service.ErrNoTriageResult),
		errors.Is(err, service.ErrNoAcceptedActions):
		response.Conflict(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}

var errNoSessionInContext = errors.New("no authenticated session in request context")

// sessionID returns the session the auth middleware bound to the request.
func sessionID(r *http.Request) (uuid.UUID, error) {
	id, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, errNoSessionInContext
	}
	return id, nil
}

func pathIndex(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["index"])
}

// decodeRequest reads and validates a JSON body. It writes the error
// response itself and reports whether the handler should continue.
func decodeRequest(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}

	if err := v.Validate(req); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}
	return true
}

func (h *IntakeHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.intakeUsecase.StartSession(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to start intake session")
		return
	}

	response.Success(w, http.StatusCreated, "Intake session started", session)
}

func (h *IntakeHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	session, err := h.intakeUsecase.GetSession(r.Context(), id)
	if err != nil {
		writeIntakeError(w, err, "Failed to get intake session")
		return
	}

	response.Success(w, http.StatusOK, "Intake session retrieved successfully", session)
}

func (h *IntakeHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	if err := h.intakeUsecase.EndSession(r.Context(), id); err != nil {
		writeIntakeError(w, err, "Failed to end intake session")
		return
	}

	response.Success(w, http.StatusOK, "Intake session ended", nil)
}

func (h *IntakeHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	var req dto.UpdateDetailsRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	session, err := h.intakeUsecase.UpdateDetails(r.Context(), id, &req)
	if err != nil {
		writeIntakeError(w, err, "Failed to update details")
		return
	}

	response.Success(w, http.StatusOK, "Details updated successfully", session)
}

func (h *IntakeHandler) SetNoKnownAllergies(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	var req dto.SetNoKnownAllergiesRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	session, err := h.intakeUsecase.SetNoKnownAllergies(r.Context(), id, &req)
	if err != nil {
		writeIntakeError(w, err, "Failed to update allergies")
		return
	}

	response.Success(w, http.StatusOK, "Allergies updated successfully", session)
}

func (h *IntakeHandler) AddAllergy(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	var req dto.AddAllergyRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	session, err := h.intakeUsecase.AddAllergy(r.Context(), id, &req)
	if err != nil {
		writeIntakeError(w, err, "Failed to add allergy")
		return
	}

	response.Success(w, http.StatusCreated, "Allergy added successfully", session)
}

func (h *IntakeHandler) RemoveAllergy(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}
	index, err := pathIndex(r)
	if err != nil {
		response.BadRequest(w, "Invalid allergy index")
		return
	}

	session, err := h.intakeUsecase.RemoveAllergy(r.Context(), id, index)
	if err != nil {
		writeIntakeError(w, err, "Failed to remove allergy")
		return
	}

	response.Success(w, http.StatusOK, "Allergy removed successfully", session)
}

func (h *IntakeHandler) AddMedication(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	var req dto.AddMedicationRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	session, err := h.intakeUsecase.AddMedication(r.Context(), id, &req)
	if err != nil {
		writeIntakeError(w, err, "Failed to add medication")
		return
	}

	response.Success(w, http.StatusCreated, "Medication added successfully", session)
}

func (h *IntakeHandler) RemoveMedication(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}
	index, err := pathIndex(r)
	if err != nil {
		response.BadRequest(w, "Invalid medication index")
		return
	}

	session, err := h.intakeUsecase.RemoveMedication(r.Context(), id, index)
	if err != nil {
		writeIntakeError(w, err, "Failed to remove medication")
		return
	}

	response.Success(w, http.StatusOK, "Medication removed successfully", session)
}

func (h *IntakeHandler) SelectComplaint(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	var req dto.SelectComplaintRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	session, err := h.intakeUsecase.SelectComplaint(r.Context(), id, &req)
	if err != nil {
		writeIntakeError(w, err, "Failed to update complaint")
		return
	}

	response.Success(w, http.StatusOK, "Complaint updated successfully", session)
}

func (h *IntakeHandler) ResetComplaint(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	session, err := h.intakeUsecase.ResetComplaint(r.Context(), id)
	if err != nil {
		writeIntakeError(w, err, "Failed to reset complaint")
		return
	}

	response.Success(w, http.StatusOK, "Complaint reset successfully", session)
}

func (h *IntakeHandler) GetSymptoms(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	form, err := h.intakeUsecase.GetSymptoms(r.Context(), id)
	if err != nil {
		writeIntakeError(w, err, "Failed to get symptoms")
		return
	}

	response.Success(w, http.StatusOK, "Symptoms retrieved successfully", form)
}

func (h *IntakeHandler) UpdateSymptoms(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	var req dto.UpdateSymptomsRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	form, err := h.intakeUsecase.UpdateSymptoms(r.Context(), id, &req)
	if err != nil {
		writeIntakeError(w, err, "Failed to update symptoms")
		return
	}

	response.Success(w, http.StatusOK, "Symptoms updated successfully", form)
}

func (h *IntakeHandler) ResetSymptoms(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	form, err := h.intakeUsecase.ResetSymptoms(r.Context(), id)
	if err != nil {
		writeIntakeError(w, err, "Failed to reset symptoms")
		return
	}

	response.Success(w, http.StatusOK, "Symptoms reset successfully", form)
}

func (h *IntakeHandler) Advance(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	result, err := h.intakeUsecase.Advance(r.Context(), id)
	if err != nil {
		writeIntakeError(w, err, "Failed to advance intake")
		return
	}

	message := "Advanced to next stage"
	if !result.Advanced {
		message = "Stage is incomplete"
	}
	response.Success(w, http.StatusOK, message, result)
}

func (h *IntakeHandler) Back(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	session, err := h.intakeUsecase.Back(r.Context(), id)
	if err != nil {
		writeIntakeError(w, err, "Failed to go back")
		return
	}

	response.Success(w, http.StatusOK, "Returned to previous stage", session)
}
