package handler

import (
	"net/http"

	"ae-triage-intake/internal/delivery/dto"
	"ae-triage-intake/internal/usecase"
	"ae-triage-intake/pkg/response"
	"ae-triage-intake/pkg/validator"
)

type TriageHandler struct {
	intakeUsecase usecase.IntakeUsecase
	validator     *validator.CustomValidator
}

func NewTriageHandler(intakeUsecase usecase.IntakeUsecase, validator *validator.CustomValidator) *TriageHandler {
	return &TriageHandler{
		intakeUsecase: intakeUsecase,
		validator:     validator,
	}
}

func (h *TriageHandler) RequestSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	triage, err := h.intakeUsecase.RequestTriageSuggestion(r.Context(), id)
	if err != nil {
		writeIntakeError(w, err, "Failed to generate triage suggestion")
		return
	}

	message := "Triage suggestion generated"
	if triage.Error != "" {
		message = "Triage suggestion generated from local fallback"
	}
	response.Success(w, http.StatusOK, message, triage)
}

func (h *TriageHandler) ToggleAction(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}
	index, err := pathIndex(r)
	if err != nil {
		response.BadRequest(w, "Invalid action index")
		return
	}

	var req dto.ToggleActionRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	triage, err := h.intakeUsecase.ToggleAction(r.Context(), id, index, &req)
	if err != nil {
		writeIntakeError(w, err, "Failed to update action")
		return
	}

	response.Success(w, http.StatusOK, "Action updated successfully", triage)
}

func (h *TriageHandler) AcceptAll(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	triage, err := h.intakeUsecase.AcceptAllActions(r.Context(), id)
	if err != nil {
		writeIntakeError(w, err, "Failed to accept actions")
		return
	}

	response.Success(w, http.StatusOK, "All actions accepted", triage)
}

func (h *TriageHandler) SendToEPR(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	receipt, err := h.intakeUsecase.SendToEPR(r.Context(), id)
	if err != nil {
		writeIntakeError(w, err, "Failed to send to EPR")
		return
	}

	response.Success(w, http.StatusOK, "Accepted actions sent to EPR", receipt)
}

func (h *TriageHandler) Handoff(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	doc, filename, err := h.intakeUsecase.HandoffDocument(r.Context(), id)
	if err != nil {
		writeIntakeError(w, err, "Failed to render handoff document")
		return
	}

	response.PDF(w, filename, doc)
}
