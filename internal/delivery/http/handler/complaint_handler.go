package handler

import (
	"net/http"

	"ae-triage-intake/internal/usecase"
	"ae-triage-intake/pkg/response"

	"github.com/gorilla/mux"
)

type ComplaintHandler struct {
	complaintUsecase usecase.ComplaintUsecase
}

func NewComplaintHandler(complaintUsecase usecase.ComplaintUsecase) *ComplaintHandler {
	return &ComplaintHandler{
		complaintUsecase: complaintUsecase,
	}
}

func (h *ComplaintHandler) Browse(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	complaints, err := h.complaintUsecase.Browse(query.Get("category"), query.Get("q"))
	if err != nil {
		switch err {
		case usecase.ErrInvalidCategory:
			response.BadRequest(w, "Unknown complaint category")
		default:
			response.InternalServerError(w, "Failed to browse complaints")
		}
		return
	}

	response.Success(w, http.StatusOK, "Complaints retrieved successfully", complaints)
}

func (h *ComplaintHandler) Categories(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Categories retrieved successfully", h.complaintUsecase.Categories())
}

func (h *ComplaintHandler) GetComplaint(w http.ResponseWriter, r *http.Request) {
	complaint, err := h.complaintUsecase.GetByCode(mux.Vars(r)["code"])
	if err != nil {
		switch err {
		case usecase.ErrComplaintUnknown:
			response.NotFound(w, "Complaint not found")
		default:
			response.InternalServerError(w, "Failed to get complaint")
		}
		return
	}

	response.Success(w, http.StatusOK, "Complaint retrieved successfully", complaint)
}
