package usecase

import (
	"errors"
	"strings"

	"ae-triage-intake/internal/converter"
	"ae-triage-intake/internal/delivery/dto"
	"ae-triage-intake/internal/domain/entity"
	"ae-triage-intake/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidCategory  = errors.New("unknown complaint category")
	ErrComplaintUnknown = errors.New("unknown complaint code")
)

type ComplaintUsecase interface {
	Browse(category, query string) (*dto.ComplaintListResponse, error)
	Categories() *dto.CategoryListResponse
	GetByCode(code string) (*dto.ComplaintResponse, error)
}

type complaintUsecase struct {
	log           *logrus.Logger
	complaintRepo repository.ComplaintRepository
}

func NewComplaintUsecase(log *logrus.Logger, complaintRepo repository.ComplaintRepository) ComplaintUsecase {
	return &complaintUsecase{
		log:           log,
		complaintRepo: complaintRepo,
	}
}

// Browse returns the commonly seen complaints when nothing narrows the
// list, otherwise the category and label filter.
func (u *complaintUsecase) Browse(category, query string) (*dto.ComplaintListResponse, error) {
	cat := entity.ComplaintCategory(strings.TrimSpace(category))
	if cat == "" {
		cat = entity.CategoryAll
	}
	if !cat.IsValid() {
		return nil, ErrInvalidCategory
	}

	query = strings.TrimSpace(query)
	commonOnly := query == "" && cat == entity.CategoryAll

	var complaints []entity.ComplaintDefinition
	if commonOnly {
		complaints = u.complaintRepo.FindCommon()
	} else {
		complaints = u.complaintRepo.Filter(cat, query)
	}

	return &dto.ComplaintListResponse{
		Category:   string(cat),
		Query:      query,
		CommonOnly: commonOnly,
		Complaints: converter.ComplaintsToResponses(complaints),
		Total:      len(complaints),
	}, nil
}

func (u *complaintUsecase) Categories() *dto.CategoryListResponse {
	cats := entity.ComplaintCategories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return &dto.CategoryListResponse{Categories: names}
}

func (u *complaintUsecase) GetByCode(code string) (*dto.ComplaintResponse, error) {
	def, err := u.complaintRepo.FindByCode(code)
	if err != nil {
		return nil, ErrComplaintUnknown
	}
	resp := converter.ComplaintToResponse(*def)
	return &resp, nil
}
