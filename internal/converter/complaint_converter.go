package converter

import (
	"ae-triage-intake/internal/delivery/dto"
	"ae-triage-intake/internal/domain/entity"
)

// ComplaintToResponse converts a catalog entry to its DTO
func ComplaintToResponse(c entity.ComplaintDefinition) dto.ComplaintResponse {
	return dto.ComplaintResponse{
		Code:     c.Code,
		Label:    c.Label,
		Category: string(c.Category),
		Hint:     c.Hint,
		Common:   c.Common,
	}
}

func ComplaintsToResponses(complaints []entity.ComplaintDefinition) []dto.ComplaintResponse {
	responses := make([]dto.ComplaintResponse, len(complaints))
	for i, c := range complaints {
		responses[i] = ComplaintToResponse(c)
	}
	return responses
}
