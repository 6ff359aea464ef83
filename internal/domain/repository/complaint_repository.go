package repository

import (
	"ae-triage-intake/internal/domain/entity"
)

type ComplaintRepository interface {
	FindAll() []entity.ComplaintDefinition
	FindByCode(code string) (*entity.ComplaintDefinition, error)
	FindCommon() []entity.ComplaintDefinition
	Filter(category entity.ComplaintCategory, query string) []entity.ComplaintDefinition
}
