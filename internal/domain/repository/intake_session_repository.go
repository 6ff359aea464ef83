package repository

import (
	"context"
	"errors"

	"ae-triage-intake/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("intake session not found")
	ErrSessionExists   = errors.New("intake session already exists")
)

// IntakeSessionRepository holds live intake sessions. FindByID returns
// (nil, nil) for unknown or expired sessions; Update and Delete
// return ErrSessionNotFound for them.
type IntakeSessionRepository interface {
	Create(ctx context.Context, intake *entity.Intake) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Intake, error)
	Update(ctx context.Context, intake *entity.Intake) error
	Delete(ctx context.Context, id uuid.UUID) error
}
