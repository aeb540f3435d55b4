package consultation

import (
	"context"
	"errors"
)

// Store errors returned by adapters. The session maps them to application codes.
var (
	ErrNotFound          = errors.New("consultation: not found")
	ErrInvalidTransition = errors.New("consultation: invalid transition")
	ErrConflict          = errors.New("consultation: conflict")
)

// Store persists consultations, prescriptions and their action items.
// Status updates re-check the transition table so concurrent writers cannot
// skip a state.
type Store interface {
	FetchConsultations(ctx context.Context, fieldID, userID string) ([]Consultation, error)
	FindConsultation(ctx context.Context, id string) (Consultation, error)
	FindPrescription(ctx context.Context, rxID string) (Prescription, error)
	CreateConsultation(ctx context.Context, c Consultation) error
	UpdateConsultationStatus(ctx context.Context, id string, status Status, doctorID *string) error
	IssuePrescription(ctx context.Context, rx Prescription) error
	UpdatePrescriptionStatus(ctx context.Context, rxID string, status PrescriptionStatus) error
}

// Metrics receives lifecycle outcomes.
type Metrics interface {
	ObserveTransition(entity, to string)
	ObserveRejection(operation, code string)
}
