package consultrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/orchardcare/orchard-advisor/internal/domain/consultation"
)

// MemoryRepository is an in-memory consultation.Store used for tests/dev.
type MemoryRepository struct {
	mu            sync.RWMutex
	consultations map[string]consultation.Consultation
	prescriptions map[string]consultation.Prescription
	byConsult     map[string]string
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		consultations: make(map[string]consultation.Consultation),
		prescriptions: make(map[string]consultation.Prescription),
		byConsult:     make(map[string]string),
	}
}

// FetchConsultations implements consultation.Store. Newest first.
func (r *MemoryRepository) FetchConsultations(_ context.Context, fieldID, userID string) ([]consultation.Consultation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]consultation.Consultation, 0)
	for _, c := range r.consultations {
		if c.FieldID != fieldID || c.UserID != userID {
			continue
		}
		out = append(out, r.hydrate(c))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// FindConsultation implements consultation.Store.
func (r *MemoryRepository) FindConsultation(_ context.Context, id string) (consultation.Consultation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.consultations[id]
	if !ok {
		return consultation.Consultation{}, consultation.ErrNotFound
	}
	return r.hydrate(c), nil
}

// FindPrescription implements consultation.Store.
func (r *MemoryRepository) FindPrescription(_ context.Context, rxID string) (consultation.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rx, ok := r.prescriptions[rxID]
	if !ok {
		return consultation.Prescription{}, consultation.ErrNotFound
	}
	return copyPrescription(rx), nil
}

// CreateConsultation implements consultation.Store.
func (r *MemoryRepository) CreateConsultation(_ context.Context, c consultation.Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.consultations[c.ID]; exists {
		return consultation.ErrConflict
	}
	c.Prescription = nil
	r.consultations[c.ID] = c
	return nil
}

// UpdateConsultationStatus implements consultation.Store.
func (r *MemoryRepository) UpdateConsultationStatus(_ context.Context, id string, status consultation.Status, doctorID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.consultations[id]
	if !ok {
		return consultation.ErrNotFound
	}
	if !c.Status.CanTransitionTo(status) {
		return consultation.ErrInvalidTransition
	}
	c.Status = status
	if doctorID != nil {
		d := *doctorID
		c.DoctorID = &d
	}
	r.consultations[id] = c
	return nil
}

// IssuePrescription implements consultation.Store.
func (r *MemoryRepository) IssuePrescription(_ context.Context, rx consultation.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.consultations[rx.ConsultationID]
	if !ok {
		return consultation.ErrNotFound
	}
	if c.Status == consultation.StatusRequested {
		return consultation.ErrInvalidTransition
	}
	if _, exists := r.byConsult[rx.ConsultationID]; exists {
		return consultation.ErrConflict
	}
	r.prescriptions[rx.ID] = copyPrescription(rx)
	r.byConsult[rx.ConsultationID] = rx.ID
	return nil
}

// UpdatePrescriptionStatus implements consultation.Store.
func (r *MemoryRepository) UpdatePrescriptionStatus(_ context.Context, rxID string, status consultation.PrescriptionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rx, ok := r.prescriptions[rxID]
	if !ok {
		return consultation.ErrNotFound
	}
	if !rx.Status.CanTransitionTo(status) {
		return consultation.ErrInvalidTransition
	}
	rx.Status = status
	r.prescriptions[rxID] = rx
	return nil
}

func (r *MemoryRepository) hydrate(c consultation.Consultation) consultation.Consultation {
	if c.DoctorID != nil {
		d := *c.DoctorID
		c.DoctorID = &d
	}
	c.Prescription = nil
	if rxID, ok := r.byConsult[c.ID]; ok {
		rx := copyPrescription(r.prescriptions[rxID])
		c.Prescription = &rx
	}
	return c
}

func copyPrescription(rx consultation.Prescription) consultation.Prescription {
	items := make([]consultation.ActionItem, len(rx.ActionItems))
	copy(items, rx.ActionItems)
	sort.SliceStable(items, func(i, j int) bool { return items[i].SortOrder < items[j].SortOrder })
	rx.ActionItems = items
	return rx
}

var _ consultation.Store = (*MemoryRepository)(nil)
