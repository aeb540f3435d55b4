package consultation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/orchardcare/orchard-advisor/pkg/errors"
)

// RequestInput is what a grower submits to ask for a consultation.
type RequestInput struct {
	GrowerName        string      `json:"growerName"`
	GrowerPhone       string      `json:"growerPhone"`
	OrchardName       string      `json:"orchardName"`
	PreferredDoctorID string      `json:"doctorId"`
	Type              ConsultType `json:"type"`
	TargetDateTime    time.Time   `json:"targetDateTime"`
	Notes             string      `json:"notes"`
}

// ActionItemInput is one line of a prescription being issued.
type ActionItemInput struct {
	Category      ActionCategory `json:"category"`
	ProductName   string         `json:"productName"`
	Dosage        string         `json:"dosage"`
	EstimatedCost float64        `json:"estimatedCost"`
}

// IssueInput is the doctor's prescription for a consultation.
type IssueInput struct {
	ConsultationID string            `json:"-"`
	DoctorID       string            `json:"doctorId"`
	DoctorName     string            `json:"doctorName"`
	HospitalName   string            `json:"hospitalName"`
	IssueDiagnosed string            `json:"issueDiagnosed"`
	EppoCode       string            `json:"eppoCode"`
	Recommendation string            `json:"recommendation"`
	FollowUpDate   string            `json:"followUpDate"`
	ActionItems    []ActionItemInput `json:"actionItems"`
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	FieldID        string         `json:"fieldId"`
	UserID         string         `json:"userId"`
	Consultations  []Consultation `json:"consultations"`
	Prescriptions  []Prescription `json:"prescriptions"`
	PendingRxCount int            `json:"pendingRxCount"`
	Loading        bool           `json:"loading"`
	Mutating       bool           `json:"mutating"`
	Error          string         `json:"error,omitempty"`
}

// Session tracks one grower's consultations for one field. At most one
// mutation runs at a time; an overlapping call fails with mutation_in_flight.
type Session struct {
	fieldID string
	userID  string
	store   Store
	metrics Metrics
	logger  *slog.Logger
	now     func() time.Time

	mu            sync.Mutex
	consultations []Consultation
	loading       bool
	mutating      bool
	lastErr       string
	issued        uint64
	applied       uint64
}

// NewSession builds a session. Callers normally obtain sessions from a Manager.
func NewSession(fieldID, userID string, store Store, metrics Metrics, logger *slog.Logger) *Session {
	return &Session{
		fieldID: fieldID,
		userID:  userID,
		store:   store,
		metrics: metrics,
		logger:  logger.With("component", "consultation.session", "field_id", fieldID),
		now:     time.Now,
	}
}

// Reload re-reads the consultation list. When reloads overlap, the result of
// the most recently started one wins regardless of completion order.
func (s *Session) Reload(ctx context.Context) error {
	if s.fieldID == "" || s.userID == "" {
		return nil
	}
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()

	rows, err := s.store.FetchConsultations(ctx, s.fieldID, s.userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.applied {
		s.logger.Debug("stale reload discarded", "seq", seq, "applied", s.applied)
		return nil
	}
	s.applied = seq
	if seq == s.issued {
		s.loading = false
	}
	if err != nil {
		wrapped := apperrors.Wrap(apperrors.CodeStore, "failed to load consultations", err)
		s.lastErr = apperrors.MessageOf(wrapped)
		return wrapped
	}
	next := make([]Consultation, 0, len(rows))
	for _, c := range rows {
		next = append(next, c.clone())
	}
	s.consultations = next
	return nil
}

func (s *Session) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading || s.mutating
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		FieldID:       s.fieldID,
		UserID:        s.userID,
		Consultations: make([]Consultation, 0, len(s.consultations)),
		Prescriptions: []Prescription{},
		Loading:       s.loading,
		Mutating:      s.mutating,
		Error:         s.lastErr,
	}
	for _, c := range s.consultations {
		cp := c.clone()
		snap.Consultations = append(snap.Consultations, cp)
		if cp.Prescription != nil {
			snap.Prescriptions = append(snap.Prescriptions, *cp.Prescription)
			if cp.Prescription.Status == RxPending {
				snap.PendingRxCount++
			}
		}
	}
	return snap
}

// RequestConsultation creates a REQUESTED consultation for the session's field.
func (s *Session) RequestConsultation(ctx context.Context, in RequestInput) (Consultation, error) {
	var created Consultation
	err := s.withMutation(ctx, "request_consultation", func(ctx context.Context) error {
		if !in.Type.IsValid() {
			return apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown consultation type %q", in.Type), nil)
		}
		if in.TargetDateTime.IsZero() {
			return apperrors.Wrap(apperrors.CodeInvalidInput, "targetDateTime is required", nil)
		}
		c := Consultation{
			ID:                uuid.NewString(),
			UserID:            s.userID,
			GrowerName:        strings.TrimSpace(in.GrowerName),
			GrowerPhone:       strings.TrimSpace(in.GrowerPhone),
			FieldID:           s.fieldID,
			OrchardName:       strings.TrimSpace(in.OrchardName),
			PreferredDoctorID: strings.TrimSpace(in.PreferredDoctorID),
			Type:              in.Type,
			Status:            StatusRequested,
			TargetDateTime:    in.TargetDateTime.UTC(),
			Notes:             in.Notes,
			CreatedAt:         s.now().UTC(),
		}
		if err := s.store.CreateConsultation(ctx, c); err != nil {
			return mapStoreError(err, "failed to create consultation")
		}
		s.observeTransition("consultation", string(StatusRequested))
		created = c
		return nil
	})
	return created, err
}

// AcceptRequest binds doctorID and moves a REQUESTED consultation to IN_PROGRESS.
func (s *Session) AcceptRequest(ctx context.Context, consultationID, doctorID string) error {
	return s.withMutation(ctx, "accept_request", func(ctx context.Context) error {
		doctorID = strings.TrimSpace(doctorID)
		if doctorID == "" {
			return apperrors.Wrap(apperrors.CodeInvalidInput, "doctorId is required", nil)
		}
		c, err := s.owned(ctx, consultationID)
		if err != nil {
			return err
		}
		if !c.Status.CanTransitionTo(StatusInProgress) {
			return invalidTransition("consultation", string(c.Status), string(StatusInProgress))
		}
		if err := s.store.UpdateConsultationStatus(ctx, c.ID, StatusInProgress, &doctorID); err != nil {
			return mapStoreError(err, "failed to accept consultation")
		}
		s.observeTransition("consultation", string(StatusInProgress))
		return nil
	})
}

// Complete closes an IN_PROGRESS consultation. Only the assigned doctor may complete it.
func (s *Session) Complete(ctx context.Context, consultationID, doctorID string) error {
	return s.withMutation(ctx, "complete", func(ctx context.Context) error {
		c, err := s.owned(ctx, consultationID)
		if err != nil {
			return err
		}
		if !c.Status.CanTransitionTo(StatusCompleted) {
			return invalidTransition("consultation", string(c.Status), string(StatusCompleted))
		}
		if err := requireAssigned(c, doctorID); err != nil {
			return err
		}
		if err := s.store.UpdateConsultationStatus(ctx, c.ID, StatusCompleted, c.DoctorID); err != nil {
			return mapStoreError(err, "failed to complete consultation")
		}
		s.observeTransition("consultation", string(StatusCompleted))
		return nil
	})
}

// IssueRx attaches a PENDING prescription to an IN_PROGRESS consultation.
func (s *Session) IssueRx(ctx context.Context, in IssueInput) (Prescription, error) {
	var issued Prescription
	err := s.withMutation(ctx, "issue_rx", func(ctx context.Context) error {
		c, err := s.owned(ctx, in.ConsultationID)
		if err != nil {
			return err
		}
		if c.Status != StatusInProgress {
			return apperrors.Wrap(apperrors.CodeInvalidTransition,
				fmt.Sprintf("prescription requires an IN_PROGRESS consultation, got %s", c.Status), nil)
		}
		if err := requireAssigned(c, in.DoctorID); err != nil {
			return err
		}
		if c.Prescription != nil {
			return apperrors.Wrap(apperrors.CodeConflict, "consultation already has a prescription", nil)
		}
		rx, err := s.buildPrescription(c.ID, in)
		if err != nil {
			return err
		}
		if err := s.store.IssuePrescription(ctx, rx); err != nil {
			return mapStoreError(err, "failed to issue prescription")
		}
		s.observeTransition("prescription", string(RxPending))
		issued = rx
		return nil
	})
	return issued, err
}

// ExecuteRx marks a prescription as applied in the field.
func (s *Session) ExecuteRx(ctx context.Context, rxID string) error {
	return s.withMutation(ctx, "execute_rx", func(ctx context.Context) error {
		return s.movePrescription(ctx, rxID, RxApplied)
	})
}

// FlagCorrection sends a PENDING prescription back to the doctor.
func (s *Session) FlagCorrection(ctx context.Context, rxID string) error {
	return s.withMutation(ctx, "flag_correction", func(ctx context.Context) error {
		return s.movePrescription(ctx, rxID, RxNeedsCorrection)
	})
}

func (s *Session) movePrescription(ctx context.Context, rxID string, target PrescriptionStatus) error {
	rx, err := s.store.FindPrescription(ctx, strings.TrimSpace(rxID))
	if err != nil {
		return mapStoreError(err, "failed to load prescription")
	}
	if _, err := s.owned(ctx, rx.ConsultationID); err != nil {
		return err
	}
	if !rx.Status.CanTransitionTo(target) {
		return invalidTransition("prescription", string(rx.Status), string(target))
	}
	if err := s.store.UpdatePrescriptionStatus(ctx, rx.ID, target); err != nil {
		return mapStoreError(err, "failed to update prescription")
	}
	s.observeTransition("prescription", string(target))
	return nil
}

func (s *Session) buildPrescription(consultationID string, in IssueInput) (Prescription, error) {
	if strings.TrimSpace(in.IssueDiagnosed) == "" {
		return Prescription{}, apperrors.Wrap(apperrors.CodeInvalidInput, "issueDiagnosed is required", nil)
	}
	items := make([]ActionItem, 0, len(in.ActionItems))
	for i, item := range in.ActionItems {
		if !item.Category.IsValid() {
			return Prescription{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("action item %d has unknown category %q", i+1, item.Category), nil)
		}
		if item.EstimatedCost < 0 {
			return Prescription{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("action item %d has a negative cost", i+1), nil)
		}
		items = append(items, ActionItem{
			ID:            uuid.NewString(),
			Category:      item.Category,
			ProductName:   strings.TrimSpace(item.ProductName),
			Dosage:        strings.TrimSpace(item.Dosage),
			EstimatedCost: item.EstimatedCost,
			SortOrder:     i,
		})
	}
	return Prescription{
		ID:             uuid.NewString(),
		ConsultationID: consultationID,
		DoctorName:     strings.TrimSpace(in.DoctorName),
		HospitalName:   strings.TrimSpace(in.HospitalName),
		IssueDiagnosed: strings.TrimSpace(in.IssueDiagnosed),
		EppoCode:       strings.ToUpper(strings.TrimSpace(in.EppoCode)),
		Recommendation: in.Recommendation,
		ActionItems:    items,
		Status:         RxPending,
		IssuedAt:       s.now().UTC(),
		FollowUpDate:   strings.TrimSpace(in.FollowUpDate),
	}, nil
}

// owned loads a consultation and checks it belongs to this session.
func (s *Session) owned(ctx context.Context, consultationID string) (Consultation, error) {
	c, err := s.store.FindConsultation(ctx, strings.TrimSpace(consultationID))
	if err != nil {
		return Consultation{}, mapStoreError(err, "failed to load consultation")
	}
	if c.FieldID != s.fieldID || c.UserID != s.userID {
		return Consultation{}, apperrors.Wrap(apperrors.CodeNotFound, "consultation not found", nil)
	}
	return c, nil
}

// withMutation runs fn under the in-flight guard and re-reads the list after a successful write.
func (s *Session) withMutation(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	if s.mutating {
		s.mu.Unlock()
		s.observeRejection(op, apperrors.CodeMutationInFlight)
		return apperrors.Wrap(apperrors.CodeMutationInFlight, "another change is still being saved", nil)
	}
	s.mutating = true
	s.lastErr = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.mutating = false
		s.mu.Unlock()
	}()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.lastErr = apperrors.MessageOf(err)
		s.mu.Unlock()
		s.observeRejection(op, apperrors.CodeOf(err))
		s.logger.Warn("consultation mutation failed", "operation", op, "error", err)
		return err
	}
	return s.Reload(ctx)
}

func (s *Session) observeTransition(entity, to string) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(entity, to)
	}
}

func (s *Session) observeRejection(op, code string) {
	if s.metrics != nil {
		s.metrics.ObserveRejection(op, code)
	}
}

func requireAssigned(c Consultation, doctorID string) error {
	doctorID = strings.TrimSpace(doctorID)
	if c.DoctorID == nil || doctorID == "" || *c.DoctorID != doctorID {
		return apperrors.Wrap(apperrors.CodeConflict, "only the assigned doctor may act on this consultation", nil)
	}
	return nil
}

func invalidTransition(entity, from, to string) error {
	return apperrors.Wrap(apperrors.CodeInvalidTransition, fmt.Sprintf("%s cannot move from %s to %s", entity, from, to), nil)
}

func mapStoreError(err error, message string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperrors.Wrap(apperrors.CodeNotFound, "not found", err)
	case errors.Is(err, ErrInvalidTransition):
		return apperrors.Wrap(apperrors.CodeInvalidTransition, "state changed, reload and retry", err)
	case errors.Is(err, ErrConflict):
		return apperrors.Wrap(apperrors.CodeConflict, "already exists", err)
	default:
		return apperrors.Wrap(apperrors.CodeStore, message, err)
	}
}
