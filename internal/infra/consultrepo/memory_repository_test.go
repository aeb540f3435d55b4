package consultrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orchardcare/orchard-advisor/internal/domain/consultation"
)

func seed(t *testing.T, repo *MemoryRepository, id, field string, createdAt time.Time) {
	t.Helper()
	err := repo.CreateConsultation(context.Background(), consultation.Consultation{
		ID:        id,
		UserID:    "grower-1",
		FieldID:   field,
		Type:      consultation.TypeChat,
		Status:    consultation.StatusRequested,
		CreatedAt: createdAt,
	})
	require.NoError(t, err)
}

func TestMemoryRepositoryFetchScopesAndOrders(t *testing.T) {
	repo := NewMemoryRepository()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	seed(t, repo, "c-old", "field-1", base)
	seed(t, repo, "c-new", "field-1", base.Add(time.Hour))
	seed(t, repo, "c-other", "field-2", base.Add(2*time.Hour))

	got, err := repo.FetchConsultations(context.Background(), "field-1", "grower-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "c-new", got[0].ID)
	require.Equal(t, "c-old", got[1].ID)

	none, err := repo.FetchConsultations(context.Background(), "field-1", "someone-else")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestMemoryRepositoryRejectsDuplicateCreate(t *testing.T) {
	repo := NewMemoryRepository()
	seed(t, repo, "c-1", "field-1", time.Now())
	err := repo.CreateConsultation(context.Background(), consultation.Consultation{ID: "c-1"})
	require.ErrorIs(t, err, consultation.ErrConflict)
}

func TestMemoryRepositoryStatusTransitions(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	seed(t, repo, "c-1", "field-1", time.Now())

	require.ErrorIs(t, repo.UpdateConsultationStatus(ctx, "c-1", consultation.StatusCompleted, nil), consultation.ErrInvalidTransition)

	doctor := "doc-7"
	require.NoError(t, repo.UpdateConsultationStatus(ctx, "c-1", consultation.StatusInProgress, &doctor))
	doctor = "mutated"

	c, err := repo.FindConsultation(ctx, "c-1")
	require.NoError(t, err)
	require.Equal(t, consultation.StatusInProgress, c.Status)
	require.NotNil(t, c.DoctorID)
	require.Equal(t, "doc-7", *c.DoctorID)

	require.ErrorIs(t, repo.UpdateConsultationStatus(ctx, "missing", consultation.StatusInProgress, nil), consultation.ErrNotFound)
}

func TestMemoryRepositoryPrescriptionLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	seed(t, repo, "c-1", "field-1", time.Now())

	rx := consultation.Prescription{
		ID:             "rx-1",
		ConsultationID: "c-1",
		Status:         consultation.RxPending,
		ActionItems: []consultation.ActionItem{
			{ID: "a-2", Category: consultation.CategoryLabor, SortOrder: 1, EstimatedCost: 40},
			{ID: "a-1", Category: consultation.CategoryFungicide, SortOrder: 0, EstimatedCost: 120},
		},
	}
	require.ErrorIs(t, repo.IssuePrescription(ctx, rx), consultation.ErrInvalidTransition)

	doctor := "doc-7"
	require.NoError(t, repo.UpdateConsultationStatus(ctx, "c-1", consultation.StatusInProgress, &doctor))
	require.NoError(t, repo.IssuePrescription(ctx, rx))

	dup := rx
	dup.ID = "rx-2"
	require.ErrorIs(t, repo.IssuePrescription(ctx, dup), consultation.ErrConflict)

	c, err := repo.FindConsultation(ctx, "c-1")
	require.NoError(t, err)
	require.NotNil(t, c.Prescription)
	require.Equal(t, "a-1", c.Prescription.ActionItems[0].ID)
	require.InDelta(t, 160, c.Prescription.TotalCost(), 1e-9)

	require.NoError(t, repo.UpdatePrescriptionStatus(ctx, "rx-1", consultation.RxNeedsCorrection))
	require.NoError(t, repo.UpdatePrescriptionStatus(ctx, "rx-1", consultation.RxApplied))
	require.ErrorIs(t, repo.UpdatePrescriptionStatus(ctx, "rx-1", consultation.RxPending), consultation.ErrInvalidTransition)

	got, err := repo.FindPrescription(ctx, "rx-1")
	require.NoError(t, err)
	require.Equal(t, consultation.RxApplied, got.Status)

	_, err = repo.FindPrescription(ctx, "rx-404")
	require.ErrorIs(t, err, consultation.ErrNotFound)
}
