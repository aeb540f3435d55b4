package consultation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	require.True(t, StatusRequested.CanTransitionTo(StatusInProgress))
	require.True(t, StatusInProgress.CanTransitionTo(StatusCompleted))
	require.False(t, StatusRequested.CanTransitionTo(StatusCompleted))
	require.False(t, StatusInProgress.CanTransitionTo(StatusRequested))
	require.False(t, StatusCompleted.CanTransitionTo(StatusInProgress))
	require.False(t, Status("ARCHIVED").CanTransitionTo(StatusRequested))
}

func TestPrescriptionTransitions(t *testing.T) {
	require.True(t, RxPending.CanTransitionTo(RxApplied))
	require.True(t, RxPending.CanTransitionTo(RxNeedsCorrection))
	require.True(t, RxNeedsCorrection.CanTransitionTo(RxApplied))
	require.False(t, RxNeedsCorrection.CanTransitionTo(RxPending))
	require.False(t, RxApplied.CanTransitionTo(RxNeedsCorrection))
	require.False(t, RxApplied.CanTransitionTo(RxPending))
}

func TestEnumsValidate(t *testing.T) {
	require.True(t, TypeOnsiteVisit.IsValid())
	require.False(t, ConsultType("EMAIL").IsValid())
	require.True(t, CategoryIrrigation.IsValid())
	require.False(t, ActionCategory("SEEDS").IsValid())
	require.True(t, RxNeedsCorrection.IsValid())
	require.False(t, Status("").IsValid())
	require.True(t, StatusCompleted.HasDoctor())
	require.False(t, StatusRequested.HasDoctor())
}

func TestCloneDoesNotAlias(t *testing.T) {
	doctor := "doc-1"
	original := Consultation{
		DoctorID:     &doctor,
		Prescription: &Prescription{ActionItems: []ActionItem{{ProductName: "Captan"}}},
	}
	cp := original.clone()
	*cp.DoctorID = "doc-2"
	cp.Prescription.ActionItems[0].ProductName = "Mancozeb"

	require.Equal(t, "doc-1", *original.DoctorID)
	require.Equal(t, "Captan", original.Prescription.ActionItems[0].ProductName)
}

func TestPrescriptionTotalCost(t *testing.T) {
	rx := Prescription{ActionItems: []ActionItem{{EstimatedCost: 450}, {EstimatedCost: 120.5}}}
	require.InDelta(t, 570.5, rx.TotalCost(), 1e-9)
}
