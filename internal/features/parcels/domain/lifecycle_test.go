package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParcel(phase Phase) *Parcel {
	return &Parcel{
		ID:               "p1",
		TrackingCode:     "NK-2024-001234",
		DeclaredWeightKg: 10,
		Destination:      "Kinshasa",
		Phase:            phase,
		CreatedAt:        time.Now().UTC(),
	}
}

func okVerification(operator string) *WeightVerification {
	return &WeightVerification{
		Status:       VerificationOK,
		ToleranceKg:  0.2,
		AutoApproved: true,
		Operator:     operator,
		Timestamp:    time.Now().UTC(),
	}
}

// TestTransition_NominalPath walks the nominal lifecycle order.
func TestTransition_NominalPath(t *testing.T) {
	p := newTestParcel(PhasePendingReception)

	for _, to := range []Phase{PhaseReceived, PhaseWeighed, PhaseVerified, PhaseSorted, PhaseGrouped, PhaseShipped, PhaseDelivered} {
		require.NoError(t, p.Transition(to, "op-1"), "transition to %s", to)
		assert.Equal(t, to, p.Phase)
	}
	assert.Equal(t, "op-1", p.LastUpdatedBy)
}

// TestTransition_Invalid verifies rejected moves preserve the original state.
func TestTransition_Invalid(t *testing.T) {
	cases := []struct {
		from Phase
		to   Phase
	}{
		{PhasePendingReception, PhaseWeighed},
		{PhasePendingReception, PhaseSorted},
		{PhaseReceived, PhaseVerified},
		{PhaseReceived, PhaseSorted},
		{PhaseDelivered, PhaseSpecialCase},
		{PhaseGrouped, PhaseDelivered},
	}

	for _, tc := range cases {
		p := newTestParcel(tc.from)
		err := p.Transition(tc.to, "op-1")
		assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", tc.from, tc.to)
		assert.Equal(t, tc.from, p.Phase, "phase must be preserved on rejection")
	}
}

// TestApplyWeighing_OK verifies a conforming weighing lands in verified.
func TestApplyWeighing_OK(t *testing.T) {
	p := newTestParcel(PhaseReceived)

	err := p.ApplyWeighing(10.1, &WeightVerification{
		DifferenceKg: 0.1,
		Status:       VerificationOK,
		AutoApproved: true,
		Operator:     "op-1",
		Timestamp:    time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.Equal(t, PhaseVerified, p.Phase)
	require.NotNil(t, p.MeasuredWeightKg)
	assert.Equal(t, 10.1, *p.MeasuredWeightKg)
	require.NotNil(t, p.WeightVerification)

	kinds := stepKinds(p)
	assert.Equal(t, []StepKind{StepWeighed, StepWeightVerified}, kinds)
}

// TestApplyWeighing_Issue verifies a deviating weighing lands in weight_issue.
func TestApplyWeighing_Issue(t *testing.T) {
	p := newTestParcel(PhaseReceived)

	err := p.ApplyWeighing(10.5, &WeightVerification{
		DifferenceKg: 0.5,
		Status:       VerificationError,
		Operator:     "op-1",
		Timestamp:    time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.Equal(t, PhaseWeightIssue, p.Phase)
	assert.Equal(t, []StepKind{StepWeighed, StepWeightIssue}, stepKinds(p))
}

// TestApplyWeighing_Reweigh verifies that re-weighing replaces the
// verification wholesale and appends fresh steps.
func TestApplyWeighing_Reweigh(t *testing.T) {
	p := newTestParcel(PhaseReceived)

	first := &WeightVerification{
		DifferenceKg: 0.5,
		Status:       VerificationError,
		Operator:     "op-1",
		Timestamp:    time.Now().UTC(),
		Photos:       []PhotoRef{{URL: "http://depot/photo-1.jpg", Operator: "op-1"}},
	}
	require.NoError(t, p.ApplyWeighing(10.5, first))
	require.Equal(t, PhaseWeightIssue, p.Phase)

	second := &WeightVerification{
		DifferenceKg: 0.1,
		Status:       VerificationOK,
		AutoApproved: true,
		Operator:     "op-2",
		Timestamp:    time.Now().UTC(),
	}
	require.NoError(t, p.ApplyWeighing(10.1, second))

	assert.Equal(t, PhaseVerified, p.Phase)
	assert.Same(t, second, p.WeightVerification)
	assert.Empty(t, p.WeightVerification.Photos, "old photos must not be merged in")
	assert.Equal(t, 10.1, *p.MeasuredWeightKg)

	// four steps: the first weighing pair stays untouched on the trail
	assert.Equal(t, []StepKind{StepWeighed, StepWeightIssue, StepWeighed, StepWeightVerified}, stepKinds(p))
}

// TestApplyWeighing_FromSpecialCase verifies the special case blocks weighing.
func TestApplyWeighing_FromSpecialCase(t *testing.T) {
	p := newTestParcel(PhaseReceived)
	require.NoError(t, p.DeclareSpecialCase(CaseFragile, "", "op-1"))

	err := p.ApplyWeighing(10.1, okVerification("op-1"))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// TestApplyWeighing_RequiresOperator verifies validation happens before mutation.
func TestApplyWeighing_RequiresOperator(t *testing.T) {
	p := newTestParcel(PhaseReceived)
	err := p.ApplyWeighing(10.1, &WeightVerification{Status: VerificationOK})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, p.MeasuredWeightKg)
	assert.Equal(t, PhaseReceived, p.Phase)
}

// TestDeclareSpecialCase verifies tags, default reasons and phase movement.
func TestDeclareSpecialCase(t *testing.T) {
	t.Run("DefaultReason", func(t *testing.T) {
		p := newTestParcel(PhaseReceived)
		require.NoError(t, p.DeclareSpecialCase(CaseDamaged, "", "op-1"))

		assert.Equal(t, PhaseSpecialCase, p.Phase)
		require.NotNil(t, p.SpecialCase)
		assert.Equal(t, CaseDamaged.DefaultReason(), p.SpecialCase.Reason)
		assert.Equal(t, "op-1", p.SpecialCase.DeclaredBy)
	})

	t.Run("OperatorReasonWins", func(t *testing.T) {
		p := newTestParcel(PhaseWeighed)
		require.NoError(t, p.DeclareSpecialCase(CaseCustomsIssue, "missing invoice", "op-1"))
		assert.Equal(t, "missing invoice", p.SpecialCase.Reason)
	})

	t.Run("UnknownTag", func(t *testing.T) {
		p := newTestParcel(PhaseReceived)
		err := p.DeclareSpecialCase("melted", "", "op-1")
		assert.ErrorIs(t, err, ErrValidation)
		assert.Nil(t, p.SpecialCase)
	})

	t.Run("AfterDelivery", func(t *testing.T) {
		p := newTestParcel(PhaseDelivered)
		err := p.DeclareSpecialCase(CaseLost, "", "op-1")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("AllNineTags", func(t *testing.T) {
		tags := []SpecialCaseKind{
			CaseFragile, CaseDangerous, CaseOversized, CaseDamaged,
			CasePaymentPending, CaseCustomsIssue, CaseHighValue, CaseLost, CaseReturned,
		}
		for _, tag := range tags {
			assert.True(t, tag.Valid(), string(tag))
			assert.NotEmpty(t, tag.DefaultReason(), string(tag))
		}
	})
}

// TestAssignZone verifies the sorting guards.
func TestAssignZone(t *testing.T) {
	t.Run("FromVerified", func(t *testing.T) {
		p := newTestParcel(PhaseVerified)
		require.NoError(t, p.AssignZone(ZoneA, "destination kinshasa", "auto-sort-system", false))
		assert.Equal(t, PhaseSorted, p.Phase)
		assert.Equal(t, ZoneA, p.SortingZone)
		assert.Equal(t, "destination kinshasa", p.SortingReason)
	})

	t.Run("WeightIssueRequiresForce", func(t *testing.T) {
		p := newTestParcel(PhaseWeightIssue)
		err := p.AssignZone(ZoneA, "destination kinshasa", "op-1", false)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, PhaseWeightIssue, p.Phase)
		assert.Empty(t, p.SortingZone)

		require.NoError(t, p.AssignZone(ZoneA, "destination kinshasa", "op-1", true))
		assert.Equal(t, PhaseSorted, p.Phase)
	})

	t.Run("ForcedResort", func(t *testing.T) {
		p := newTestParcel(PhaseVerified)
		require.NoError(t, p.AssignZone(ZoneA, "destination kinshasa", "auto-sort-system", false))

		err := p.AssignZone(ZoneD, "unknown destination", "batch-sort-system", false)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		require.NoError(t, p.AssignZone(ZoneD, "unknown destination", "batch-sort-system", true))
		assert.Equal(t, ZoneD, p.SortingZone)
	})

	t.Run("FromReceived", func(t *testing.T) {
		p := newTestParcel(PhaseReceived)
		err := p.AssignZone(ZoneA, "destination kinshasa", "op-1", true)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

// TestMarkReceived verifies the arrival scan step.
func TestMarkReceived(t *testing.T) {
	p := newTestParcel(PhasePendingReception)
	require.NoError(t, p.MarkReceived("op-1", "kinshasa-depot", "scanner-7", "http://depot/arrival.jpg"))

	assert.Equal(t, PhaseReceived, p.Phase)
	require.Len(t, p.ProcessingHistory, 1)
	step := p.ProcessingHistory[0]
	assert.Equal(t, StepArrivalScan, step.Step)
	assert.Equal(t, "op-1", step.Operator)
	assert.Equal(t, "kinshasa-depot", step.Data["location"])
	assert.Equal(t, "scanner-7", step.Data["scannerId"])

	err := newTestParcel(PhaseSorted).MarkReceived("op-1", "", "", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// TestValidate verifies the structural invariants.
func TestValidate(t *testing.T) {
	t.Run("VerificationWithoutWeight", func(t *testing.T) {
		p := newTestParcel(PhaseReceived)
		p.WeightVerification = okVerification("op-1")
		assert.ErrorIs(t, p.Validate(), ErrValidation)
	})

	t.Run("ZoneBeforeSorted", func(t *testing.T) {
		p := newTestParcel(PhaseReceived)
		p.SortingZone = ZoneA
		assert.ErrorIs(t, p.Validate(), ErrValidation)
	})

	t.Run("SortedWithoutZone", func(t *testing.T) {
		p := newTestParcel(PhaseSorted)
		assert.ErrorIs(t, p.Validate(), ErrValidation)
	})

	t.Run("SpecialCaseAfterSortingKeepsZone", func(t *testing.T) {
		p := newTestParcel(PhaseVerified)
		require.NoError(t, p.AssignZone(ZoneA, "destination kinshasa", "op-1", false))
		require.NoError(t, p.DeclareSpecialCase(CaseDamaged, "", "op-1"))
		assert.NoError(t, p.Validate())
	})

	t.Run("Nominal", func(t *testing.T) {
		assert.NoError(t, newTestParcel(PhaseReceived).Validate())
	})
}

func stepKinds(p *Parcel) []StepKind {
	kinds := make([]StepKind, 0, len(p.ProcessingHistory))
	for _, s := range p.ProcessingHistory {
		kinds = append(kinds, s.Step)
	}
	return kinds
}
