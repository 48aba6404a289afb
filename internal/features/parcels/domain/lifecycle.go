package domain

import (
	"fmt"
	"time"
)

// transitions is the authoritative lifecycle table. A move absent from the
// table is rejected, never coerced.
var transitions = map[Phase][]Phase{
	PhasePendingReception: {PhaseReceived, PhaseSpecialCase},
	PhaseReceived:         {PhaseWeighed, PhaseSpecialCase},
	PhaseWeighed:          {PhaseVerified, PhaseWeightIssue, PhaseWeighed, PhaseSpecialCase},
	PhaseVerified:         {PhaseSorted, PhaseWeighed, PhaseSpecialCase},
	PhaseWeightIssue:      {PhaseSorted, PhaseWeighed, PhaseSpecialCase},
	PhaseSpecialCase:      {PhaseSorted, PhaseSpecialCase},
	PhaseSorted:           {PhaseGrouped, PhaseSorted, PhaseSpecialCase},
	PhaseGrouped:          {PhaseShipped, PhaseSpecialCase},
	PhaseShipped:          {PhaseDelivered, PhaseSpecialCase},
	PhaseDelivered:        {},
}

// CanTransition reports whether the lifecycle permits moving to the given phase.
func (p *Parcel) CanTransition(to Phase) bool {
	for _, allowed := range transitions[p.Phase] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves the parcel to the given phase after checking the lifecycle
// table. The original phase is preserved on rejection.
func (p *Parcel) Transition(to Phase, operator string) error {
	if !p.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Phase, to)
	}
	p.Phase = to
	p.LastUpdatedBy = operator
	p.LastUpdatedAt = time.Now().UTC()
	return nil
}

// MarkReceived records the arrival scan at depot intake.
func (p *Parcel) MarkReceived(operator, location, scannerID, photoURL string) error {
	if operator == "" {
		return fmt.Errorf("%w: operator is required", ErrValidation)
	}
	if err := p.Transition(PhaseReceived, operator); err != nil {
		return err
	}
	data := map[string]interface{}{
		"location":  location,
		"scannerId": scannerID,
	}
	if photoURL != "" {
		data["photoUrl"] = photoURL
	}
	p.AppendStep(StepArrivalScan, operator, data)
	return nil
}

// ApplyWeighing records a weight verification and resolves the parcel into
// verified or weight_issue. Re-weighing replaces the previous verification
// entirely; the audit trail gains new steps instead of mutating old ones.
func (p *Parcel) ApplyWeighing(measuredKg float64, v *WeightVerification) error {
	if v == nil || v.Operator == "" {
		return fmt.Errorf("%w: weighing requires a verification with an operator", ErrValidation)
	}
	if err := p.Transition(PhaseWeighed, v.Operator); err != nil {
		return err
	}

	measured := measuredKg
	p.MeasuredWeightKg = &measured
	p.WeightVerification = v

	p.AppendStep(StepWeighed, v.Operator, map[string]interface{}{
		"measuredWeightKg": measuredKg,
		"differenceKg":     v.DifferenceKg,
		"status":           string(v.Status),
	})

	if v.Status == VerificationOK {
		if err := p.Transition(PhaseVerified, v.Operator); err != nil {
			return err
		}
		p.AppendStep(StepWeightVerified, v.Operator, nil)
		return nil
	}

	if err := p.Transition(PhaseWeightIssue, v.Operator); err != nil {
		return err
	}
	p.AppendStep(StepWeightIssue, v.Operator, map[string]interface{}{
		"status": string(v.Status),
	})
	return nil
}

// DeclareSpecialCase pulls the parcel from the normal path. Allowed from any
// phase before delivery; the case stays until resolved externally.
func (p *Parcel) DeclareSpecialCase(kind SpecialCaseKind, reason, operator string) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown special case %q", ErrValidation, kind)
	}
	if operator == "" {
		return fmt.Errorf("%w: operator is required", ErrValidation)
	}
	if reason == "" {
		reason = kind.DefaultReason()
	}
	if err := p.Transition(PhaseSpecialCase, operator); err != nil {
		return err
	}
	p.SpecialCase = &SpecialCase{
		Type:       kind,
		Reason:     reason,
		DeclaredBy: operator,
		DeclaredAt: time.Now().UTC(),
	}
	p.AppendStep(StepSpecialCaseDeclared, operator, map[string]interface{}{
		"caseType": string(kind),
		"reason":   reason,
	})
	return nil
}

// AssignZone routes the parcel to a sorting zone. Without force the parcel
// must be in verified; force also admits weight_issue, special_case and an
// explicit re-sort of an already sorted parcel.
func (p *Parcel) AssignZone(zone Zone, reason, actor string, forced bool) error {
	switch p.Phase {
	case PhaseVerified:
	case PhaseWeightIssue, PhaseSpecialCase, PhaseSorted:
		if !forced {
			return fmt.Errorf("%w: sorting from %s requires force", ErrInvalidTransition, p.Phase)
		}
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Phase, PhaseSorted)
	}

	if err := p.Transition(PhaseSorted, actor); err != nil {
		return err
	}
	p.SortingZone = zone
	p.SortingReason = reason
	p.AppendStep(StepSorted, actor, map[string]interface{}{
		"zone":   string(zone),
		"reason": reason,
		"forced": forced,
	})
	return nil
}
