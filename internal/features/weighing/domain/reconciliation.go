package domain

import (
	"math"

	parcels "parcel-depot/internal/features/parcels/domain"
)

// Classification is the financial outcome of comparing declared and measured weight.
type Classification string

const (
	// ClassificationOK means the delta is within tolerance; no monetary action.
	ClassificationOK Classification = "OK"
	// ClassificationSupplement means the parcel is heavier than declared; the
	// sender owes a supplement.
	ClassificationSupplement Classification = "SUPPLEMENT"
	// ClassificationRefund means the parcel is lighter than declared; the
	// sender is owed a refund.
	ClassificationRefund Classification = "REFUND"
)

// Result is the outcome of one weight reconciliation.
type Result struct {
	Classification Classification
	// DifferenceKg is measured minus declared, signed.
	DifferenceKg float64
	// Percentage is the absolute deviation relative to the declared weight.
	Percentage float64
	// ToleranceKg is the tolerance the result was evaluated against.
	ToleranceKg float64
}

// Reconcile compares declared vs measured weight against the tolerance.
// Degenerate inputs (either weight <= 0) yield a neutral OK result with zero
// difference; legacy records carry zero declared weights and must still load.
func Reconcile(declaredKg, measuredKg, toleranceKg float64) Result {
	if declaredKg <= 0 || measuredKg <= 0 {
		return Result{Classification: ClassificationOK, ToleranceKg: toleranceKg}
	}

	diff := measuredKg - declaredKg
	result := Result{
		DifferenceKg: diff,
		Percentage:   math.Abs(diff) / declaredKg * 100,
		ToleranceKg:  toleranceKg,
	}

	switch {
	case math.Abs(diff) <= toleranceKg:
		result.Classification = ClassificationOK
	case diff > toleranceKg:
		result.Classification = ClassificationSupplement
	default:
		result.Classification = ClassificationRefund
	}
	return result
}

// SupplementAmount converts the weight overage beyond tolerance into a
// monetary amount; the tolerated slice is never billed. Zero for anything but
// a supplement.
func (r Result) SupplementAmount(ratePerKg float64) float64 {
	if r.Classification != ClassificationSupplement {
		return 0
	}
	return (r.DifferenceKg - r.ToleranceKg) * ratePerKg
}

// RefundAmount converts the weight shortfall into a monetary amount based on
// the parcel's original per-kg cost. Zero for anything but a refund.
func (r Result) RefundAmount(baseCostPerKg float64) float64 {
	if r.Classification != ClassificationRefund {
		return 0
	}
	return math.Abs(r.DifferenceKg) * baseCostPerKg
}

// VerificationStatus maps the classification onto the verification status
// recorded on the parcel: overweight blocks sorting behind a payment (ERROR),
// underweight flags a refund review (WARNING).
func (r Result) VerificationStatus() parcels.VerificationStatus {
	switch r.Classification {
	case ClassificationSupplement:
		return parcels.VerificationError
	case ClassificationRefund:
		return parcels.VerificationWarning
	default:
		return parcels.VerificationOK
	}
}
