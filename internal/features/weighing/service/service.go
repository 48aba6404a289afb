package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parcel-depot/internal/core/config"
	"parcel-depot/internal/core/logger"
	"parcel-depot/internal/core/metrics"
	parcels "parcel-depot/internal/features/parcels/domain"
	"parcel-depot/internal/features/parcels/ports"
	parcelservice "parcel-depot/internal/features/parcels/service"
	sorting "parcel-depot/internal/features/sorting/domain"
	"parcel-depot/internal/features/weighing/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WeighingService orchestrates weight reconciliation: it records the
// verification, advances the lifecycle, triggers auto-sort on conforming
// parcels and raises a supplement payment intent on overweight ones.
type WeighingService struct {
	parcels  ports.ParcelRepository
	intents  ports.PaymentIntentRepository
	checkout ports.CheckoutProvider
	policy   config.DepotConfig
}

// NewWeighingService creates a new WeighingService.
func NewWeighingService(parcelRepo ports.ParcelRepository, intentRepo ports.PaymentIntentRepository, checkout ports.CheckoutProvider, policy config.DepotConfig) *WeighingService {
	return &WeighingService{
		parcels:  parcelRepo,
		intents:  intentRepo,
		checkout: checkout,
		policy:   policy,
	}
}

// WeighInput describes one weighing event.
type WeighInput struct {
	MeasuredWeightKg float64
	Operator         string
	Notes            string
	Photos           []parcels.PhotoRef
}

// WeighOutcome is the full result of one weighing event.
type WeighOutcome struct {
	Parcel *parcels.Parcel `json:"parcel"`
	// Classification is OK, SUPPLEMENT or REFUND.
	Classification domain.Classification `json:"classification"`
	// SupplementAmount is owed by the sender when overweight.
	SupplementAmount float64 `json:"supplementAmount,omitempty"`
	// RefundAmount is owed to the sender when underweight.
	RefundAmount float64 `json:"refundAmount,omitempty"`
	// CheckoutURL is the payment link, when the collaborator issued one.
	CheckoutURL string `json:"checkoutUrl,omitempty"`
}

// WeighParcel records a weighing for the parcel. Re-weighing replaces the
// previous verification and any pending supplement intent.
func (s *WeighingService) WeighParcel(ctx context.Context, parcelID string, in WeighInput) (*WeighOutcome, error) {
	if in.Operator == "" {
		return nil, fmt.Errorf("%w: operator is required", parcels.ErrValidation)
	}

	parcel, err := s.parcels.Get(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	from := parcel.Phase

	result := domain.Reconcile(parcel.DeclaredWeightKg, in.MeasuredWeightKg, s.policy.WeightToleranceKg)
	status := result.VerificationStatus()

	verification := &parcels.WeightVerification{
		DifferenceKg: result.DifferenceKg,
		Percentage:   result.Percentage,
		Status:       status,
		ToleranceKg:  result.ToleranceKg,
		AutoApproved: status == parcels.VerificationOK,
		Operator:     in.Operator,
		Timestamp:    time.Now().UTC(),
		Notes:        in.Notes,
		Photos:       in.Photos,
	}

	if err := parcel.ApplyWeighing(in.MeasuredWeightKg, verification); err != nil {
		return nil, err
	}

	outcome := &WeighOutcome{
		Parcel:         parcel,
		Classification: result.Classification,
	}

	switch result.Classification {
	case domain.ClassificationSupplement:
		outcome.SupplementAmount = result.SupplementAmount(s.policy.SupplementRatePerKg)
		url, err := s.raiseSupplement(ctx, parcel, outcome.SupplementAmount, result.DifferenceKg)
		if err != nil {
			return nil, err
		}
		outcome.CheckoutURL = url
	case domain.ClassificationRefund:
		outcome.RefundAmount = result.RefundAmount(s.baseCostPerKg(parcel))
		if err := s.clearPendingSupplement(ctx, parcel); err != nil {
			return nil, err
		}
	default:
		if err := s.clearPendingSupplement(ctx, parcel); err != nil {
			return nil, err
		}
	}

	// A conforming verification flows straight into sorting, no operator
	// action in between.
	if parcel.Phase == parcels.PhaseVerified {
		decision := sorting.Decide(parcel)
		if err := parcel.AssignZone(decision.Zone, decision.Reason, sorting.AutoSortActor, false); err != nil {
			return nil, err
		}
		metrics.SortedParcelsTotal.WithLabelValues(string(decision.Zone)).Inc()
	}

	if err := parcelservice.SaveWithPhaseGuard(ctx, s.parcels, parcel, from); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("weigh").Inc()
		return nil, err
	}

	metrics.WeighingsTotal.WithLabelValues(string(status)).Inc()
	logger.Get().Info("Parcel weighed",
		zap.String("parcel_id", parcel.ID),
		zap.String("classification", string(result.Classification)),
		zap.Float64("difference_kg", result.DifferenceKg),
	)
	return outcome, nil
}

// baseCostPerKg is the parcel's original per-kg cost basis used for refunds.
func (s *WeighingService) baseCostPerKg(parcel *parcels.Parcel) float64 {
	if parcel.DeclaredWeightKg <= 0 {
		return 0
	}
	return parcel.BaseCost / parcel.DeclaredWeightKg
}

// clearPendingSupplement removes a supplement intent that a corrective
// re-weigh invalidated. The link on the parcel is cleared with it.
func (s *WeighingService) clearPendingSupplement(ctx context.Context, parcel *parcels.Parcel) error {
	if parcel.PendingPaymentID == "" {
		return nil
	}
	if err := s.intents.Delete(ctx, parcel.PendingPaymentID); err != nil && !errors.Is(err, parcels.ErrIntentNotFound) {
		return fmt.Errorf("failed to clear pending intent: %w", err)
	}
	parcel.PendingPaymentID = ""
	return nil
}

// raiseSupplement creates exactly one pending intent per supplement event.
// A re-weigh replaces the prior pending intent instead of stacking a second.
func (s *WeighingService) raiseSupplement(ctx context.Context, parcel *parcels.Parcel, amount, overageKg float64) (string, error) {
	if parcel.PendingPaymentID != "" {
		if err := s.intents.Delete(ctx, parcel.PendingPaymentID); err != nil && !errors.Is(err, parcels.ErrIntentNotFound) {
			return "", fmt.Errorf("failed to replace pending intent: %w", err)
		}
	}

	now := time.Now().UTC()
	intent := &parcels.PaymentIntent{
		ID:           uuid.NewString(),
		ParcelID:     parcel.ID,
		TrackingCode: parcel.TrackingCode,
		Amount:       amount,
		Currency:     s.policy.Currency,
		Reason:       fmt.Sprintf("weight supplement: +%.2f kg over declared", overageKg),
		Status:       parcels.IntentPending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Duration(s.policy.PaymentIntentTTLHours) * time.Hour),
	}

	if err := s.intents.Save(ctx, intent); err != nil {
		return "", fmt.Errorf("failed to save payment intent: %w", err)
	}

	parcel.PendingPaymentID = intent.ID
	parcel.AppendStep(parcels.StepSupplementRequested, parcel.WeightVerification.Operator, map[string]interface{}{
		"intentId": intent.ID,
		"amount":   intent.Amount,
		"currency": intent.Currency,
	})
	metrics.PaymentIntentsCreatedTotal.Inc()

	// Checkout issuance is the external collaborator's job; a failure there
	// must not lose the locally recorded intent.
	url, err := s.checkout.CreateCheckoutLink(ctx, intent, parcel)
	if err != nil {
		logger.Get().Warn("checkout link creation failed",
			zap.String("intent_id", intent.ID),
			zap.Error(err),
		)
		return "", nil
	}
	return url, nil
}
