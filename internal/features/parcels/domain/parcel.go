package domain

import (
	"strings"
	"time"
)

// Phase represents the lifecycle phase of a parcel.
type Phase string

const (
	// PhasePendingReception indicates the parcel is booked but not yet scanned at the depot.
	PhasePendingReception Phase = "pending_reception"
	// PhaseReceived indicates the parcel has been scanned at intake.
	PhaseReceived Phase = "received"
	// PhaseWeighed indicates a weight verification has just been recorded.
	PhaseWeighed Phase = "weighed"
	// PhaseVerified indicates the measured weight conforms to the declared weight.
	PhaseVerified Phase = "verified"
	// PhaseWeightIssue indicates the measured weight deviates beyond tolerance.
	PhaseWeightIssue Phase = "weight_issue"
	// PhaseSpecialCase indicates the parcel was pulled from the normal path.
	PhaseSpecialCase Phase = "special_case"
	// PhaseSorted indicates the parcel has been routed to a sorting zone.
	PhaseSorted Phase = "sorted"
	// PhaseGrouped indicates the parcel has been grouped into a dispatch batch.
	PhaseGrouped Phase = "grouped"
	// PhaseShipped indicates the parcel has left the depot.
	PhaseShipped Phase = "shipped"
	// PhaseDelivered indicates the parcel has reached its recipient.
	PhaseDelivered Phase = "delivered"
)

// Zone is a sorting bin/lane to which a parcel is physically routed.
type Zone string

const (
	ZoneA Zone = "A"
	ZoneB Zone = "B"
	ZoneC Zone = "C"
	ZoneD Zone = "D"
)

// VerificationStatus classifies the outcome of a weight verification.
type VerificationStatus string

const (
	// VerificationOK means the weight delta is within tolerance.
	VerificationOK VerificationStatus = "OK"
	// VerificationWarning means the parcel is lighter than declared beyond tolerance.
	VerificationWarning VerificationStatus = "WARNING"
	// VerificationError means the parcel is heavier than declared beyond tolerance.
	VerificationError VerificationStatus = "ERROR"
)

// PhotoRef is a reference to a photo captured during processing.
type PhotoRef struct {
	// URL points at the stored image.
	URL string `json:"url"`
	// Timestamp is when the photo was captured.
	Timestamp time.Time `json:"timestamp"`
	// Operator is who captured it.
	Operator string `json:"operator"`
	// CaptureType describes the context (e.g. scale_display, damage_evidence).
	CaptureType string `json:"captureType,omitempty"`
}

// WeightVerification is the structured result of one weighing attempt.
// Re-weighing replaces the whole value, it is never merged.
type WeightVerification struct {
	// DifferenceKg is measured minus declared, signed.
	DifferenceKg float64 `json:"differenceKg"`
	// Percentage is the absolute deviation relative to the declared weight.
	Percentage float64 `json:"percentage"`
	// Status classifies the deviation.
	Status VerificationStatus `json:"status"`
	// ToleranceKg is the policy tolerance in force when the parcel was weighed.
	ToleranceKg float64 `json:"toleranceKg"`
	// AutoApproved is true iff Status is OK.
	AutoApproved bool `json:"autoApproved"`
	// Operator is who performed the weighing.
	Operator string `json:"operator"`
	// Timestamp is when the weighing happened.
	Timestamp time.Time `json:"timestamp"`
	// Notes holds optional operator remarks.
	Notes string `json:"notes,omitempty"`
	// Photos are scale/evidence shots attached to this weighing.
	Photos []PhotoRef `json:"photos,omitempty"`
}

// StepKind identifies the kind of a processing step.
type StepKind string

const (
	StepRegistered          StepKind = "registered"
	StepArrivalScan         StepKind = "arrival_scan"
	StepWeighed             StepKind = "weighed"
	StepWeightVerified      StepKind = "weight_verified"
	StepWeightIssue         StepKind = "weight_issue"
	StepSorted              StepKind = "sorted"
	StepSpecialCaseDeclared StepKind = "special_case_declared"
	StepSupplementRequested StepKind = "supplement_requested"
)

// ProcessingStep is one immutable audit-trail entry. Steps are appended only,
// never mutated or deleted.
type ProcessingStep struct {
	// Step is the kind of action taken.
	Step StepKind `json:"step"`
	// Timestamp is when the action happened.
	Timestamp time.Time `json:"timestamp"`
	// Operator is who (or which system actor) performed the action.
	Operator string `json:"operator"`
	// Data holds free-form step details.
	Data map[string]interface{} `json:"data,omitempty"`
}

// PaymentIntentStatus is the settlement state of a payment intent.
type PaymentIntentStatus string

const (
	IntentPending   PaymentIntentStatus = "pending"
	IntentCompleted PaymentIntentStatus = "completed"
	IntentExpired   PaymentIntentStatus = "expired"
)

// PaymentIntent is a billing adjustment awaiting settlement. It is created by
// the supplement calculator and finalized by the external payment webhook.
type PaymentIntent struct {
	ID           string              `json:"id"`
	ParcelID     string              `json:"parcelId"`
	TrackingCode string              `json:"trackingCode"`
	Amount       float64             `json:"amount"`
	Currency     string              `json:"currency"`
	Reason       string              `json:"reason"`
	Status       PaymentIntentStatus `json:"status"`
	CreatedAt    time.Time           `json:"createdAt"`
	ExpiresAt    time.Time           `json:"expiresAt"`
}

// Parcel is the central entity tracked through the depot.
type Parcel struct {
	// ID is the immutable unique identifier.
	ID string `json:"id"`
	// TrackingCode is the unique, human-scannable label code.
	TrackingCode string `json:"trackingCode"`
	// DeclaredWeightKg is the sender-declared weight, immutable after creation.
	DeclaredWeightKg float64 `json:"declaredWeightKg"`
	// MeasuredWeightKg is the depot-measured weight, set per weighing event.
	MeasuredWeightKg *float64 `json:"measuredWeightKg,omitempty"`
	// Destination is the free-text destination city.
	Destination string `json:"destination"`
	// BaseCost is the booking-time shipping cost, the basis for refunds.
	BaseCost float64 `json:"baseCost"`
	// ContactPhone reaches the payer for supplement checkout links.
	ContactPhone string `json:"contactPhone,omitempty"`
	// ContactEmail reaches the payer for supplement checkout links.
	ContactEmail string `json:"contactEmail,omitempty"`
	// Phase is the current lifecycle phase, the single source of truth.
	Phase Phase `json:"phase"`
	// SpecialCase is set when the parcel was pulled from the normal path.
	SpecialCase *SpecialCase `json:"specialCase,omitempty"`
	// SortingZone is assigned when the parcel reaches the sorted phase.
	SortingZone Zone `json:"sortingZone,omitempty"`
	// SortingReason explains the zone assignment.
	SortingReason string `json:"sortingReason,omitempty"`
	// WeightVerification is the latest weighing result.
	WeightVerification *WeightVerification `json:"weightVerification,omitempty"`
	// PendingPaymentID references the pending supplement intent, if any.
	PendingPaymentID string `json:"pendingPayment,omitempty"`
	// ProcessingHistory is the append-only audit trail.
	ProcessingHistory []ProcessingStep `json:"processingHistory"`

	LastUpdatedBy string    `json:"lastUpdatedBy,omitempty"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NormalizedDestination returns the destination lowered for comparison.
func (p *Parcel) NormalizedDestination() string {
	return strings.ToLower(strings.TrimSpace(p.Destination))
}

// SpecialCaseType returns the special-case tag, or empty when none is declared.
func (p *Parcel) SpecialCaseType() SpecialCaseKind {
	if p.SpecialCase == nil {
		return ""
	}
	return p.SpecialCase.Type
}

// AppendStep records one processing step on the audit trail.
func (p *Parcel) AppendStep(kind StepKind, operator string, data map[string]interface{}) {
	p.ProcessingHistory = append(p.ProcessingHistory, ProcessingStep{
		Step:      kind,
		Timestamp: time.Now().UTC(),
		Operator:  operator,
		Data:      data,
	})
}

// Validate checks the structural invariants of the parcel document.
func (p *Parcel) Validate() error {
	if p.ID == "" || p.TrackingCode == "" {
		return ErrValidation
	}
	if (p.WeightVerification == nil) != (p.MeasuredWeightKg == nil) {
		return ErrValidation
	}
	if p.SortingZone != "" && !p.hasReachedSorted() {
		return ErrValidation
	}
	if p.SortingZone == "" && p.hasReachedSorted() {
		return ErrValidation
	}
	return nil
}

// hasReachedSorted reports whether the parcel has ever passed through the
// sorted phase. A special case declared after sorting keeps its zone, so the
// audit trail is consulted alongside the current phase.
func (p *Parcel) hasReachedSorted() bool {
	switch p.Phase {
	case PhaseSorted, PhaseGrouped, PhaseShipped, PhaseDelivered:
		return true
	}
	for _, step := range p.ProcessingHistory {
		if step.Step == StepSorted {
			return true
		}
	}
	return false
}
