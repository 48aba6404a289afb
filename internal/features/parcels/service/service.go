package service

import (
	"context"
	"fmt"
	"time"

	"parcel-depot/internal/core/metrics"
	"parcel-depot/internal/features/intake/domain"
	parcels "parcel-depot/internal/features/parcels/domain"
	"parcel-depot/internal/features/parcels/ports"

	"github.com/google/uuid"
)

// SaveWithPhaseGuard re-reads the parcel and verifies the phase the transition
// was computed from still holds before writing. Updates are last-write-wins;
// the guard narrows the race window between concurrent operators, it does not
// eliminate it.
func SaveWithPhaseGuard(ctx context.Context, repo ports.ParcelRepository, parcel *parcels.Parcel, from parcels.Phase) error {
	current, err := repo.Get(ctx, parcel.ID)
	if err != nil {
		return err
	}
	if current.Phase != from {
		return fmt.Errorf("%w: parcel %s moved from %s to %s mid-operation",
			parcels.ErrInvalidTransition, parcel.ID, from, current.Phase)
	}
	return repo.Save(ctx, parcel)
}

// ParcelService handles parcel registration, reads and special-case declarations.
type ParcelService struct {
	repo ports.ParcelRepository
}

// NewParcelService creates a new ParcelService.
func NewParcelService(repo ports.ParcelRepository) *ParcelService {
	return &ParcelService{repo: repo}
}

// RegisterInput seeds a new parcel document at booking time.
type RegisterInput struct {
	ID               string
	TrackingCode     string
	DeclaredWeightKg float64
	Destination      string
	BaseCost         float64
	ContactPhone     string
	ContactEmail     string
	Operator         string
}

// Register creates the parcel document in pending_reception.
func (s *ParcelService) Register(ctx context.Context, in RegisterInput) (*parcels.Parcel, error) {
	if in.TrackingCode == "" || in.Destination == "" {
		return nil, fmt.Errorf("%w: trackingCode and destination are required", parcels.ErrValidation)
	}
	if in.DeclaredWeightKg <= 0 {
		return nil, fmt.Errorf("%w: declaredWeightKg must be positive", parcels.ErrValidation)
	}
	if err := domain.ValidateTrackingCode(in.TrackingCode); err != nil {
		return nil, err
	}

	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	parcel := &parcels.Parcel{
		ID:                in.ID,
		TrackingCode:      in.TrackingCode,
		DeclaredWeightKg:  in.DeclaredWeightKg,
		Destination:       in.Destination,
		BaseCost:          in.BaseCost,
		ContactPhone:      in.ContactPhone,
		ContactEmail:      in.ContactEmail,
		Phase:             parcels.PhasePendingReception,
		ProcessingHistory: []parcels.ProcessingStep{},
		LastUpdatedBy:     in.Operator,
		LastUpdatedAt:     now,
		CreatedAt:         now,
	}
	parcel.AppendStep(parcels.StepRegistered, in.Operator, map[string]interface{}{
		"declaredWeightKg": in.DeclaredWeightKg,
		"destination":      in.Destination,
	})

	if err := s.repo.Save(ctx, parcel); err != nil {
		return nil, fmt.Errorf("service: failed to register parcel: %w", err)
	}
	return parcel, nil
}

// Get retrieves a parcel by id.
func (s *ParcelService) Get(ctx context.Context, id string) (*parcels.Parcel, error) {
	return s.repo.Get(ctx, id)
}

// History returns the append-only processing trail for a parcel.
func (s *ParcelService) History(ctx context.Context, id string) ([]parcels.ProcessingStep, error) {
	parcel, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return parcel.ProcessingHistory, nil
}

// DeclareSpecialCase pulls the parcel from the normal path under the given tag.
func (s *ParcelService) DeclareSpecialCase(ctx context.Context, id string, kind parcels.SpecialCaseKind, reason, operator string) (*parcels.Parcel, error) {
	parcel, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := parcel.Phase
	if err := parcel.DeclareSpecialCase(kind, reason, operator); err != nil {
		return nil, err
	}

	if err := SaveWithPhaseGuard(ctx, s.repo, parcel, from); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("special_case").Inc()
		return nil, err
	}
	return parcel, nil
}
