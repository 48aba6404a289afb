package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parcel-depot/internal/core/logger"
	"parcel-depot/internal/core/metrics"
	parcels "parcel-depot/internal/features/parcels/domain"
	"parcel-depot/internal/features/parcels/ports"
	parcelservice "parcel-depot/internal/features/parcels/service"
	"parcel-depot/internal/features/sorting/domain"

	"go.uber.org/zap"
)

// SortingService runs the auto-sort decision table over parcels.
type SortingService struct {
	repo ports.ParcelRepository
}

// NewSortingService creates a new SortingService.
func NewSortingService(repo ports.ParcelRepository) *SortingService {
	return &SortingService{repo: repo}
}

// SortParcel assigns a zone to one parcel. Actor defaults to the auto-sort
// system actor when empty. Force admits weight_issue, special_case and
// re-sorts of already sorted parcels.
func (s *SortingService) SortParcel(ctx context.Context, parcelID, actor string, force bool) (*parcels.Parcel, error) {
	if actor == "" {
		actor = domain.AutoSortActor
	}

	parcel, err := s.repo.Get(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	from := parcel.Phase

	decision := domain.Decide(parcel)
	if err := parcel.AssignZone(decision.Zone, decision.Reason, actor, force); err != nil {
		return nil, err
	}

	if err := parcelservice.SaveWithPhaseGuard(ctx, s.repo, parcel, from); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("sort").Inc()
		return nil, err
	}

	metrics.SortedParcelsTotal.WithLabelValues(string(decision.Zone)).Inc()
	logger.Get().Info("Parcel sorted",
		zap.String("parcel_id", parcel.ID),
		zap.String("zone", string(decision.Zone)),
		zap.String("reason", decision.Reason),
	)
	return parcel, nil
}

// BatchOutcome is the per-parcel result of a batch sort.
type BatchOutcome struct {
	ParcelID string       `json:"parcelId"`
	Success  bool         `json:"success"`
	Zone     parcels.Zone `json:"zone,omitempty"`
	Reason   string       `json:"reason,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// BatchSort applies the decision table to each parcel independently and
// commits every successful assignment as one atomic unit. Per-parcel failures
// are reported in the outcome list without aborting the rest; a failed commit
// fails the whole batch so it can be retried wholesale.
func (s *SortingService) BatchSort(ctx context.Context, parcelIDs []string, actor string, force bool) ([]BatchOutcome, error) {
	if len(parcelIDs) == 0 {
		return nil, fmt.Errorf("%w: parcelIds is required", parcels.ErrValidation)
	}
	if actor == "" {
		actor = domain.BatchSortActor
	}

	outcomes := make([]BatchOutcome, 0, len(parcelIDs))
	updated := make([]*parcels.Parcel, 0, len(parcelIDs))

	for _, id := range parcelIDs {
		parcel, err := s.repo.Get(ctx, id)
		if err != nil {
			if errors.Is(err, parcels.ErrParcelNotFound) {
				outcomes = append(outcomes, BatchOutcome{ParcelID: id, Success: false, Error: "not found"})
				continue
			}
			return nil, err
		}

		decision := domain.Decide(parcel)
		if err := parcel.AssignZone(decision.Zone, decision.Reason, actor, force); err != nil {
			outcomes = append(outcomes, BatchOutcome{ParcelID: id, Success: false, Error: err.Error()})
			continue
		}

		updated = append(updated, parcel)
		outcomes = append(outcomes, BatchOutcome{
			ParcelID: id,
			Success:  true,
			Zone:     decision.Zone,
			Reason:   decision.Reason,
		})
	}

	if len(updated) > 0 {
		if err := s.repo.SaveAll(ctx, updated); err != nil {
			metrics.OperationErrorsTotal.WithLabelValues("batch_sort").Inc()
			return nil, fmt.Errorf("batch sort commit failed: %w", err)
		}
		for _, parcel := range updated {
			metrics.SortedParcelsTotal.WithLabelValues(string(parcel.SortingZone)).Inc()
		}
	}

	logger.Get().Info("Batch sort completed",
		zap.Int("requested", len(parcelIDs)),
		zap.Int("sorted", len(updated)),
	)
	return outcomes, nil
}

// Stats aggregates parcel counts for the sorting dashboard.
type Stats struct {
	TotalParcels  int            `json:"totalParcels"`
	SortedParcels int            `json:"sortedParcels"`
	ByZone        map[string]int `json:"byZone"`
	ByDestination map[string]int `json:"byDestination"`
	BySpecialCase map[string]int `json:"bySpecialCase"`
}

// ComputeStats derives aggregate counts from parcel state. A positive window
// restricts the aggregation to parcels updated within it.
func (s *SortingService) ComputeStats(ctx context.Context, window time.Duration) (*Stats, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list parcels: %w", err)
	}

	cutoff := time.Time{}
	if window > 0 {
		cutoff = time.Now().UTC().Add(-window)
	}

	stats := &Stats{
		ByZone:        make(map[string]int),
		ByDestination: make(map[string]int),
		BySpecialCase: make(map[string]int),
	}
	for _, parcel := range all {
		if !cutoff.IsZero() && parcel.LastUpdatedAt.Before(cutoff) {
			continue
		}
		stats.TotalParcels++
		if parcel.SortingZone != "" {
			stats.SortedParcels++
			stats.ByZone[string(parcel.SortingZone)]++
		}
		stats.ByDestination[parcel.NormalizedDestination()]++
		if kind := parcel.SpecialCaseType(); kind != "" {
			stats.BySpecialCase[string(kind)]++
		}
	}
	return stats, nil
}
