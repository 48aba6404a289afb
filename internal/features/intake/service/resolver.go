package service

import (
	"context"
	"fmt"
	"strings"

	"parcel-depot/internal/core/logger"
	"parcel-depot/internal/core/metrics"
	"parcel-depot/internal/features/intake/domain"
	parcels "parcel-depot/internal/features/parcels/domain"
	"parcel-depot/internal/features/parcels/ports"
	parcelservice "parcel-depot/internal/features/parcels/service"

	"go.uber.org/zap"
)

// qrScannerActor is recorded when a scan arrives without an operator identity.
const qrScannerActor = "qr-scanner"

// Resolver resolves scanned or typed tokens to exactly one parcel.
type Resolver struct {
	repo ports.ParcelRepository
}

// NewResolver creates a new Resolver.
func NewResolver(repo ports.ParcelRepository) *Resolver {
	return &Resolver{repo: repo}
}

// ScanContext carries the metadata recorded on an arrival scan.
type ScanContext struct {
	Operator  string
	Location  string
	ScannerID string
}

// Resolve maps a raw token (tracking code, legacy code or QR payload) to one
// parcel without side effects.
func (r *Resolver) Resolve(ctx context.Context, token string) (*parcels.Parcel, error) {
	token = strings.TrimSpace(token)

	if domain.IsQRPayload(token) {
		payload, err := domain.DecodeQRPayload(token)
		if err != nil {
			return nil, err
		}
		return r.lookupByPayload(ctx, payload)
	}

	if err := domain.ValidateTrackingCode(token); err != nil {
		return nil, err
	}
	return r.repo.GetByTrackingCode(ctx, token)
}

// ValidateQR resolves a QR payload and, on success, records the arrival scan
// on the parcel's processing history.
func (r *Resolver) ValidateQR(ctx context.Context, raw string, scan ScanContext) (*parcels.Parcel, error) {
	payload, err := domain.DecodeQRPayload(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}

	parcel, err := r.lookupByPayload(ctx, payload)
	if err != nil {
		return nil, err
	}

	operator := scan.Operator
	if operator == "" {
		operator = qrScannerActor
	}

	if parcel.Phase == parcels.PhasePendingReception {
		if err := parcel.MarkReceived(operator, scan.Location, scan.ScannerID, ""); err != nil {
			return nil, err
		}
	} else {
		parcel.AppendStep(parcels.StepArrivalScan, operator, map[string]interface{}{
			"location":  scan.Location,
			"scannerId": scan.ScannerID,
		})
	}

	if err := r.repo.Save(ctx, parcel); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("qr_validate").Inc()
		return nil, fmt.Errorf("service: failed to record arrival scan: %w", err)
	}

	metrics.ArrivalScansTotal.Inc()
	logger.Get().Info("QR resolved",
		zap.String("parcel_id", parcel.ID),
		zap.String("tracking_code", parcel.TrackingCode),
	)
	return parcel, nil
}

// ArrivalScan records a manual arrival scan moving the parcel into received.
func (r *Resolver) ArrivalScan(ctx context.Context, parcelID string, scan ScanContext, photoURL string) (*parcels.Parcel, error) {
	if scan.Operator == "" {
		return nil, fmt.Errorf("%w: operator is required", parcels.ErrValidation)
	}

	parcel, err := r.repo.Get(ctx, parcelID)
	if err != nil {
		return nil, err
	}

	from := parcel.Phase
	if err := parcel.MarkReceived(scan.Operator, scan.Location, scan.ScannerID, photoURL); err != nil {
		return nil, err
	}

	if err := parcelservice.SaveWithPhaseGuard(ctx, r.repo, parcel, from); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("arrival_scan").Inc()
		return nil, err
	}

	metrics.ArrivalScansTotal.Inc()
	return parcel, nil
}

// lookupByPayload loads the parcel named by the payload and rejects payloads
// whose embedded tracking code disagrees with the stored record. A mismatch
// is invalid input, not a data-repair opportunity.
func (r *Resolver) lookupByPayload(ctx context.Context, payload *domain.QRPayload) (*parcels.Parcel, error) {
	parcel, err := r.repo.Get(ctx, payload.ParcelID)
	if err != nil {
		return nil, err
	}
	if parcel.TrackingCode != payload.TrackingID {
		return nil, fmt.Errorf("%w: QR carries %s, record carries %s",
			parcels.ErrDataMismatch, payload.TrackingID, parcel.TrackingCode)
	}
	return parcel, nil
}
