package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"parcel-depot/internal/core/logger"
	"parcel-depot/internal/core/store"
	"parcel-depot/internal/features/parcels/domain"

	"go.uber.org/zap"
)

const (
	parcelKeyPrefix   = "parcel:"
	trackingKeyPrefix = "parcel_tracking:"
	intentKeyPrefix   = "payment_intent:"
	parcelIndexKey    = "parcels:index"
)

// RedisParcelRepository implements ports.ParcelRepository over the document store.
// Each parcel is one JSON document keyed by id, with a tracking-code index
// entry pointing back at the id.
type RedisParcelRepository struct {
	store store.DocumentStore
}

// NewRedisParcelRepository creates a new RedisParcelRepository.
func NewRedisParcelRepository(s store.DocumentStore) *RedisParcelRepository {
	return &RedisParcelRepository{store: s}
}

func parcelKey(id string) string { return parcelKeyPrefix + id }

func trackingKey(code string) string {
	return trackingKeyPrefix + strings.ToUpper(strings.TrimSpace(code))
}

// Get retrieves a parcel by id.
func (r *RedisParcelRepository) Get(ctx context.Context, id string) (*domain.Parcel, error) {
	data, err := r.store.Get(ctx, parcelKey(id))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, domain.ErrParcelNotFound
		}
		return nil, fmt.Errorf("failed to get parcel %s: %w", id, err)
	}

	var parcel domain.Parcel
	if err := json.Unmarshal(data, &parcel); err != nil {
		return nil, fmt.Errorf("failed to unmarshal parcel %s: %w", id, err)
	}
	return &parcel, nil
}

// GetByTrackingCode resolves the tracking-code index and loads the parcel.
// An index entry pointing at a parcel with a different code is a
// data-integrity fault and is surfaced, never silently repaired.
func (r *RedisParcelRepository) GetByTrackingCode(ctx context.Context, code string) (*domain.Parcel, error) {
	id, err := r.store.Get(ctx, trackingKey(code))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, domain.ErrParcelNotFound
		}
		return nil, fmt.Errorf("failed to resolve tracking code %s: %w", code, err)
	}

	parcel, err := r.Get(ctx, string(id))
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(parcel.TrackingCode, strings.TrimSpace(code)) {
		return nil, fmt.Errorf("tracking index corrupt: %s resolves to parcel %s carrying code %s",
			code, parcel.ID, parcel.TrackingCode)
	}
	return parcel, nil
}

// Save persists the parcel and its tracking-code index entry atomically.
func (r *RedisParcelRepository) Save(ctx context.Context, parcel *domain.Parcel) error {
	docs, err := parcelDocs(parcel)
	if err != nil {
		return err
	}
	if err := r.store.SetBatch(ctx, docs); err != nil {
		return fmt.Errorf("failed to save parcel %s: %w", parcel.ID, err)
	}
	if err := r.store.AddToSet(ctx, parcelIndexKey, parcel.ID); err != nil {
		// The document write already landed; index membership is repairable.
		logger.Get().Warn("failed to index parcel", zap.String("parcel_id", parcel.ID), zap.Error(err))
	}
	return nil
}

// SaveAll persists every parcel in a single atomic commit.
func (r *RedisParcelRepository) SaveAll(ctx context.Context, parcels []*domain.Parcel) error {
	var docs []store.Document
	for _, parcel := range parcels {
		pd, err := parcelDocs(parcel)
		if err != nil {
			return err
		}
		docs = append(docs, pd...)
	}
	if err := r.store.SetBatch(ctx, docs); err != nil {
		return fmt.Errorf("failed to commit %d parcels: %w", len(parcels), err)
	}
	for _, parcel := range parcels {
		if err := r.store.AddToSet(ctx, parcelIndexKey, parcel.ID); err != nil {
			logger.Get().Warn("failed to index parcel", zap.String("parcel_id", parcel.ID), zap.Error(err))
		}
	}
	return nil
}

// List loads every indexed parcel. Index members whose document vanished are
// skipped.
func (r *RedisParcelRepository) List(ctx context.Context) ([]*domain.Parcel, error) {
	ids, err := r.store.SetMembers(ctx, parcelIndexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}

	parcels := make([]*domain.Parcel, 0, len(ids))
	for _, id := range ids {
		parcel, err := r.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrParcelNotFound) {
				continue
			}
			return nil, err
		}
		parcels = append(parcels, parcel)
	}
	return parcels, nil
}

func parcelDocs(parcel *domain.Parcel) ([]store.Document, error) {
	if err := parcel.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to save parcel %s: %w", parcel.ID, err)
	}
	data, err := json.Marshal(parcel)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parcel %s: %w", parcel.ID, err)
	}
	return []store.Document{
		{Key: parcelKey(parcel.ID), Value: data},
		{Key: trackingKey(parcel.TrackingCode), Value: []byte(parcel.ID)},
	}, nil
}

// RedisPaymentIntentRepository implements ports.PaymentIntentRepository over
// the document store.
type RedisPaymentIntentRepository struct {
	store store.DocumentStore
}

// NewRedisPaymentIntentRepository creates a new RedisPaymentIntentRepository.
func NewRedisPaymentIntentRepository(s store.DocumentStore) *RedisPaymentIntentRepository {
	return &RedisPaymentIntentRepository{store: s}
}

// Get retrieves a payment intent by id.
func (r *RedisPaymentIntentRepository) Get(ctx context.Context, id string) (*domain.PaymentIntent, error) {
	data, err := r.store.Get(ctx, intentKeyPrefix+id)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, domain.ErrIntentNotFound
		}
		return nil, fmt.Errorf("failed to get payment intent %s: %w", id, err)
	}

	var intent domain.PaymentIntent
	if err := json.Unmarshal(data, &intent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment intent %s: %w", id, err)
	}
	return &intent, nil
}

// Save persists the payment intent.
func (r *RedisPaymentIntentRepository) Save(ctx context.Context, intent *domain.PaymentIntent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to marshal payment intent %s: %w", intent.ID, err)
	}
	if err := r.store.Set(ctx, intentKeyPrefix+intent.ID, data); err != nil {
		return fmt.Errorf("failed to save payment intent %s: %w", intent.ID, err)
	}
	return nil
}

// Delete removes the payment intent.
func (r *RedisPaymentIntentRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, intentKeyPrefix+id); err != nil {
		return fmt.Errorf("failed to delete payment intent %s: %w", id, err)
	}
	return nil
}
