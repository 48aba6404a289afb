package ports

import (
	"context"

	"parcel-depot/internal/features/parcels/domain"
)

// ParcelRepository defines the secondary port for parcel storage. Writes are
// last-write-wins over a document store keyed by parcel id.
type ParcelRepository interface {
	// Get returns the parcel by id, or domain.ErrParcelNotFound.
	Get(ctx context.Context, id string) (*domain.Parcel, error)
	// GetByTrackingCode returns the parcel indexed by tracking code, or
	// domain.ErrParcelNotFound.
	GetByTrackingCode(ctx context.Context, code string) (*domain.Parcel, error)
	// Save persists the parcel document, overwriting any previous version.
	Save(ctx context.Context, parcel *domain.Parcel) error
	// SaveAll persists all parcels as one atomic commit; either every parcel
	// is written or none is.
	SaveAll(ctx context.Context, parcels []*domain.Parcel) error
	// List returns every stored parcel.
	List(ctx context.Context) ([]*domain.Parcel, error)
}

// PaymentIntentRepository defines the secondary port for payment-intent storage.
type PaymentIntentRepository interface {
	// Get returns the intent by id, or domain.ErrIntentNotFound.
	Get(ctx context.Context, id string) (*domain.PaymentIntent, error)
	// Save persists the intent document.
	Save(ctx context.Context, intent *domain.PaymentIntent) error
	// Delete removes the intent document.
	Delete(ctx context.Context, id string) error
}

// CheckoutProvider is the external payment collaborator that turns a pending
// intent into a checkout link. The engine only defines amount, currency,
// reason and expiry.
type CheckoutProvider interface {
	CreateCheckoutLink(ctx context.Context, intent *domain.PaymentIntent, parcel *domain.Parcel) (string, error)
}
