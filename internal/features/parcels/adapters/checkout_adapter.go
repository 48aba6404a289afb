package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"parcel-depot/internal/core/config"
	"parcel-depot/internal/core/httpclient"
	"parcel-depot/internal/features/parcels/domain"
)

// HTTPCheckoutAdapter implements the CheckoutProvider port against the
// external payment-provider checkout-link API.
type HTTPCheckoutAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the checkout service connection details.
	config config.CheckoutConfig
}

// NewHTTPCheckoutAdapter creates a new instance of HTTPCheckoutAdapter.
func NewHTTPCheckoutAdapter(cfg config.CheckoutConfig) *HTTPCheckoutAdapter {
	return &HTTPCheckoutAdapter{
		client: httpclient.NewClient(10 * time.Second),
		config: cfg,
	}
}

// checkoutRequest is the wire payload sent to the checkout-link service.
type checkoutRequest struct {
	IntentID     string    `json:"intent_id"`
	ParcelID     string    `json:"parcel_id"`
	TrackingCode string    `json:"tracking_code"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	Reason       string    `json:"reason"`
	ExpiresAt    time.Time `json:"expires_at"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email,omitempty"`
}

// checkoutResponse is the wire payload returned by the checkout-link service.
type checkoutResponse struct {
	URL string `json:"url"`
}

// CreateCheckoutLink asks the payment provider for a checkout link covering
// the supplement intent.
func (a *HTTPCheckoutAdapter) CreateCheckoutLink(ctx context.Context, intent *domain.PaymentIntent, parcel *domain.Parcel) (string, error) {
	body, err := json.Marshal(checkoutRequest{
		IntentID:     intent.ID,
		ParcelID:     intent.ParcelID,
		TrackingCode: intent.TrackingCode,
		Amount:       intent.Amount,
		Currency:     intent.Currency,
		Reason:       intent.Reason,
		ExpiresAt:    intent.ExpiresAt,
		Phone:        parcel.ContactPhone,
		Email:        parcel.ContactEmail,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal checkout request: %w", err)
	}

	url := fmt.Sprintf("%s/checkout-links", a.config.URL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("checkout service returned status: %d", resp.StatusCode)
	}

	var out checkoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return out.URL, nil
}

// NoopCheckoutAdapter satisfies the CheckoutProvider port when no checkout
// service is configured; intents are still recorded locally.
type NoopCheckoutAdapter struct{}

// CreateCheckoutLink returns an empty link without contacting anything.
func (NoopCheckoutAdapter) CreateCheckoutLink(ctx context.Context, intent *domain.PaymentIntent, parcel *domain.Parcel) (string, error) {
	return "", nil
}
