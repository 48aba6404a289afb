package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	parcels "parcel-depot/internal/features/parcels/domain"
)

// QRMarker prefixes the JSON payload of depot-issued QR labels.
const QRMarker = "PARCEL:"

// QRVersion is the payload version written on newly encoded labels.
const QRVersion = 1

// trackingCodePattern matches label codes of the form PREFIX-YYYY-NNNNNN:
// a prefix of at least two uppercase letters, a 4-digit year and a 3-6 digit
// sequence number.
var trackingCodePattern = regexp.MustCompile(`^[A-Z]{2,}-\d{4}-\d{3,6}$`)

// legacyCodes are the short codes from the pre-standardized labelling run.
var legacyCodes = map[string]struct{}{
	"KIN1": {},
	"LUB1": {},
	"BXL1": {},
}

// ValidTrackingCode reports whether the token matches an accepted pattern.
func ValidTrackingCode(token string) bool {
	if trackingCodePattern.MatchString(token) {
		return true
	}
	_, ok := legacyCodes[token]
	return ok
}

// ValidateTrackingCode rejects tokens matching no accepted pattern.
func ValidateTrackingCode(token string) error {
	if !ValidTrackingCode(strings.TrimSpace(token)) {
		return fmt.Errorf("%w: tracking code %q", parcels.ErrInvalidFormat, token)
	}
	return nil
}

// QRPayload is the JSON document embedded in a depot QR label.
type QRPayload struct {
	TrackingID string    `json:"trackingID"`
	ParcelID   string    `json:"parcelId"`
	Timestamp  time.Time `json:"timestamp"`
	Version    int       `json:"version"`
}

// IsQRPayload reports whether the token carries the QR marker.
func IsQRPayload(token string) bool {
	return strings.HasPrefix(token, QRMarker)
}

// EncodeQRPayload renders the QR string for a parcel label.
func EncodeQRPayload(parcel *parcels.Parcel) (string, error) {
	payload := QRPayload{
		TrackingID: parcel.TrackingCode,
		ParcelID:   parcel.ID,
		Timestamp:  time.Now().UTC(),
		Version:    QRVersion,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR payload: %w", err)
	}
	return QRMarker + string(data), nil
}

// DecodeQRPayload parses a scanned QR string. Any parse failure or missing
// identity field is an invalid-format error, never coerced.
func DecodeQRPayload(token string) (*QRPayload, error) {
	if !IsQRPayload(token) {
		return nil, fmt.Errorf("%w: missing QR marker", parcels.ErrInvalidFormat)
	}

	var payload QRPayload
	if err := json.Unmarshal([]byte(strings.TrimPrefix(token, QRMarker)), &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed QR payload", parcels.ErrInvalidFormat)
	}
	if payload.TrackingID == "" || payload.ParcelID == "" {
		return nil, fmt.Errorf("%w: QR payload missing identity fields", parcels.ErrInvalidFormat)
	}
	return &payload, nil
}
