package domain

import "errors"

var (
	// ErrParcelNotFound is returned when no parcel matches the given id or tracking code.
	ErrParcelNotFound = errors.New("parcel not found")
	// ErrIntentNotFound is returned when no payment intent matches the given id.
	ErrIntentNotFound = errors.New("payment intent not found")
	// ErrInvalidFormat is returned for tokens or payloads that match no accepted pattern.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrDataMismatch is returned when a QR-embedded tracking code disagrees with the stored record.
	ErrDataMismatch = errors.New("tracking data mismatch")
	// ErrInvalidTransition is returned when the lifecycle state does not permit the requested move.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
	// ErrValidation is returned when required fields are missing or out of range.
	ErrValidation = errors.New("validation failure")
)
