package handler

import (
	"errors"

	"parcel-depot/internal/features/intake/service"
	parcels "parcel-depot/internal/features/parcels/domain"

	"github.com/gofiber/fiber/v2"
)

// IntakeHandler handles HTTP requests for token resolution and arrival scans.
type IntakeHandler struct {
	resolver *service.Resolver
}

// NewIntakeHandler creates a new IntakeHandler.
func NewIntakeHandler(resolver *service.Resolver) *IntakeHandler {
	return &IntakeHandler{
		resolver: resolver,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// ValidateQRRequest carries the scanned QR string and scanner metadata.
type ValidateQRRequest struct {
	QRCode    string `json:"qrCode"`
	Operator  string `json:"operator,omitempty"`
	Location  string `json:"location,omitempty"`
	ScannerID string `json:"scannerId,omitempty"`
}

// ValidateQRResponse reports whether the QR resolved to a parcel.
type ValidateQRResponse struct {
	Valid  bool            `json:"valid"`
	Parcel *parcels.Parcel `json:"parcel,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ArrivalScanRequest carries manual arrival-scan metadata.
type ArrivalScanRequest struct {
	Operator  string `json:"operator"`
	Location  string `json:"location,omitempty"`
	ScannerID string `json:"scannerId,omitempty"`
	PhotoURL  string `json:"photoUrl,omitempty"`
}

// ValidateQR godoc
// @Summary Validate a scanned QR code
// @Description Resolves the QR payload to a parcel and records the arrival scan
// @Tags logistic
// @Accept json
// @Produce json
// @Param request body ValidateQRRequest true "Scanned QR payload"
// @Success 200 {object} ValidateQRResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /logistic/qr-codes/validate [post]
func (h *IntakeHandler) ValidateQR(c *fiber.Ctx) error {
	var req ValidateQRRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   c.Locals("requestid").(string),
		})
	}
	if req.QRCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "qrCode is required",
			RayID:   c.Locals("requestid").(string),
		})
	}

	parcel, err := h.resolver.ValidateQR(c.Context(), req.QRCode, service.ScanContext{
		Operator:  req.Operator,
		Location:  req.Location,
		ScannerID: req.ScannerID,
	})
	if err != nil {
		// Invalid, mismatched or unknown codes are a normal scanner outcome,
		// reported in-band rather than as an HTTP failure.
		switch {
		case errors.Is(err, parcels.ErrInvalidFormat),
			errors.Is(err, parcels.ErrDataMismatch),
			errors.Is(err, parcels.ErrParcelNotFound):
			return c.JSON(ValidateQRResponse{Valid: false, Error: err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Message: "internal error",
				RayID:   c.Locals("requestid").(string),
			})
		}
	}

	return c.JSON(ValidateQRResponse{Valid: true, Parcel: parcel})
}

// ArrivalScan godoc
// @Summary Record a manual arrival scan
// @Description Moves the parcel into received and appends the arrival-scan processing step
// @Tags logistic
// @Accept json
// @Produce json
// @Param id path string true "Parcel ID"
// @Param request body ArrivalScanRequest true "Scan metadata"
// @Success 200 {object} parcels.Parcel
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /logistic/parcels/{id}/arrival-scan [post]
func (h *IntakeHandler) ArrivalScan(c *fiber.Ctx) error {
	parcelID := c.Params("id")

	var req ArrivalScanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   c.Locals("requestid").(string),
		})
	}

	parcel, err := h.resolver.ArrivalScan(c.Context(), parcelID, service.ScanContext{
		Operator:  req.Operator,
		Location:  req.Location,
		ScannerID: req.ScannerID,
	}, req.PhotoURL)
	if err != nil {
		return intakeError(c, err)
	}

	return c.JSON(parcel)
}

// intakeError maps domain errors onto HTTP statuses.
func intakeError(c *fiber.Ctx, err error) error {
	rayID := c.Locals("requestid").(string)
	switch {
	case errors.Is(err, parcels.ErrParcelNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Message: "parcel not found", RayID: rayID})
	case errors.Is(err, parcels.ErrValidation), errors.Is(err, parcels.ErrInvalidFormat):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Message: err.Error(), RayID: rayID})
	case errors.Is(err, parcels.ErrDataMismatch):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Message: err.Error(), RayID: rayID})
	case errors.Is(err, parcels.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Message: err.Error(), RayID: rayID})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Message: "internal error", RayID: rayID})
	}
}
