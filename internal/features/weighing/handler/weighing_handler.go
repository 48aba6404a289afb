package handler

import (
	"errors"

	parcels "parcel-depot/internal/features/parcels/domain"
	"parcel-depot/internal/features/weighing/service"

	"github.com/gofiber/fiber/v2"
)

// WeighingHandler handles HTTP requests for parcel weighing.
type WeighingHandler struct {
	weighingService *service.WeighingService
}

// NewWeighingHandler creates a new WeighingHandler.
func NewWeighingHandler(weighingService *service.WeighingService) *WeighingHandler {
	return &WeighingHandler{
		weighingService: weighingService,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// WeighRequest is the body of a weighing event.
type WeighRequest struct {
	MeasuredWeightKg float64            `json:"measuredWeightKg"`
	Operator         string             `json:"operator"`
	Notes            string             `json:"notes,omitempty"`
	Photos           []parcels.PhotoRef `json:"photos,omitempty"`
}

// Weigh godoc
// @Summary Weigh a parcel
// @Description Records the measured weight, reconciles it against the declared weight and advances the lifecycle
// @Tags logistic
// @Accept json
// @Produce json
// @Param id path string true "Parcel ID"
// @Param request body WeighRequest true "Measured weight and operator"
// @Success 200 {object} service.WeighOutcome
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /logistic/parcels/{id}/weigh [post]
func (h *WeighingHandler) Weigh(c *fiber.Ctx) error {
	parcelID := c.Params("id")

	var req WeighRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   c.Locals("requestid").(string),
		})
	}

	outcome, err := h.weighingService.WeighParcel(c.Context(), parcelID, service.WeighInput{
		MeasuredWeightKg: req.MeasuredWeightKg,
		Operator:         req.Operator,
		Notes:            req.Notes,
		Photos:           req.Photos,
	})
	if err != nil {
		return weighingError(c, err)
	}

	return c.JSON(outcome)
}

// weighingError maps domain errors onto HTTP statuses.
func weighingError(c *fiber.Ctx, err error) error {
	rayID := c.Locals("requestid").(string)
	switch {
	case errors.Is(err, parcels.ErrParcelNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Message: "parcel not found", RayID: rayID})
	case errors.Is(err, parcels.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Message: err.Error(), RayID: rayID})
	case errors.Is(err, parcels.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Message: err.Error(), RayID: rayID})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Message: "internal error", RayID: rayID})
	}
}
