package handler

import (
	"errors"

	"parcel-depot/internal/features/parcels/domain"
	"parcel-depot/internal/features/parcels/service"

	"github.com/gofiber/fiber/v2"
)

// ParcelHandler handles HTTP requests for parcel documents and special cases.
type ParcelHandler struct {
	parcelService *service.ParcelService
}

// NewParcelHandler creates a new ParcelHandler.
func NewParcelHandler(parcelService *service.ParcelService) *ParcelHandler {
	return &ParcelHandler{
		parcelService: parcelService,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// RegisterRequest seeds a parcel document at booking time.
type RegisterRequest struct {
	ID               string  `json:"id,omitempty"`
	TrackingCode     string  `json:"trackingCode"`
	DeclaredWeightKg float64 `json:"declaredWeightKg"`
	Destination      string  `json:"destination"`
	BaseCost         float64 `json:"baseCost,omitempty"`
	ContactPhone     string  `json:"contactPhone,omitempty"`
	ContactEmail     string  `json:"contactEmail,omitempty"`
	Operator         string  `json:"operator,omitempty"`
}

// SpecialCaseRequest declares an exception on a parcel.
type SpecialCaseRequest struct {
	CaseType domain.SpecialCaseKind `json:"caseType"`
	Reason   string                 `json:"reason,omitempty"`
	Operator string                 `json:"operator"`
}

// Register godoc
// @Summary Register a parcel
// @Description Seeds the parcel document in pending_reception
// @Tags logistic
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Parcel booking data"
// @Success 201 {object} domain.Parcel
// @Failure 400 {object} ErrorResponse
// @Router /logistic/parcels [post]
func (h *ParcelHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   c.Locals("requestid").(string),
		})
	}

	parcel, err := h.parcelService.Register(c.Context(), service.RegisterInput{
		ID:               req.ID,
		TrackingCode:     req.TrackingCode,
		DeclaredWeightKg: req.DeclaredWeightKg,
		Destination:      req.Destination,
		BaseCost:         req.BaseCost,
		ContactPhone:     req.ContactPhone,
		ContactEmail:     req.ContactEmail,
		Operator:         req.Operator,
	})
	if err != nil {
		return parcelError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(parcel)
}

// Get godoc
// @Summary Fetch a parcel
// @Tags logistic
// @Produce json
// @Param id path string true "Parcel ID"
// @Success 200 {object} domain.Parcel
// @Failure 404 {object} ErrorResponse
// @Router /logistic/parcels/{id} [get]
func (h *ParcelHandler) Get(c *fiber.Ctx) error {
	parcel, err := h.parcelService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return parcelError(c, err)
	}
	return c.JSON(parcel)
}

// History godoc
// @Summary Fetch a parcel's processing history
// @Tags logistic
// @Produce json
// @Param id path string true "Parcel ID"
// @Success 200 {array} domain.ProcessingStep
// @Failure 404 {object} ErrorResponse
// @Router /logistic/parcels/{id}/history [get]
func (h *ParcelHandler) History(c *fiber.Ctx) error {
	steps, err := h.parcelService.History(c.Context(), c.Params("id"))
	if err != nil {
		return parcelError(c, err)
	}
	return c.JSON(steps)
}

// DeclareSpecialCase godoc
// @Summary Declare a special case on a parcel
// @Description Pulls the parcel from the normal weigh/sort path pending manual resolution
// @Tags logistic
// @Accept json
// @Produce json
// @Param id path string true "Parcel ID"
// @Param request body SpecialCaseRequest true "Case tag and reason"
// @Success 200 {object} domain.Parcel
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /logistic/parcels/{id}/special-case [post]
func (h *ParcelHandler) DeclareSpecialCase(c *fiber.Ctx) error {
	var req SpecialCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   c.Locals("requestid").(string),
		})
	}

	parcel, err := h.parcelService.DeclareSpecialCase(c.Context(), c.Params("id"), req.CaseType, req.Reason, req.Operator)
	if err != nil {
		return parcelError(c, err)
	}

	return c.JSON(parcel)
}

// parcelError maps domain errors onto HTTP statuses.
func parcelError(c *fiber.Ctx, err error) error {
	rayID := c.Locals("requestid").(string)
	switch {
	case errors.Is(err, domain.ErrParcelNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Message: "parcel not found", RayID: rayID})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidFormat):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Message: err.Error(), RayID: rayID})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Message: err.Error(), RayID: rayID})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Message: "internal error", RayID: rayID})
	}
}
