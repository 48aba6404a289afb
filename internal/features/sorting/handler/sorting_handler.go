package handler

import (
	"errors"
	"time"

	parcels "parcel-depot/internal/features/parcels/domain"
	"parcel-depot/internal/features/sorting/service"

	"github.com/gofiber/fiber/v2"
)

// SortingHandler handles HTTP requests for sorting operations.
type SortingHandler struct {
	sortingService *service.SortingService
}

// NewSortingHandler creates a new SortingHandler.
func NewSortingHandler(sortingService *service.SortingService) *SortingHandler {
	return &SortingHandler{
		sortingService: sortingService,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// AutoSortRequest is the body of a single-parcel sort request.
type AutoSortRequest struct {
	ParcelID string `json:"parcelId"`
	Operator string `json:"operator,omitempty"`
	Force    bool   `json:"force,omitempty"`
}

// AutoSortResponse reports the assigned zone for one parcel.
type AutoSortResponse struct {
	ParcelID string        `json:"parcelId"`
	Zone     parcels.Zone  `json:"zone"`
	Reason   string        `json:"reason"`
	Phase    parcels.Phase `json:"phase"`
}

// BatchSortRequest is the body of a batch sort request.
type BatchSortRequest struct {
	ParcelIDs []string `json:"parcelIds"`
	Operator  string   `json:"operator,omitempty"`
	Force     bool     `json:"force,omitempty"`
}

// AutoSort godoc
// @Summary Auto-sort a single parcel
// @Description Runs the sorting decision table over one parcel and assigns its zone
// @Tags sorting
// @Accept json
// @Produce json
// @Param request body AutoSortRequest true "Parcel to sort"
// @Success 200 {object} AutoSortResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sorting/auto-sort [post]
func (h *SortingHandler) AutoSort(c *fiber.Ctx) error {
	var req AutoSortRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.ParcelID == "" {
		return badRequest(c, "parcelId is required")
	}

	parcel, err := h.sortingService.SortParcel(c.Context(), req.ParcelID, req.Operator, req.Force)
	if err != nil {
		return sortingError(c, err)
	}

	return c.JSON(AutoSortResponse{
		ParcelID: parcel.ID,
		Zone:     parcel.SortingZone,
		Reason:   parcel.SortingReason,
		Phase:    parcel.Phase,
	})
}

// BatchSort godoc
// @Summary Auto-sort a batch of parcels
// @Description Applies the sorting decision table to each parcel and commits all assignments atomically
// @Tags sorting
// @Accept json
// @Produce json
// @Param request body BatchSortRequest true "Parcels to sort"
// @Success 200 {array} service.BatchOutcome
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sorting/batch-sort [post]
func (h *SortingHandler) BatchSort(c *fiber.Ctx) error {
	var req BatchSortRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(req.ParcelIDs) == 0 {
		return badRequest(c, "parcelIds is required")
	}

	outcomes, err := h.sortingService.BatchSort(c.Context(), req.ParcelIDs, req.Operator, req.Force)
	if err != nil {
		return sortingError(c, err)
	}

	return c.JSON(outcomes)
}

// Stats godoc
// @Summary Sorting statistics
// @Description Aggregate parcel counts by zone, destination and special case
// @Tags sorting
// @Produce json
// @Param hours query int false "Restrict to parcels updated within the last N hours"
// @Success 200 {object} service.Stats
// @Failure 500 {object} ErrorResponse
// @Router /sorting/stats [get]
func (h *SortingHandler) Stats(c *fiber.Ctx) error {
	window := time.Duration(0)
	if hours := c.QueryInt("hours"); hours > 0 {
		window = time.Duration(hours) * time.Hour
	}

	stats, err := h.sortingService.ComputeStats(c.Context(), window)
	if err != nil {
		return sortingError(c, err)
	}

	return c.JSON(stats)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Message: msg,
		RayID:   c.Locals("requestid").(string),
	})
}

// sortingError maps domain errors onto HTTP statuses without leaking
// storage-layer detail on internal failures.
func sortingError(c *fiber.Ctx, err error) error {
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
