package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/travel-request-service/internal/api/dto"
	"github.com/spec-kit/travel-request-service/internal/auth"
	"github.com/spec-kit/travel-request-service/internal/repository"
	"github.com/spec-kit/travel-request-service/internal/service"
	apperrors "github.com/spec-kit/travel-request-service/pkg/util"
)

// TravelRequestsHandler manages travel request endpoints.
type TravelRequestsHandler struct {
	service *service.TravelService
}

// NewTravelRequestsHandler constructs handler.
func NewTravelRequestsHandler(travelService *service.TravelService) *TravelRequestsHandler {
	return &TravelRequestsHandler{service: travelService}
}

// Create handles POST /api/travelrequest.
func (h *TravelRequestsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTravelRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.OriginCity == "" || req.DestinationCity == "" || req.Justification == "" {
		return apperrors.NewValidationError("originCity, destinationCity, justification required", nil)
	}
	if req.DepartureDate.IsZero() || req.ReturnDate.IsZero() {
		return apperrors.NewValidationError("departureDate and returnDate required", nil)
	}

	input := service.TravelRequestInput{
		OriginCity:      req.OriginCity,
		DestinationCity: req.DestinationCity,
		DepartureDate:   req.DepartureDate,
		ReturnDate:      req.ReturnDate,
		Justification:   req.Justification,
	}
	message, err := h.service.Create(c.Context(), principal.User.ID, input)
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: message})
}

// ListMine handles GET /api/travelrequest/my-requests.
func (h *TravelRequestsHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	requests, err := h.service.ListMine(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(travelRequestResponses(requests))
}

// ListAll handles GET /api/travelrequest/all.
func (h *TravelRequestsHandler) ListAll(c *fiber.Ctx) error {
	requests, err := h.service.ListAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(travelRequestResponses(requests))
}

// UpdateStatus handles PUT /api/travelrequest/:id/status.
func (h *TravelRequestsHandler) UpdateStatus(c *fiber.Ctx) error {
	requestID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid request id", nil)
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	message, err := h.service.UpdateStatus(c.Context(), requestID, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: message})
}

func travelRequestResponses(requests []repository.TravelRequestWithOwner) []dto.TravelRequestResponse {
	items := make([]dto.TravelRequestResponse, 0, len(requests))
	for _, request := range requests {
		items = append(items, dto.TravelRequestResponse{
			ID:              request.ID,
			OriginCity:      request.OriginCity,
			DestinationCity: request.DestinationCity,
			DepartureDate:   request.DepartureDate,
			ReturnDate:      request.ReturnDate,
			Justification:   request.Justification,
			Status:          request.Status,
			CreatedAt:       request.CreatedAt,
			UserName:        request.UserName,
			UserEmail:       request.UserEmail,
		})
	}
	return items
}
