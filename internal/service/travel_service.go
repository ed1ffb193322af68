package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/travel-request-service/internal/domain"
	"github.com/spec-kit/travel-request-service/internal/events"
	"github.com/spec-kit/travel-request-service/internal/repository"
	apperrors "github.com/spec-kit/travel-request-service/pkg/util"
)

const (
	maxCityLength          = 100
	maxJustificationLength = 500
)

// TravelRequestInput carries the fields for a new travel request.
type TravelRequestInput struct {
	OriginCity      string
	DestinationCity string
	DepartureDate   time.Time
	ReturnDate      time.Time
	Justification   string
}

// TravelService validates and persists trip requests and status decisions.
type TravelService struct {
	requests   repository.TravelRequestRepository
	dispatcher events.Dispatcher
}

// NewTravelService builds the service.
func NewTravelService(requests repository.TravelRequestRepository, dispatcher events.Dispatcher) *TravelService {
	return &TravelService{requests: requests, dispatcher: dispatcher}
}

// Create validates the trip and persists it as Pending, owned by ownerID.
func (s *TravelService) Create(ctx context.Context, ownerID int64, input TravelRequestInput) (string, error) {
	if err := validateInput(input); err != nil {
		return "", err
	}
	if strings.EqualFold(input.OriginCity, input.DestinationCity) {
		return "", apperrors.NewValidationError("origin city cannot equal destination city", nil)
	}
	if !input.ReturnDate.After(input.DepartureDate) {
		return "", apperrors.NewValidationError("return date must be after departure date", nil)
	}
	if !input.DepartureDate.After(time.Now()) {
		return "", apperrors.NewValidationError("departure date must be in the future", nil)
	}

	request := &domain.TravelRequest{
		OriginCity:      input.OriginCity,
		DestinationCity: input.DestinationCity,
		DepartureDate:   input.DepartureDate,
		ReturnDate:      input.ReturnDate,
		Justification:   input.Justification,
		Status:          domain.RequestStatusPending,
		UserID:          ownerID,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return "", apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:   events.EventTravelRequestCreated,
		UserID: ownerID,
		Payload: events.TravelRequestCreatedPayload{
			RequestID:       request.ID,
			OriginCity:      request.OriginCity,
			DestinationCity: request.DestinationCity,
			DepartureDate:   request.DepartureDate,
		},
	})
	return "Travel request created successfully", nil
}

// ListMine returns the owner's requests, newest first.
func (s *TravelService) ListMine(ctx context.Context, ownerID int64) ([]repository.TravelRequestWithOwner, error) {
	requests, err := s.requests.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return requests, nil
}

// ListAll returns every request, newest first. Authorization is enforced at
// the boundary.
func (s *TravelService) ListAll(ctx context.Context) ([]repository.TravelRequestWithOwner, error) {
	requests, err := s.requests.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return requests, nil
}

// UpdateStatus records an approver's decision. The new status overwrites the
// stored one unconditionally; re-deciding an already decided request is not
// rejected here.
func (s *TravelService) UpdateStatus(ctx context.Context, requestID int64, newStatus string) (string, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", apperrors.NewNotFound("travel request", nil)
		}
		return "", apperrors.MapError(err)
	}

	status := domain.RequestStatus(newStatus)
	if !status.IsDecision() {
		return "", apperrors.NewValidationError("status must be 'Approved' or 'Rejected'", nil)
	}

	if err := s.requests.UpdateStatus(ctx, request.ID, status); err != nil {
		return "", apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:   events.EventTravelRequestDecided,
		UserID: request.UserID,
		Payload: events.TravelRequestDecidedPayload{
			RequestID: request.ID,
			NewStatus: status,
		},
	})
	return fmt.Sprintf("Travel request %s successfully", strings.ToLower(newStatus)), nil
}

func validateInput(input TravelRequestInput) error {
	if strings.TrimSpace(input.OriginCity) == "" || strings.TrimSpace(input.DestinationCity) == "" {
		return apperrors.NewValidationError("origin and destination cities are required", nil)
	}
	if len(input.OriginCity) > maxCityLength || len(input.DestinationCity) > maxCityLength {
		return apperrors.NewValidationError("city names exceed 100 characters", nil)
	}
	if len(input.Justification) > maxJustificationLength {
		return apperrors.NewValidationError("justification exceeds 500 characters", nil)
	}
	return nil
}

func (s *TravelService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
