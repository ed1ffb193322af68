package dto

import (
	"time"

	"github.com/spec-kit/travel-request-service/internal/domain"
)

// CreateTravelRequest payload.
type CreateTravelRequest struct {
	OriginCity      string    `json:"originCity"`
	DestinationCity string    `json:"destinationCity"`
	DepartureDate   time.Time `json:"departureDate"`
	ReturnDate      time.Time `json:"returnDate"`
	Justification   string    `json:"justification"`
}

// UpdateStatusRequest payload for approver decisions.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// TravelRequestResponse is a request joined with its owner's public fields.
type TravelRequestResponse struct {
	ID              int64                `json:"id"`
	OriginCity      string               `json:"originCity"`
	DestinationCity string               `json:"destinationCity"`
	DepartureDate   time.Time            `json:"departureDate"`
	ReturnDate      time.Time            `json:"returnDate"`
	Justification   string               `json:"justification"`
	Status          domain.RequestStatus `json:"status"`
	CreatedAt       time.Time            `json:"createdAt"`
	UserName        string               `json:"userName"`
	UserEmail       string               `json:"userEmail"`
}
