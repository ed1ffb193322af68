package events

import (
	"time"

	"github.com/spec-kit/travel-request-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered         EventType = "user_registered"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventTravelRequestCreated   EventType = "travel_request_created"
	EventTravelRequestDecided   EventType = "travel_request_decided"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    int64       `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// PasswordResetRequestedPayload payload.
type PasswordResetRequestedPayload struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TravelRequestCreatedPayload payload.
type TravelRequestCreatedPayload struct {
	RequestID       int64     `json:"request_id"`
	OriginCity      string    `json:"origin_city"`
	DestinationCity string    `json:"destination_city"`
	DepartureDate   time.Time `json:"departure_date"`
}

// TravelRequestDecidedPayload payload.
type TravelRequestDecidedPayload struct {
	RequestID int64                `json:"request_id"`
	NewStatus domain.RequestStatus `json:"new_status"`
}
