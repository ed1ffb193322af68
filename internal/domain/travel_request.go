package domain

import "time"

// RequestStatus enumerates lifecycle states for travel requests.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "Pending"
	RequestStatusApproved RequestStatus = "Approved"
	RequestStatusRejected RequestStatus = "Rejected"
)

// IsDecision reports whether the status is one an approver may set.
func (s RequestStatus) IsDecision() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// TravelRequest is the aggregate for employee trip submissions.
type TravelRequest struct {
	ID              int64
	OriginCity      string
	DestinationCity string
	DepartureDate   time.Time
	ReturnDate      time.Time
	Justification   string
	Status          RequestStatus
	CreatedAt       time.Time
	UserID          int64
}
