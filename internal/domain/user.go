package domain

import (
	"fmt"
	"time"
)

// Role enumerates the access levels a user can hold.
type Role string

const (
	RoleRequester Role = "Requester"
	RoleApprover  Role = "Approver"
)

// ParseRole validates a role string; an empty value defaults to Requester.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleRequester, RoleApprover:
		return Role(raw), nil
	case "":
		return RoleRequester, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// User is the domain model for employees using the system.
// ResetCode and ResetCodeExpiresAt are either both set or both nil.
type User struct {
	ID                 int64
	Name               string
	Email              string
	PasswordHash       string
	Role               Role
	CreatedAt          time.Time
	ResetCode          *string
	ResetCodeExpiresAt *time.Time
}
