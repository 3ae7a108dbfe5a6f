package domain

import (
	"fmt"
	"time"
)

// Role enumerates account roles.
type Role string

const (
	RoleElderly   Role = "ELDERLY"
	RoleVolunteer Role = "VOLUNTEER"
	RoleCaregiver Role = "CAREGIVER"
	RoleAdmin     Role = "ADMIN"
)

// ParseRole validates a raw role string against the closed set.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleElderly, RoleVolunteer, RoleCaregiver, RoleAdmin:
		return Role(raw), nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// Moderatable reports whether the role is subject to suspension and
// deactivation. Caregivers are always active and admins are never targets.
func (r Role) Moderatable() bool {
	return r == RoleElderly || r == RoleVolunteer
}

// AccountStatus enumerates lifecycle states for accounts.
type AccountStatus string

const (
	AccountStatusActive      AccountStatus = "ACTIVE"
	AccountStatusSuspended   AccountStatus = "SUSPENDED"
	AccountStatusDeactivated AccountStatus = "DEACTIVATED"
)

// SuspensionDurations lists the only permitted suspension lengths in days.
var SuspensionDurations = []int{7, 30, 90}

// ValidSuspensionDuration reports membership in the allowed duration set.
func ValidSuspensionDuration(days int) bool {
	for _, d := range SuspensionDurations {
		if d == days {
			return true
		}
	}
	return false
}

// Account is the aggregate for every participant: elderly users,
// volunteers, caregivers and administrators.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Status       AccountStatus
	Phone        string
	Address      string

	// Rating aggregate, maintained as a running mean on review creation.
	RatingAvg   float64
	RatingCount int

	// Suspension fields, set only while Status==SUSPENDED.
	SuspensionReason *string
	SuspendedAt      *time.Time
	SuspensionDays   *int
	SuspensionEnd    *time.Time

	// Deactivation fields, set only while Status==DEACTIVATED.
	DeactivationReason *string
	DeactivatedAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SuspensionExpired reports whether a suspended account's window has passed.
func (a *Account) SuspensionExpired(now time.Time) bool {
	return a.Status == AccountStatusSuspended && a.SuspensionEnd != nil && now.After(*a.SuspensionEnd)
}
