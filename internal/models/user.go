package models

import (
	"strings"
	"time"
)

type UserRole string

const (
	UserRoleCandidate UserRole = "candidate"
	UserRoleRecruiter UserRole = "recruiter"
	UserRoleAdmin     UserRole = "admin"
)

// ParseRole normalizes a free-form role string into the closed enum.
// Comparison is case-insensitive; everything downstream uses the enum.
func ParseRole(raw string) (UserRole, bool) {
	switch UserRole(strings.ToLower(strings.TrimSpace(raw))) {
	case UserRoleCandidate:
		return UserRoleCandidate, true
	case UserRoleRecruiter:
		return UserRoleRecruiter, true
	case UserRoleAdmin:
		return UserRoleAdmin, true
	}
	return "", false
}

type User struct {
	ID              string
	Name            string
	Email           string
	PasswordHash    []byte
	Role            UserRole
	IsSuspended     bool
	IsEmailVerified bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Profile carries the role-specific registration fields. Candidates
// require a phone; recruiters additionally require designation and agency.
type Profile struct {
	ID          string
	UserID      string
	Phone       string
	Designation string
	Agency      string
	Skills      []string
	ResumeKey   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
