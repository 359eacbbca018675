package models

import "time"

type JobStatus string

const (
	JobStatusPending  JobStatus = "pending"
	JobStatusApproved JobStatus = "approved"
	JobStatusRejected JobStatus = "rejected"
	JobStatusClosed   JobStatus = "closed"
)

// Terminal reports whether no further transition is defined from s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusRejected || s == JobStatusClosed
}

var jobTypes = map[string]struct{}{
	"full-time":  {},
	"part-time":  {},
	"contract":   {},
	"internship": {},
	"freelance":  {},
}

var experienceLevels = map[string]struct{}{
	"entry":     {},
	"mid-level": {},
	"senior":    {},
	"lead":      {},
	"executive": {},
}

func ValidJobType(v string) bool {
	_, ok := jobTypes[v]
	return ok
}

func ValidExperienceLevel(v string) bool {
	_, ok := experienceLevels[v]
	return ok
}

// StatusChange is one entry of a job's append-only audit trail.
type StatusChange struct {
	Status    JobStatus
	ChangedBy string
	ChangedAt time.Time
	Reason    string
}

type Job struct {
	ID              string
	Title           string
	Description     string
	Requirements    []string
	Location        string
	JobType         string
	Salary          *int64
	ExperienceLevel string
	Skills          []string
	CreatedBy       string
	CompanyID       string
	Status          JobStatus
	IsApproved      bool
	RejectionReason string
	StatusHistory   []StatusChange
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectedBy      *string
	RejectedAt      *time.Time
	ClosedBy        *string
	ClosedAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
