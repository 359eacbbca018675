package models

import "time"

type ApplicationStatus string

const (
	ApplicationStatusApplied     ApplicationStatus = "Applied"
	ApplicationStatusReviewed    ApplicationStatus = "Reviewed"
	ApplicationStatusShortlisted ApplicationStatus = "Shortlisted"
	ApplicationStatusInterview   ApplicationStatus = "Interview"
	ApplicationStatusHired       ApplicationStatus = "Hired"
	ApplicationStatusRejected    ApplicationStatus = "Rejected"
	ApplicationStatusWithdrawn   ApplicationStatus = "Withdrawn"
)

func ValidApplicationStatus(v string) bool {
	switch ApplicationStatus(v) {
	case ApplicationStatusApplied, ApplicationStatusReviewed, ApplicationStatusShortlisted,
		ApplicationStatusInterview, ApplicationStatusHired, ApplicationStatusRejected,
		ApplicationStatusWithdrawn:
		return true
	}
	return false
}

type Application struct {
	ID          string
	CandidateID string
	JobID       string
	Status      ApplicationStatus
	Resume      string
	CoverLetter string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
