package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"jobdesk/api/internal/apperrors"
	"jobdesk/api/internal/ids"
	"jobdesk/api/internal/models"
	"jobdesk/api/internal/repository"
	"jobdesk/api/internal/security"
)

// ApplicationStore is the slice of the application repository the
// workflow needs.
type ApplicationStore interface {
	Create(ctx context.Context, app models.Application) (models.Application, error)
	GetByID(ctx context.Context, id string) (models.Application, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) (models.Application, error)
	ListByCandidate(ctx context.Context, candidateID string, limit, offset int) ([]models.Application, int, error)
	ListByJob(ctx context.Context, jobID string, limit, offset int) ([]models.Application, int, error)
}

type ApplicationService struct {
	applications ApplicationStore
	jobs         JobStore
	log          zerolog.Logger
}

func NewApplicationService(applications ApplicationStore, jobs JobStore, log zerolog.Logger) *ApplicationService {
	return &ApplicationService{applications: applications, jobs: jobs, log: log}
}

type ApplyInput struct {
	JobID       string
	Resume      string
	CoverLetter string
}

// Apply creates an application in status Applied. The unique
// (candidate, job) index decides the winner of a concurrent double
// apply; the loser gets Conflict.
func (s *ApplicationService) Apply(ctx context.Context, actor security.Identity, input ApplyInput) (models.Application, error) {
	if actor.Role != models.UserRoleCandidate {
		return models.Application{}, apperrors.Forbidden("only candidates can apply for jobs")
	}

	if _, err := s.jobs.GetByID(ctx, input.JobID); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return models.Application{}, apperrors.NotFound("job not found")
		}
		return models.Application{}, err
	}

	app, err := s.applications.Create(ctx, models.Application{
		ID:          ids.New(),
		CandidateID: actor.Subject,
		JobID:       input.JobID,
		Status:      models.ApplicationStatusApplied,
		Resume:      input.Resume,
		CoverLetter: input.CoverLetter,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateApplication) {
			return models.Application{}, apperrors.Conflict("already applied for this job")
		}
		return models.Application{}, err
	}

	s.log.Info().Str("application_id", app.ID).Str("job_id", input.JobID).Msg("application created")
	return app, nil
}

// UpdateStatus progresses an application. Allowed for admin or the
// recruiter who owns the underlying job.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor security.Identity, appID, newStatus string) (models.Application, error) {
	if !models.ValidApplicationStatus(newStatus) {
		return models.Application{}, apperrors.ValidationField("status", "invalid application status")
	}

	app, err := s.applications.GetByID(ctx, appID)
	if err != nil {
		return models.Application{}, applicationError(err)
	}

	job, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return models.Application{}, transitionError(err)
	}

	isOwner := actor.Role == models.UserRoleRecruiter && actor.Subject == job.CreatedBy
	if actor.Role != models.UserRoleAdmin && !isOwner {
		return models.Application{}, apperrors.Forbidden("not authorized to update this application")
	}

	return s.applications.UpdateStatus(ctx, appID, models.ApplicationStatus(newStatus))
}

// Withdraw sets the candidate's own application to Withdrawn. There is
// deliberately no terminal-state check before withdrawing: a Hired
// application can still be withdrawn, matching long-standing behavior.
func (s *ApplicationService) Withdraw(ctx context.Context, actor security.Identity, appID string) (models.Application, error) {
	app, err := s.applications.GetByID(ctx, appID)
	if err != nil {
		return models.Application{}, applicationError(err)
	}

	if actor.Subject != app.CandidateID {
		return models.Application{}, apperrors.Forbidden("not authorized to withdraw this application")
	}

	return s.applications.UpdateStatus(ctx, appID, models.ApplicationStatusWithdrawn)
}

func (s *ApplicationService) ListMine(ctx context.Context, actor security.Identity, page, limit int) ([]models.Application, Pagination, error) {
	page, limit = clampPage(page, limit)
	apps, total, err := s.applications.ListByCandidate(ctx, actor.Subject, limit, (page-1)*limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	return apps, newPagination(page, limit, total), nil
}

// ListByJob exposes a job's applications to its owner or an admin.
func (s *ApplicationService) ListByJob(ctx context.Context, actor security.Identity, jobID string, page, limit int) ([]models.Application, Pagination, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, Pagination{}, transitionError(err)
	}
	if actor.Role != models.UserRoleAdmin && actor.Subject != job.CreatedBy {
		return nil, Pagination{}, apperrors.Forbidden("not authorized to view these applications")
	}

	page, limit = clampPage(page, limit)
	apps, total, err := s.applications.ListByJob(ctx, jobID, limit, (page-1)*limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	return apps, newPagination(page, limit, total), nil
}

func applicationError(err error) error {
	if errors.Is(err, repository.ErrApplicationNotFound) {
		return apperrors.NotFound("application not found")
	}
	return err
}
