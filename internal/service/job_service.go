package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"jobdesk/api/internal/apperrors"
	"jobdesk/api/internal/ids"
	"jobdesk/api/internal/models"
	"jobdesk/api/internal/repository"
	"jobdesk/api/internal/security"
)

// JobStore is the slice of the job repository the status machine needs.
type JobStore interface {
	Create(ctx context.Context, job models.Job) (models.Job, error)
	GetByID(ctx context.Context, id string) (models.Job, error)
	Transition(ctx context.Context, p repository.TransitionParams) (models.Job, error)
	UpdateFields(ctx context.Context, job models.Job) (models.Job, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f repository.JobFilter) ([]models.Job, int, error)
}

// ListCache is the optional read-through cache for public listings.
// It is best-effort only; a miss or failure falls through to the store.
type ListCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

type JobService struct {
	jobs  JobStore
	cache ListCache
	log   zerolog.Logger
}

func NewJobService(jobs JobStore, cache ListCache, log zerolog.Logger) *JobService {
	return &JobService{jobs: jobs, cache: cache, log: log}
}

type CreateJobInput struct {
	Title           string
	Description     string
	Requirements    []string
	Location        string
	JobType         string
	Salary          *int64
	ExperienceLevel string
	Skills          []string
	CompanyID       string
}

func validateJobShape(input CreateJobInput) error {
	if len(strings.TrimSpace(input.Title)) < 5 {
		return apperrors.ValidationField("title", "title must be at least 5 characters")
	}
	if len(strings.TrimSpace(input.Description)) < 20 {
		return apperrors.ValidationField("description", "description must be at least 20 characters")
	}
	if strings.TrimSpace(input.Location) == "" {
		return apperrors.ValidationField("location", "location is required")
	}
	if !models.ValidJobType(input.JobType) {
		return apperrors.ValidationField("jobType", "invalid job type")
	}
	if !models.ValidExperienceLevel(input.ExperienceLevel) {
		return apperrors.ValidationField("experienceLevel", "invalid experience level")
	}
	return nil
}

// Create inserts a job in status pending. Only admins and recruiters may
// post; candidates get Forbidden before any validation runs.
func (s *JobService) Create(ctx context.Context, actor security.Identity, input CreateJobInput) (models.Job, error) {
	if actor.Role != models.UserRoleAdmin && actor.Role != models.UserRoleRecruiter {
		return models.Job{}, apperrors.Forbiddenf("required role: admin or recruiter, but user has role: %s", actor.Role)
	}
	if err := validateJobShape(input); err != nil {
		return models.Job{}, err
	}

	job := models.Job{
		ID:              ids.New(),
		Title:           strings.TrimSpace(input.Title),
		Description:     strings.TrimSpace(input.Description),
		Requirements:    input.Requirements,
		Location:        strings.TrimSpace(input.Location),
		JobType:         input.JobType,
		Salary:          input.Salary,
		ExperienceLevel: input.ExperienceLevel,
		Skills:          input.Skills,
		CreatedBy:       actor.Subject,
		CompanyID:       input.CompanyID,
	}

	created, err := s.jobs.Create(ctx, job)
	if err != nil {
		return models.Job{}, err
	}

	s.log.Info().Str("job_id", created.ID).Str("created_by", actor.Subject).Msg("job created")
	return created, nil
}

// Approve moves pending → approved. Admin only.
func (s *JobService) Approve(ctx context.Context, actor security.Identity, jobID string) (models.Job, error) {
	if actor.Role != models.UserRoleAdmin {
		return models.Job{}, apperrors.Forbidden("only admin can approve jobs")
	}

	job, err := s.jobs.Transition(ctx, repository.TransitionParams{
		JobID:    jobID,
		Expected: models.JobStatusPending,
		Next:     models.JobStatusApproved,
		ActorID:  actor.Subject,
		Reason:   "approved by admin",
	})
	if err != nil {
		return models.Job{}, transitionError(err)
	}

	s.log.Info().Str("job_id", jobID).Str("approved_by", actor.Subject).Msg("job approved")
	return job, nil
}

// Reject moves pending → rejected. Admin only; the reason is mandatory
// and validated before any state is touched.
func (s *JobService) Reject(ctx context.Context, actor security.Identity, jobID, reason string) (models.Job, error) {
	if actor.Role != models.UserRoleAdmin {
		return models.Job{}, apperrors.Forbidden("only admin can reject jobs")
	}
	reason = strings.TrimSpace(reason)
	if len(reason) < 5 {
		return models.Job{}, apperrors.ValidationField("reason", "rejection reason must be at least 5 characters")
	}

	job, err := s.jobs.Transition(ctx, repository.TransitionParams{
		JobID:    jobID,
		Expected: models.JobStatusPending,
		Next:     models.JobStatusRejected,
		ActorID:  actor.Subject,
		Reason:   reason,
	})
	if err != nil {
		return models.Job{}, transitionError(err)
	}

	s.log.Info().Str("job_id", jobID).Str("rejected_by", actor.Subject).Msg("job rejected")
	return job, nil
}

// Close moves approved → closed. Allowed for admin or the owning
// recruiter; the history reason records which of the two closed it.
func (s *JobService) Close(ctx context.Context, actor security.Identity, jobID string) (models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return models.Job{}, transitionError(err)
	}

	isOwner := actor.Role == models.UserRoleRecruiter && actor.Subject == job.CreatedBy
	isAdmin := actor.Role == models.UserRoleAdmin
	if !isOwner && !isAdmin {
		return models.Job{}, apperrors.Forbidden("not authorized to close this job")
	}

	reason := "closed by owner"
	if isAdmin {
		reason = "closed by admin"
	}

	closed, err := s.jobs.Transition(ctx, repository.TransitionParams{
		JobID:    jobID,
		Expected: models.JobStatusApproved,
		Next:     models.JobStatusClosed,
		ActorID:  actor.Subject,
		Reason:   reason,
	})
	if err != nil {
		return models.Job{}, transitionError(err)
	}

	s.log.Info().Str("job_id", jobID).Str("closed_by", actor.Subject).Msg("job closed")
	return closed, nil
}

func transitionError(err error) error {
	switch {
	case errors.Is(err, repository.ErrJobNotFound):
		return apperrors.NotFound("job not found")
	case errors.Is(err, repository.ErrStatusConflict):
		return apperrors.Conflict("job is not in the expected status")
	default:
		return err
	}
}

type UpdateJobInput struct {
	Title           *string
	Description     *string
	Requirements    []string
	Location        *string
	JobType         *string
	Salary          *int64
	ExperienceLevel *string
	Skills          []string
}

// Update applies owner edits to listing fields. Lifecycle columns are
// out of reach here; transitions go through the status machine only.
func (s *JobService) Update(ctx context.Context, actor security.Identity, jobID string, input UpdateJobInput) (models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return models.Job{}, transitionError(err)
	}
	if err := requireOwnerOrAdmin(actor, job.CreatedBy); err != nil {
		return models.Job{}, err
	}

	if input.Title != nil {
		job.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		job.Description = strings.TrimSpace(*input.Description)
	}
	if input.Requirements != nil {
		job.Requirements = input.Requirements
	}
	if input.Location != nil {
		job.Location = strings.TrimSpace(*input.Location)
	}
	if input.JobType != nil {
		job.JobType = *input.JobType
	}
	if input.Salary != nil {
		job.Salary = input.Salary
	}
	if input.ExperienceLevel != nil {
		job.ExperienceLevel = *input.ExperienceLevel
	}
	if input.Skills != nil {
		job.Skills = input.Skills
	}

	if err := validateJobShape(CreateJobInput{
		Title:           job.Title,
		Description:     job.Description,
		Location:        job.Location,
		JobType:         job.JobType,
		ExperienceLevel: job.ExperienceLevel,
	}); err != nil {
		return models.Job{}, err
	}

	return s.jobs.UpdateFields(ctx, job)
}

func (s *JobService) Delete(ctx context.Context, actor security.Identity, jobID string) error {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return transitionError(err)
	}
	if err := requireOwnerOrAdmin(actor, job.CreatedBy); err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, jobID); err != nil {
		return transitionError(err)
	}
	return nil
}

func requireOwnerOrAdmin(actor security.Identity, ownerID string) error {
	if actor.Role == models.UserRoleAdmin || actor.Subject == ownerID {
		return nil
	}
	return apperrors.Forbidden("not authorized to modify this job")
}

// Get returns a single job. Non-approved jobs are visible only to admin
// and the creating recruiter; everyone else sees NotFound rather than a
// hint that a hidden job exists.
func (s *JobService) Get(ctx context.Context, actor *security.Identity, jobID string) (models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return models.Job{}, transitionError(err)
	}

	if job.Status == models.JobStatusApproved && job.IsApproved {
		return job, nil
	}
	if actor != nil && (actor.Role == models.UserRoleAdmin || actor.Subject == job.CreatedBy) {
		return job, nil
	}
	return models.Job{}, apperrors.NotFound("job not found")
}

type ListJobsInput struct {
	Search           string
	Location         string
	JobTypes         []string
	ExperienceLevels []string
	Page             int
	Limit            int
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func newPagination(page, limit, total int) Pagination {
	return Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}
}

type jobPage struct {
	Jobs       []models.Job
	Pagination Pagination
}

// ListPublic serves the unauthenticated read path: approved jobs only,
// optionally through the response cache. The cache is never load-bearing.
func (s *JobService) ListPublic(ctx context.Context, input ListJobsInput) ([]models.Job, Pagination, error) {
	key := publicListCacheKey(input)
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var page jobPage
			if err := json.Unmarshal(raw, &page); err == nil {
				return page.Jobs, page.Pagination, nil
			}
		}
	}

	jobs, pagination, err := s.list(ctx, input, repository.JobFilter{
		Statuses:     []models.JobStatus{models.JobStatusApproved},
		ApprovedOnly: true,
	})
	if err != nil {
		return nil, Pagination{}, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(jobPage{Jobs: jobs, Pagination: pagination}); err == nil {
			s.cache.Set(ctx, key, raw, 30*time.Second)
		}
	}
	return jobs, pagination, nil
}

func publicListCacheKey(input ListJobsInput) string {
	return fmt.Sprintf("jobs:public:%s|%s|%s|%s|%d|%d",
		input.Search, input.Location,
		strings.Join(input.JobTypes, ","), strings.Join(input.ExperienceLevels, ","),
		input.Page, input.Limit)
}

// ListMine is the recruiter "my jobs" view: own postings in any status.
func (s *JobService) ListMine(ctx context.Context, actor security.Identity, input ListJobsInput) ([]models.Job, Pagination, error) {
	if actor.Role != models.UserRoleRecruiter && actor.Role != models.UserRoleAdmin {
		return nil, Pagination{}, apperrors.Forbidden("only recruiters can list their jobs")
	}
	return s.list(ctx, input, repository.JobFilter{CreatedBy: actor.Subject})
}

// ListForAdmin queries across any status set; empty statuses means all.
func (s *JobService) ListForAdmin(ctx context.Context, actor security.Identity, statuses []models.JobStatus, input ListJobsInput) ([]models.Job, Pagination, error) {
	if actor.Role != models.UserRoleAdmin {
		return nil, Pagination{}, apperrors.Forbidden("only admin can list jobs across statuses")
	}
	return s.list(ctx, input, repository.JobFilter{Statuses: statuses})
}

func (s *JobService) list(ctx context.Context, input ListJobsInput, base repository.JobFilter) ([]models.Job, Pagination, error) {
	base.Search = strings.TrimSpace(input.Search)
	base.Location = strings.TrimSpace(input.Location)
	base.JobTypes = input.JobTypes
	base.ExperienceLevels = input.ExperienceLevels

	page, limit := clampPage(input.Page, input.Limit)
	base.Limit = limit
	base.Offset = (page - 1) * limit

	jobs, total, err := s.jobs.List(ctx, base)
	if err != nil {
		return nil, Pagination{}, err
	}
	return jobs, newPagination(page, limit, total), nil
}
