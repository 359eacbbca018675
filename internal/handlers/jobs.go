package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"jobdesk/api/internal/apperrors"
	"jobdesk/api/internal/middleware"
	"jobdesk/api/internal/models"
	"jobdesk/api/internal/security"
	"jobdesk/api/internal/service"
)

type statusChangeResponse struct {
	Status    string `json:"status"`
	ChangedBy string `json:"changedBy"`
	ChangedAt string `json:"changedAt"`
	Reason    string `json:"reason,omitempty"`
}

type jobResponse struct {
	ID              string                 `json:"id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Requirements    []string               `json:"requirements,omitempty"`
	Location        string                 `json:"location"`
	JobType         string                 `json:"jobType"`
	Salary          *int64                 `json:"salary,omitempty"`
	ExperienceLevel string                 `json:"experienceLevel"`
	Skills          []string               `json:"skills,omitempty"`
	CreatedBy       string                 `json:"createdBy"`
	CompanyID       string                 `json:"companyId,omitempty"`
	Status          string                 `json:"status"`
	IsApproved      bool                   `json:"isApproved"`
	RejectionReason string                 `json:"rejectionReason,omitempty"`
	StatusHistory   []statusChangeResponse `json:"statusHistory,omitempty"`
	ApprovedBy      *string                `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time             `json:"approvedAt,omitempty"`
	RejectedBy      *string                `json:"rejectedBy,omitempty"`
	RejectedAt      *time.Time             `json:"rejectedAt,omitempty"`
	ClosedBy        *string                `json:"closedBy,omitempty"`
	ClosedAt        *time.Time             `json:"closedAt,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

func toJobResponse(job models.Job) jobResponse {
	history := make([]statusChangeResponse, 0, len(job.StatusHistory))
	for _, change := range job.StatusHistory {
		history = append(history, statusChangeResponse{
			Status:    string(change.Status),
			ChangedBy: change.ChangedBy,
			ChangedAt: change.ChangedAt.UTC().Format(time.RFC3339),
			Reason:    change.Reason,
		})
	}

	return jobResponse{
		ID:              job.ID,
		Title:           job.Title,
		Description:     job.Description,
		Requirements:    job.Requirements,
		Location:        job.Location,
		JobType:         job.JobType,
		Salary:          job.Salary,
		ExperienceLevel: job.ExperienceLevel,
		Skills:          job.Skills,
		CreatedBy:       job.CreatedBy,
		CompanyID:       job.CompanyID,
		Status:          string(job.Status),
		IsApproved:      job.IsApproved,
		RejectionReason: job.RejectionReason,
		StatusHistory:   history,
		ApprovedBy:      job.ApprovedBy,
		ApprovedAt:      job.ApprovedAt,
		RejectedBy:      job.RejectedBy,
		RejectedAt:      job.RejectedAt,
		ClosedBy:        job.ClosedBy,
		ClosedAt:        job.ClosedAt,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
	}
}

func toJobResponses(jobs []models.Job) []jobResponse {
	out := make([]jobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, toJobResponse(job))
	}
	return out
}

type createJobRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Requirements    []string `json:"requirements"`
	Location        string   `json:"location"`
	JobType         string   `json:"jobType"`
	Salary          *int64   `json:"salary"`
	ExperienceLevel string   `json:"experienceLevel"`
	Skills          []string `json:"skills"`
	CompanyID       string   `json:"companyId"`
}

func (h HandlerSet) CreateJob(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.fail(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	job, err := h.jobService.Create(c.Request.Context(), identity, service.CreateJobInput{
		Title:           req.Title,
		Description:     req.Description,
		Requirements:    req.Requirements,
		Location:        req.Location,
		JobType:         req.JobType,
		Salary:          req.Salary,
		ExperienceLevel: req.ExperienceLevel,
		Skills:          req.Skills,
		CompanyID:       req.CompanyID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.created(c, toJobResponse(job), "job created and pending approval")
}

func (h HandlerSet) GetJob(c *gin.Context) {
	var actor *security.Identity
	if identity, ok := middleware.IdentityFrom(c); ok {
		actor = &identity
	}

	job, err := h.jobService.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, toJobResponse(job), "")
}

type updateJobRequest struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	Requirements    []string `json:"requirements"`
	Location        *string  `json:"location"`
	JobType         *string  `json:"jobType"`
	Salary          *int64   `json:"salary"`
	ExperienceLevel *string  `json:"experienceLevel"`
	Skills          []string `json:"skills"`
}

func (h HandlerSet) UpdateJob(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.fail(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	var req updateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	job, err := h.jobService.Update(c.Request.Context(), identity, c.Param("id"), service.UpdateJobInput{
		Title:           req.Title,
		Description:     req.Description,
		Requirements:    req.Requirements,
		Location:        req.Location,
		JobType:         req.JobType,
		Salary:          req.Salary,
		ExperienceLevel: req.ExperienceLevel,
		Skills:          req.Skills,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, toJobResponse(job), "job updated successfully")
}

func (h HandlerSet) DeleteJob(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.fail(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	if err := h.jobService.Delete(c.Request.Context(), identity, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, nil, "job deleted successfully")
}

func (h HandlerSet) CloseJob(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.fail(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	job, err := h.jobService.Close(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, toJobResponse(job), "job closed successfully")
}

func listInputFromQuery(c *gin.Context) service.ListJobsInput {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	return service.ListJobsInput{
		Search:           c.Query("search"),
		Location:         c.Query("location"),
		JobTypes:         splitCSV(c.Query("jobType")),
		ExperienceLevels: splitCSV(c.Query("experienceLevel")),
		Page:             page,
		Limit:            limit,
	}
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (h HandlerSet) ListJobs(c *gin.Context) {
	jobs, pagination, err := h.jobService.ListPublic(c.Request.Context(), listInputFromQuery(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.list(c, toJobResponses(jobs), pagination)
}

func (h HandlerSet) MyJobs(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.fail(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	jobs, pagination, err := h.jobService.ListMine(c.Request.Context(), identity, listInputFromQuery(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.list(c, toJobResponses(jobs), pagination)
}
