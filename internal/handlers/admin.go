package handlers

import (
	"github.com/gin-gonic/gin"

	"jobdesk/api/internal/apperrors"
	"jobdesk/api/internal/middleware"
	"jobdesk/api/internal/models"
)

func (h HandlerSet) ApproveJob(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.fail(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	job, err := h.jobService.Approve(c.Request.Context(), identity, c.Param("jobId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, toJobResponse(job), "job approved successfully")
}

type rejectJobRequest struct {
	Reason string `json:"reason"`
}

func (h HandlerSet) RejectJob(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.fail(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	var req rejectJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	job, err := h.jobService.Reject(c.Request.Context(), identity, c.Param("jobId"), req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, toJobResponse(job), "job rejected")
}

func (h HandlerSet) PendingJobs(c *gin.Context) {
	h.adminJobList(c, []models.JobStatus{models.JobStatusPending})
}

func (h HandlerSet) ApprovedJobs(c *gin.Context) {
	h.adminJobList(c, []models.JobStatus{models.JobStatusApproved})
}

func (h HandlerSet) AllJobs(c *gin.Context) {
	h.adminJobList(c, nil)
}

func (h HandlerSet) adminJobList(c *gin.Context, statuses []models.JobStatus) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.fail(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	jobs, pagination, err := h.jobService.ListForAdmin(c.Request.Context(), identity, statuses, listInputFromQuery(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.list(c, toJobResponses(jobs), pagination)
}

func (h HandlerSet) ListUsers(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.fail(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	page, limit := pageQuery(c)
	users, pagination, err := h.userService.List(c.Request.Context(), identity, page, limit)
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, user := range users {
		out = append(out, toUserResponse(user))
	}
	h.list(c, out, pagination)
}

type suspendUserRequest struct {
	Suspended *bool `json:"suspended"`
}

func (h HandlerSet) SuspendUser(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.fail(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	// Missing body or field defaults to suspending.
	suspended := true
	var req suspendUserRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.Suspended != nil {
		suspended = *req.Suspended
	}

	user, err := h.userService.SetSuspended(c.Request.Context(), identity, c.Param("id"), suspended)
	if err != nil {
		h.fail(c, err)
		return
	}

	message := "user suspended"
	if !suspended {
		message = "user unsuspended"
	}
	h.ok(c, toUserResponse(user), message)
}
