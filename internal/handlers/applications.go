package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"jobdesk/api/internal/apperrors"
	"jobdesk/api/internal/middleware"
	"jobdesk/api/internal/models"
	"jobdesk/api/internal/service"
)

type applicationResponse struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidateId"`
	JobID       string    `json:"jobId"`
	Status      string    `json:"status"`
	Resume      string    `json:"resume,omitempty"`
	CoverLetter string    `json:"coverLetter,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toApplicationResponse(app models.Application) applicationResponse {
	return applicationResponse{
		ID:          app.ID,
		CandidateID: app.CandidateID,
		JobID:       app.JobID,
		Status:      string(app.Status),
		Resume:      app.Resume,
		CoverLetter: app.CoverLetter,
		CreatedAt:   app.CreatedAt,
		UpdatedAt:   app.UpdatedAt,
	}
}

func toApplicationResponses(apps []models.Application) []applicationResponse {
	out := make([]applicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, toApplicationResponse(app))
	}
	return out
}

type applyRequest struct {
	JobID       string `json:"jobId"`
	Resume      string `json:"resume"`
	CoverLetter string `json:"coverLetter"`
}

func (h HandlerSet) Apply(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.fail(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if req.JobID == "" {
		h.fail(c, apperrors.ValidationField("jobId", "jobId is required"))
		return
	}

	app, err := h.appService.Apply(c.Request.Context(), identity, service.ApplyInput{
		JobID:       req.JobID,
		Resume:      req.Resume,
		CoverLetter: req.CoverLetter,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.created(c, toApplicationResponse(app), "application submitted")
}

type updateApplicationRequest struct {
	Status string `json:"status"`
}

func (h HandlerSet) UpdateApplication(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.fail(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	var req updateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	app, err := h.appService.UpdateStatus(c.Request.Context(), identity, c.Param("id"), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, toApplicationResponse(app), "application status updated")
}

func (h HandlerSet) WithdrawApplication(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.fail(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	app, err := h.appService.Withdraw(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, toApplicationResponse(app), "application withdrawn")
}

func (h HandlerSet) MyApplications(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.fail(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	page, limit := pageQuery(c)
	apps, pagination, err := h.appService.ListMine(c.Request.Context(), identity, page, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.list(c, toApplicationResponses(apps), pagination)
}

func (h HandlerSet) JobApplications(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.fail(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	page, limit := pageQuery(c)
	apps, pagination, err := h.appService.ListByJob(c.Request.Context(), identity, c.Param("id"), page, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.list(c, toApplicationResponses(apps), pagination)
}

func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return page, limit
}
