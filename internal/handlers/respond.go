package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobdesk/api/internal/apperrors"
	"jobdesk/api/internal/service"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

type listEnvelope struct {
	Success    bool               `json:"success"`
	Data       any                `json:"data"`
	Pagination service.Pagination `json:"pagination"`
}

func (h HandlerSet) ok(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data, Message: message})
}

func (h HandlerSet) created(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data, Message: message})
}

func (h HandlerSet) list(c *gin.Context, data any, pagination service.Pagination) {
	c.JSON(http.StatusOK, listEnvelope{Success: true, Data: data, Pagination: pagination})
}

var statusByCode = map[apperrors.Code]int{
	apperrors.CodeUnauthorized: http.StatusUnauthorized,
	apperrors.CodeForbidden:    http.StatusForbidden,
	apperrors.CodeNotFound:     http.StatusNotFound,
	apperrors.CodeValidation:   http.StatusBadRequest,
	apperrors.CodeConflict:     http.StatusConflict,
	apperrors.CodeInternal:     http.StatusInternalServerError,
}

// fail renders any error as the {success:false, message} envelope.
// Anticipated categories pass their message through; anything else is
// logged in full and masked outside development.
func (h HandlerSet) fail(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code != apperrors.CodeInternal {
		c.JSON(statusByCode[appErr.Code], envelope{
			Success: false,
			Message: appErr.Message,
			Field:   appErr.Field,
		})
		return
	}

	h.log.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("unhandled error")

	message := "internal server error"
	if !h.cfg.IsProduction() {
		message = err.Error()
	}
	c.JSON(http.StatusInternalServerError, envelope{Success: false, Message: message})
}

func (h HandlerSet) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, envelope{Success: false, Message: err.Error()})
}
