package handlers

import (
	"github.com/gin-gonic/gin"

	"jobdesk/api/internal/apperrors"
	"jobdesk/api/internal/middleware"
)

// UploadResume accepts a multipart "resume" file and stores it in object
// storage under the caller's id.
func (h HandlerSet) UploadResume(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.fail(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	header, err := c.FormFile("resume")
	if err != nil {
		h.fail(c, apperrors.ValidationField("resume", "resume file is required"))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.fail(c, apperrors.Internal("open upload", err))
		return
	}
	defer file.Close()

	key, err := h.resumeSvc.Upload(
		c.Request.Context(),
		identity,
		file,
		header.Size,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, gin.H{"resumeKey": key}, "resume uploaded successfully")
}
