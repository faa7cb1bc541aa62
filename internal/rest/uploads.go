package rest

import (
	"github.com/labstack/echo/v4"

	"github.com/webportal/cms-backend/internal/cms"
)

type uploadRequest struct {
	Kind        string `json:"kind"`
	ContentType string `json:"contentType"`
}

// Upload handles POST /api/v1/uploads: hands out a presigned PUT URL for
// banner or logo imagery. The client uploads directly to object storage and
// stores the returned key on the record.
func (h *Handler) Upload(c echo.Context) error {
	var req uploadRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, "upload", cms.Entity(req.Kind), invalidBody(err))
	}

	ticket, err := h.uploads.UploadURL(c.Request().Context(), req.Kind, req.ContentType)
	if err != nil {
		return h.fail(c, "upload", cms.Entity(req.Kind), err)
	}
	return h.ok(c, ticket)
}
