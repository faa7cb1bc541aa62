// Package rest is the HTTP surface: one handler struct over the cms.Manager,
// a uniform success/failure envelope, and the geo-IP gate middleware.
package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/webportal/cms-backend/internal/cms"
	"github.com/webportal/cms-backend/internal/media"
	"github.com/webportal/cms-backend/internal/storage"
)

type Handler struct {
	cms     *cms.Manager
	uploads *media.Uploads
	log     *slog.Logger
}

func NewHandler(manager *cms.Manager, uploads *media.Uploads, log *slog.Logger) *Handler {
	return &Handler{
		cms:     manager,
		uploads: uploads,
		log:     log,
	}
}

// envelope is the body shape of every response. Error carries the failure
// message verbatim; Data carries the entity payload for reads and writes.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// fail maps the error taxonomy to a status code and logs which operation on
// which entity failed before the envelope is written.
func (h *Handler) fail(c echo.Context, op string, entity cms.Entity, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrInvalidRecord):
		status = http.StatusBadRequest
	case storage.IsNotFound(err):
		status = http.StatusNotFound
	}

	h.log.Error(op+" failed", "entity", string(entity), "status", status, "error", err)
	return c.JSON(status, envelope{Success: false, Error: err.Error()})
}

// mutation is the body of every update/delete request. Collection optionally
// retargets the call for the admin-store entities.
type mutation struct {
	ID         string         `json:"id"`
	Updates    storage.Record `json:"updates"`
	Collection string         `json:"collection"`
}

// invalidBody turns a bind failure into a 400-mapped error, keeping the
// decoder's detail in the message.
func invalidBody(err error) error {
	return fmt.Errorf("invalid request body: %v: %w", err, storage.ErrInvalidRecord)
}

// createBody splits the optional collection override from the entity fields.
func createBody(c echo.Context) (storage.Record, string, error) {
	fields := storage.Record{}
	if err := c.Bind(&fields); err != nil {
		return nil, "", err
	}
	collection, _ := fields["collection"].(string)
	delete(fields, "collection")
	return fields, collection, nil
}
