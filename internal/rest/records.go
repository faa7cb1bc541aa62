package rest

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/webportal/cms-backend/internal/cms"
	"github.com/webportal/cms-backend/internal/storage"
)

// list serves GET /<entities>. FAQ-style entities accept ?isActive=, store
// FAQs accept ?storeId=, admin-store entities accept ?collection=.
func (h *Handler) list(entity cms.Entity) echo.HandlerFunc {
	return func(c echo.Context) error {
		var filter storage.ListFilter
		if v := c.QueryParam("isActive"); v != "" {
			active, err := strconv.ParseBool(v)
			if err != nil {
				return h.fail(c, "list", entity,
					fmt.Errorf("isActive must be a boolean, got %q: %w", v, storage.ErrInvalidRecord))
			}
			filter.IsActive = &active
		}
		filter.StoreID = c.QueryParam("storeId")

		recs, err := h.cms.List(c.Request().Context(), entity, filter, c.QueryParam("collection"))
		if err != nil {
			return h.fail(c, "list", entity, err)
		}
		return h.ok(c, recs)
	}
}

func (h *Handler) byID(entity cms.Entity) echo.HandlerFunc {
	return func(c echo.Context) error {
		rec, err := h.cms.ByID(c.Request().Context(), entity, c.Param("id"), c.QueryParam("collection"))
		if err != nil {
			return h.fail(c, "get", entity, err)
		}
		return h.ok(c, rec)
	}
}

func (h *Handler) create(entity cms.Entity) echo.HandlerFunc {
	return func(c echo.Context) error {
		fields, collection, err := createBody(c)
		if err != nil {
			return h.fail(c, "create", entity, invalidBody(err))
		}

		rec, err := h.cms.Create(c.Request().Context(), entity, fields, collection)
		if err != nil {
			return h.fail(c, "create", entity, err)
		}
		return h.ok(c, rec)
	}
}

func (h *Handler) update(entity cms.Entity) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req mutation
		if err := c.Bind(&req); err != nil {
			return h.fail(c, "update", entity, invalidBody(err))
		}

		rec, err := h.cms.Update(c.Request().Context(), entity, req.ID, req.Updates, req.Collection)
		if err != nil {
			return h.fail(c, "update", entity, err)
		}
		return h.ok(c, rec)
	}
}

func (h *Handler) delete(entity cms.Entity) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req mutation
		if err := c.Bind(&req); err != nil {
			return h.fail(c, "delete", entity, invalidBody(err))
		}

		if err := h.cms.Delete(c.Request().Context(), entity, req.ID, req.Collection); err != nil {
			return h.fail(c, "delete", entity, err)
		}
		return h.ok(c, nil)
	}
}

// Policy handles GET /privacy-policy, the singleton read.
func (h *Handler) Policy(c echo.Context) error {
	rec, err := h.cms.Policy(c.Request().Context())
	if err != nil {
		return h.fail(c, "get", cms.PrivacyPolicy, err)
	}
	return h.ok(c, rec)
}

// SavePolicy handles POST /privacy-policy, creating or merging the singleton
// record.
func (h *Handler) SavePolicy(c echo.Context) error {
	fields, _, err := createBody(c)
	if err != nil {
		return h.fail(c, "save", cms.PrivacyPolicy, invalidBody(err))
	}

	rec, err := h.cms.SavePolicy(c.Request().Context(), fields)
	if err != nil {
		return h.fail(c, "save", cms.PrivacyPolicy, err)
	}
	return h.ok(c, rec)
}

// Settings handles GET /email-settings, the cached singleton read.
func (h *Handler) Settings(c echo.Context) error {
	rec, err := h.cms.Settings(c.Request().Context())
	if err != nil {
		return h.fail(c, "get", cms.EmailSettings, err)
	}
	return h.ok(c, rec)
}

// SaveSettings handles POST /email-settings, creating or merging the
// singleton record.
func (h *Handler) SaveSettings(c echo.Context) error {
	fields, _, err := createBody(c)
	if err != nil {
		return h.fail(c, "save", cms.EmailSettings, invalidBody(err))
	}

	rec, err := h.cms.SaveSettings(c.Request().Context(), fields)
	if err != nil {
		return h.fail(c, "save", cms.EmailSettings, err)
	}
	return h.ok(c, rec)
}
