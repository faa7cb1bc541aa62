package rest

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/webportal/cms-backend/internal/cms"
)

const apiV1Prefix = "/api/v1"

// RegisterRoutes mounts every entity surface under /api/v1 plus the health
// check. Each entity gets the same route shape; which backend answers is
// decided by the manager's binding table.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Use(h.loggingMiddleware)

	e.GET("/health", h.Health)

	api := e.Group(apiV1Prefix)

	for path, entity := range map[string]cms.Entity{
		"/banners":    cms.Banners,
		"/categories": cms.Categories,
		"/news":       cms.News,
		"/events":     cms.Events,
		"/faqs":       cms.FAQs,
		"/store-faqs": cms.StoreFAQs,
		"/logos":      cms.Logos,
		"/regions":    cms.Regions,
	} {
		api.GET(path, h.list(entity))
		api.GET(path+"/:id", h.byID(entity))
		api.POST(path+"/create", h.create(entity))
		api.POST(path+"/update", h.update(entity))
		api.POST(path+"/delete", h.delete(entity))
	}

	// singleton surfaces, no per-id routes
	api.GET("/privacy-policy", h.Policy)
	api.POST("/privacy-policy", h.SavePolicy)
	api.POST("/privacy-policy/delete", h.delete(cms.PrivacyPolicy))

	api.GET("/email-settings", h.Settings)
	api.POST("/email-settings", h.SaveSettings)
	api.POST("/email-settings/delete", h.delete(cms.EmailSettings))

	api.POST("/uploads", h.Upload)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) loggingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)

		status := c.Response().Status
		if err != nil {
			if httpErr, ok := err.(*echo.HTTPError); ok {
				status = httpErr.Code
			}
		}

		h.log.Info("HTTP request",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.RealIP(),
		)
		return err
	}
}
