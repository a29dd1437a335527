package sitemap

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"sitesync/core/logger"
)

// Handler handles HTTP requests for the sitemap.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sitemap routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sitemap")
	group.Get("/", h.HandleList)
	group.Get("/resource", h.HandleResource)
	group.Get("/status", h.HandleStatus)
	group.Post("/rebuild", h.HandleRebuild)
}

// HandleList returns every resource of the sitemap.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	resources, err := h.service.List()
	if err != nil {
		return h.fail(c, l, "List sitemap failed", err)
	}

	return c.JSON(fiber.Map{
		"count":     len(resources),
		"resources": resources,
	})
}

// HandleResource returns a single resource by its path.
func (h *Handler) HandleResource(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	path := c.Query("path")
	if path == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "path is required"})
	}

	resource, ok, err := h.service.Find(path)
	if err != nil {
		return h.fail(c, l, "Find resource failed", err)
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "resource not found",
			"path":  path,
		})
	}
	return c.JSON(resource)
}

// HandleStatus reports readiness and rebuild statistics.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status())
}

// HandleRebuild forces a rebuild of the resource list.
func (h *Handler) HandleRebuild(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Manual sitemap rebuild requested")

	stats, err := h.service.Rebuild()
	if err != nil {
		return h.fail(c, l, "Manual rebuild failed", err)
	}
	return c.JSON(stats)
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	if errors.Is(err, ErrNotReady) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	l.Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
