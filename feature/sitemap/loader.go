package sitemap

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"sitesync/core/site"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new sitemap feature.
func NewFeature(s *site.Site, logger *zap.Logger) *Feature {
	svc := NewService(s, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "sitemap"
}

// IsEnabled reports whether the feature is enabled. The HTTP surface only
// exists in serve mode.
func (f *Feature) IsEnabled() bool {
	return !f.service.site.IsBuild()
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
