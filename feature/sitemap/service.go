package sitemap

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"sitesync/core/site"
	core "sitesync/core/sitemap"
)

// ReasonManual is recorded when a rebuild is requested over HTTP.
const ReasonManual = "manual"

// ErrNotReady is returned while the site is still starting.
var ErrNotReady = errors.New("site is still starting")

// Status describes the sitemap for the status endpoint.
type Status struct {
	Ready   bool           `json:"ready"`
	Files   int            `json:"files"`
	Signals map[string]int `json:"signals"`
	core.Stats
}

// Service exposes the resource list of a running site.
type Service struct {
	site   *site.Site
	logger *zap.Logger
}

// NewService creates a new sitemap service.
func NewService(s *site.Site, logger *zap.Logger) *Service {
	return &Service{site: s, logger: logger}
}

// List returns the current resource list, rebuilding it first if stale.
func (s *Service) List() (core.ResourceList, error) {
	if !s.site.IsReady() {
		return nil, ErrNotReady
	}
	if err := s.site.Store().EnsureResourceListUpdated(); err != nil {
		return nil, err
	}
	return s.site.Store().Resources(), nil
}

// Find looks a resource up by path.
func (s *Service) Find(path string) (core.Resource, bool, error) {
	if !s.site.IsReady() {
		return core.Resource{}, false, ErrNotReady
	}
	if err := s.site.Store().EnsureResourceListUpdated(); err != nil {
		return core.Resource{}, false, err
	}
	r, ok := s.site.Store().FindByPath(path)
	return r, ok, nil
}

// Status reports readiness and store statistics without rebuilding.
func (s *Service) Status() Status {
	return Status{
		Ready:   s.site.IsReady(),
		Files:   s.site.Registry().Len(),
		Signals: s.site.Signals(),
		Stats:   s.site.Store().Stats(),
	}
}

// Rebuild marks the list stale and rebuilds it immediately.
func (s *Service) Rebuild() (core.Stats, error) {
	if !s.site.IsReady() {
		return core.Stats{}, ErrNotReady
	}
	store := s.site.Store()
	store.RebuildResourceList(ReasonManual)
	if err := store.EnsureResourceListUpdated(); err != nil {
		return core.Stats{}, fmt.Errorf("failed to rebuild resource list: %w", err)
	}
	return store.Stats(), nil
}
