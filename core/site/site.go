package site

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"sitesync/core/config"
	"sitesync/core/files"
	"sitesync/core/ignore"
	"sitesync/core/sitemap"
)

// Site ties the tracked files to the resource list.
type Site struct {
	build  bool
	logger *zap.Logger

	registry *files.Registry
	rules    *sitemap.RuleSet
	store    *sitemap.Store
	onDisk   *sitemap.OnDisk
	watcher  *files.Watcher

	signalsMu sync.Mutex
	signals   map[sitemap.SignalKind]int
}

// New assembles a site from configuration.
// build selects batch-build mode, in which file changes never trigger rebuilds.
func New(cfg *config.Config, logger *zap.Logger, build bool) (*Site, error) {
	s := &Site{
		build:    build,
		logger:   logger.With(zap.Bool("build", build)),
		registry: files.NewRegistry(),
		rules:    sitemap.NewRuleSet(),
		signals:  make(map[sitemap.SignalKind]int),
	}

	if err := ignore.Register(s.rules, cfg.Ignore); err != nil {
		return nil, fmt.Errorf("failed to register ignore rules: %w", err)
	}

	s.store = sitemap.NewStore(s.logger)
	s.onDisk = sitemap.NewOnDisk(s.registry, s.rules, s, s.store, s.logger)
	s.onDisk.Dispatcher().Observe(s.countSignal)
	s.store.Register(s.onDisk.Name(), s.onDisk)
	s.registry.Changed(files.KindSource, s.onDisk.UpdateFiles)

	debounce := time.Duration(cfg.Site.DebounceMillis) * time.Millisecond
	s.watcher = files.NewWatcher(s.registry, cfg.Site.Roots(), debounce, s.logger)

	return s, nil
}

// IsBuild reports whether the site runs in batch-build mode.
func (s *Site) IsBuild() bool {
	return s.build
}

// Boot discovers every file on disk. The site is still starting afterwards.
// In serve mode the watches are registered before the scan, so files written
// before Watch starts are delivered once it does.
func (s *Site) Boot(ctx context.Context) error {
	if !s.build {
		if err := s.watcher.Open(); err != nil {
			return err
		}
	}
	return s.watcher.Scan(ctx)
}

// Ready marks the site ready and brings the resource list up to date.
func (s *Site) Ready() error {
	return s.onDisk.Ready()
}

// Watch follows file changes until the context is cancelled.
func (s *Site) Watch(ctx context.Context) error {
	return s.watcher.Run(ctx)
}

// Close releases the file watches.
func (s *Site) Close() error {
	return s.watcher.Close()
}

// IsReady reports whether Ready has been called.
func (s *Site) IsReady() bool {
	return !s.onDisk.Gate().WaitingForReady()
}

// Store returns the resource list owner.
func (s *Site) Store() *sitemap.Store {
	return s.store
}

// Registry returns the tracked files.
func (s *Site) Registry() *files.Registry {
	return s.registry
}

// OnDisk returns the on-disk coordinator.
func (s *Site) OnDisk() *sitemap.OnDisk {
	return s.onDisk
}

// Signals returns how many signals of each kind the dispatcher emitted.
func (s *Site) Signals() map[string]int {
	s.signalsMu.Lock()
	defer s.signalsMu.Unlock()

	out := make(map[string]int, len(s.signals))
	for kind, n := range s.signals {
		out[string(kind)] = n
	}
	return out
}

func (s *Site) countSignal(sig sitemap.Signal) {
	s.signalsMu.Lock()
	s.signals[sig.Kind]++
	s.signalsMu.Unlock()

	s.logger.Debug("Sitemap signal", zap.String("kind", string(sig.Kind)), zap.String("reason", sig.Reason))
}
