package sitemap

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"sitesync/core/files"
)

// templateExtensions are stripped from a file name to derive its output path.
var templateExtensions = map[string]struct{}{
	".tmpl":   {},
	".gotmpl": {},
	".erb":    {},
}

type step struct {
	name        string
	manipulator Manipulator
}

// Stats describes the state of a Store.
type Stats struct {
	Resources   int       `json:"resources"`
	Dirty       bool      `json:"dirty"`
	Rebuilds    int       `json:"rebuilds"`
	LastReasons []string  `json:"last_reasons"`
	BuiltAt     time.Time `json:"built_at"`
	Steps       []string  `json:"steps"`
}

// Store owns the aggregate resource list.
//
// The list is recomputed from scratch by running every registered manipulator
// in order. Marking the list stale is cheap; the rebuild happens on the next
// EnsureResourceListUpdated call, and concurrent callers share one rebuild.
type Store struct {
	logger *zap.Logger

	mu         sync.RWMutex
	steps      []step
	resources  ResourceList
	byPath     map[string]int
	dirty      bool
	generation uint64
	built      uint64
	pending    []string
	last       []string
	builtAt    time.Time
	rebuilds   int

	sf singleflight.Group
}

// NewStore creates an empty store. The list starts out stale.
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		logger:  logger,
		byPath:  make(map[string]int),
		dirty:   true,
		pending: []string{"initial"},
	}
}

// Register appends a named manipulator to the pipeline and marks the list stale.
func (s *Store) Register(name string, m Manipulator) {
	s.mu.Lock()
	s.steps = append(s.steps, step{name: name, manipulator: m})
	s.mu.Unlock()

	s.RebuildResourceList("registered:" + name)
}

// RebuildResourceList marks the resource list stale.
func (s *Store) RebuildResourceList(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dirty = true
	s.generation++
	s.pending = append(s.pending, reason)
}

// Dirty reports whether the list needs a rebuild.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// EnsureResourceListUpdated rebuilds the list if it is stale.
// On return the list reflects every touch made before the call.
// On failure the previous list is kept and the store stays stale.
func (s *Store) EnsureResourceListUpdated() error {
	for {
		s.mu.RLock()
		dirty, wanted := s.dirty, s.generation
		s.mu.RUnlock()
		if !dirty {
			return nil
		}

		_, err, _ := s.sf.Do("rebuild", func() (interface{}, error) {
			return nil, s.rebuild()
		})
		if err != nil {
			return err
		}

		// A joined rebuild may have started before our touch.
		s.mu.RLock()
		built := s.built
		s.mu.RUnlock()
		if built >= wanted {
			return nil
		}
	}
}

func (s *Store) rebuild() error {
	s.mu.RLock()
	if !s.dirty {
		s.mu.RUnlock()
		return nil
	}
	generation := s.generation
	reasons := append([]string(nil), s.pending...)
	steps := append([]step(nil), s.steps...)
	s.mu.RUnlock()

	start := time.Now()
	list := ResourceList{}
	for _, st := range steps {
		next, err := st.manipulator.ManipulateResourceList(list)
		if err != nil {
			return fmt.Errorf("failed to rebuild resource list in %s: %w", st.name, err)
		}
		list = next
	}

	resources, index := normalize(list)

	s.mu.Lock()
	s.resources = resources
	s.byPath = index
	s.rebuilds++
	s.builtAt = time.Now()
	s.last = reasons
	s.built = generation
	if s.generation == generation {
		s.dirty = false
		s.pending = nil
	} else {
		// Touched while rebuilding; keep the newer reasons for the next pass.
		s.pending = s.pending[len(reasons):]
	}
	s.mu.Unlock()

	s.logger.Info("Resource list rebuilt",
		zap.Int("resources", len(resources)),
		zap.Strings("reasons", reasons),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// normalize deduplicates by path, letting later entries replace earlier ones,
// and sorts the result.
func normalize(list ResourceList) (ResourceList, map[string]int) {
	positions := make(map[string]int, len(list))
	out := make(ResourceList, 0, len(list))
	for _, r := range list {
		if i, ok := positions[r.Path]; ok {
			out[i] = r
			continue
		}
		positions[r.Path] = len(out)
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})

	index := make(map[string]int, len(out))
	for i, r := range out {
		index[r.Path] = i
	}
	return out, index
}

// Resources returns a copy of the current list.
func (s *Store) Resources() ResourceList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(ResourceList, len(s.resources))
	copy(out, s.resources)
	return out
}

// FindByPath looks a resource up by its logical path.
func (s *Store) FindByPath(p string) (Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byPath[strings.TrimPrefix(p, "/")]
	if !ok {
		return Resource{}, false
	}
	return s.resources[i], true
}

// FileToPath returns the logical path of a source file: its relative path
// with one trailing template extension removed.
func (s *Store) FileToPath(file files.SourceFile) string {
	p := file.RelativePath
	ext := path.Ext(p)
	if _, ok := templateExtensions[ext]; !ok {
		return p
	}
	trimmed := strings.TrimSuffix(p, ext)
	if path.Ext(trimmed) == "" {
		return p
	}
	return trimmed
}

// Stats returns a snapshot of the store state.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.steps))
	for _, st := range s.steps {
		names = append(names, st.name)
	}
	return Stats{
		Resources:   len(s.resources),
		Dirty:       s.dirty,
		Rebuilds:    s.rebuilds,
		LastReasons: append([]string(nil), s.last...),
		BuiltAt:     s.builtAt,
		Steps:       names,
	}
}
