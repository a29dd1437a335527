package files

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Kind classifies a tracked file.
type Kind string

const (
	// KindSource marks files that are candidates for the sitemap.
	KindSource Kind = "source"
	// KindData marks files that are tracked but never become resources.
	KindData Kind = "data"
)

// SourceFile is one file under a watched root.
type SourceFile struct {
	// RelativePath is the slash separated path relative to the root. It is the
	// stable identity of the file inside the site.
	RelativePath string `json:"relative_path"`
	// FullPath is the location on disk.
	FullPath string `json:"full_path"`
	// Kind is the kind of the root the file was found under.
	Kind Kind `json:"kind"`
}

// ChangeHandler receives one change batch.
type ChangeHandler func(updated, removed []SourceFile) error

type listener struct {
	kind    Kind
	handler ChangeHandler
}

// Registry is the set of files currently known to exist on disk.
type Registry struct {
	mu        sync.RWMutex
	byPath    map[string]SourceFile
	listeners []listener
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byPath: make(map[string]SourceFile),
	}
}

// Changed registers a handler for batches that touch files of the given kind.
func (r *Registry) Changed(kind Kind, handler ChangeHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, listener{kind: kind, handler: handler})
}

// Apply records a change batch and notifies listeners.
// The registry is updated before any listener runs so listeners enumerating
// files observe the new state. Listener errors are joined and returned.
func (r *Registry) Apply(updated, removed []SourceFile) error {
	r.mu.Lock()
	for _, f := range updated {
		r.byPath[f.FullPath] = f
	}
	for _, f := range removed {
		delete(r.byPath, f.FullPath)
	}
	listeners := make([]listener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	var errs []error
	for _, l := range listeners {
		u := filterKind(updated, l.kind)
		rm := filterKind(removed, l.kind)
		if len(u) == 0 && len(rm) == 0 {
			continue
		}
		if err := l.handler(u, rm); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ByKind returns every registered file of the given kind ordered by relative path.
func (r *Registry) ByKind(kind Kind) ([]SourceFile, error) {
	r.mu.RLock()
	out := make([]SourceFile, 0, len(r.byPath))
	for _, f := range r.byPath {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].RelativePath < out[j].RelativePath
	})
	return out, nil
}

// Find looks a file up by its location on disk.
func (r *Registry) Find(fullPath string) (SourceFile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.byPath[fullPath]
	return f, ok
}

// Under returns every registered file located below dir.
func (r *Registry) Under(dir string) []SourceFile {
	prefix := filepath.Clean(dir) + string(filepath.Separator)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []SourceFile
	for p, f := range r.byPath {
		if strings.HasPrefix(p, prefix) {
			out = append(out, f)
		}
	}
	return out
}

// Len returns the number of registered files.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byPath)
}

func filterKind(in []SourceFile, kind Kind) []SourceFile {
	var out []SourceFile
	for _, f := range in {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}
