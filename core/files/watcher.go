package files

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Root is a watched directory and the kind of files below it.
type Root struct {
	Path string
	Kind Kind
}

// Watcher keeps a Registry in sync with the directories it watches.
//
// Filesystem events are collected and debounced; when things settle the
// pending paths are classified into a single change batch and applied to the
// registry. Batches are never delivered concurrently.
type Watcher struct {
	registry *Registry
	roots    []Root
	debounce time.Duration
	logger   *zap.Logger

	// flushMu serializes batch delivery between Scan and debounced flushes.
	flushMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]struct{}
	timer     *time.Timer

	fswMu sync.Mutex
	fsw   *fsnotify.Watcher
}

// NewWatcher creates a watcher for the given roots.
func NewWatcher(registry *Registry, roots []Root, debounce time.Duration, logger *zap.Logger) *Watcher {
	cleaned := make([]Root, 0, len(roots))
	for _, r := range roots {
		cleaned = append(cleaned, Root{Path: filepath.Clean(r.Path), Kind: r.Kind})
	}
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	return &Watcher{
		registry: registry,
		roots:    cleaned,
		debounce: debounce,
		logger:   logger,
		pending:  make(map[string]struct{}),
	}
}

// Scan walks every root and applies a single batch reconciling the registry
// with what is on disk.
func (w *Watcher) Scan(ctx context.Context) error {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	seen := make(map[string]struct{})
	var updated []SourceFile

	for _, root := range w.roots {
		err := filepath.WalkDir(root.Path, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if path != root.Path && skipName(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if skipName(d.Name()) || !d.Type().IsRegular() {
				return nil
			}
			f, ok := w.classify(path)
			if !ok {
				return nil
			}
			seen[f.FullPath] = struct{}{}
			updated = append(updated, f)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", root.Path, err)
		}
	}

	var removed []SourceFile
	for _, root := range w.roots {
		for _, f := range w.registry.Under(root.Path) {
			if _, ok := seen[f.FullPath]; !ok {
				removed = append(removed, f)
			}
		}
	}
	sortFiles(removed)

	w.logger.Info("Initial scan complete",
		zap.Int("files", len(updated)),
		zap.Int("removed", len(removed)),
	)
	return w.registry.Apply(updated, removed)
}

// Open registers watches on every root without consuming events yet.
// Calling Open before Scan makes sure changes made between the scan and Run
// are not lost. Open is a no-op when the watches already exist.
func (w *Watcher) Open() error {
	w.fswMu.Lock()
	if w.fsw != nil {
		w.fswMu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.fswMu.Unlock()
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fsw = fsw
	w.fswMu.Unlock()

	for _, root := range w.roots {
		if err := w.addRecursive(root.Path); err != nil {
			_ = w.Close()
			return fmt.Errorf("failed to watch %s: %w", root.Path, err)
		}
	}

	w.logger.Info("Watching source directories", zap.Int("roots", len(w.roots)))
	return nil
}

// Close releases the watches. Pending changes are dropped.
func (w *Watcher) Close() error {
	w.stopTimer()

	w.fswMu.Lock()
	fsw := w.fsw
	w.fsw = nil
	w.fswMu.Unlock()

	if fsw == nil {
		return nil
	}
	return fsw.Close()
}

// Run watches the roots until the context is cancelled.
// Errors applying a batch are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Open(); err != nil {
		return err
	}
	defer w.Close()

	w.fswMu.Lock()
	fsw := w.fsw
	w.fswMu.Unlock()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping file watcher")
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("watcher event channel closed")
			}
			w.handleEvent(event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if skipName(filepath.Base(event.Name)) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", zap.String("path", event.Name), zap.Error(err))
			}
			// Files can land in a new directory before its watch is registered.
			_ = filepath.WalkDir(event.Name, func(path string, d fs.DirEntry, err error) error {
				if err == nil && !d.IsDir() {
					w.queue(path)
				}
				return nil
			})
			return
		}
	}

	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.queue(event.Name)
	}
}

func (w *Watcher) addRecursive(dir string) error {
	w.fswMu.Lock()
	fsw := w.fsw
	w.fswMu.Unlock()
	if fsw == nil {
		return nil
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skipName(d.Name()) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

// queue records a changed path and restarts the debounce timer.
func (w *Watcher) queue(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[filepath.Clean(path)] = struct{}{}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		_ = w.flush()
	})
}

func (w *Watcher) stopTimer() {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// flush turns the pending paths into one change batch and applies it.
// Paths are drained under flushMu so batches apply in the order they were queued.
func (w *Watcher) flush() error {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.timer = nil
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return nil
	}

	updated, removed := w.classifyPaths(paths)
	if len(updated) == 0 && len(removed) == 0 {
		return nil
	}

	w.logger.Debug("Applying change batch",
		zap.Int("updated", len(updated)),
		zap.Int("removed", len(removed)),
	)

	if err := w.registry.Apply(updated, removed); err != nil {
		w.logger.Error("Failed to apply change batch", zap.Error(err))
		return err
	}
	return nil
}

func (w *Watcher) classifyPaths(paths []string) (updated, removed []SourceFile) {
	seenRemoved := make(map[string]struct{})
	addRemoved := func(f SourceFile) {
		if _, ok := seenRemoved[f.FullPath]; ok {
			return
		}
		seenRemoved[f.FullPath] = struct{}{}
		removed = append(removed, f)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		switch {
		case err == nil && info.Mode().IsRegular():
			if f, ok := w.classify(path); ok {
				updated = append(updated, f)
			}
		case err == nil:
			// Directories are expanded when they are created.
		case errors.Is(err, fs.ErrNotExist):
			if f, ok := w.registry.Find(path); ok {
				addRemoved(f)
				continue
			}
			for _, f := range w.registry.Under(path) {
				addRemoved(f)
			}
		default:
			w.logger.Warn("Failed to stat changed path", zap.String("path", path), zap.Error(err))
		}
	}

	sortFiles(updated)
	sortFiles(removed)
	return updated, removed
}

// classify maps a path on disk to the root that contains it.
func (w *Watcher) classify(path string) (SourceFile, bool) {
	path = filepath.Clean(path)
	for _, root := range w.roots {
		rel, err := filepath.Rel(root.Path, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		return SourceFile{
			RelativePath: filepath.ToSlash(rel),
			FullPath:     path,
			Kind:         root.Kind,
		}, true
	}
	return SourceFile{}, false
}

// skipName reports whether a file or directory name is never tracked.
func skipName(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") {
		return true
	}
	switch filepath.Ext(name) {
	case ".swp", ".swo", ".tmp":
		return true
	}
	return false
}

func sortFiles(in []SourceFile) {
	sort.Slice(in, func(i, j int) bool {
		return in[i].FullPath < in[j].FullPath
	})
}
