// Package files tracks the source files that make up a site.
//
// It is the file registry the sitemap is derived from. The Registry holds the
// current set of files per kind and fans out change batches to listeners; the
// Watcher keeps the Registry in sync with the disk.
//
// # Kinds
//
// Every watched root is tagged with a Kind. Files under the source root are
// KindSource and become sitemap resources; files under the data root are
// KindData and are only tracked.
//
// # Change batches
//
// A batch is a pair of slices (updated, removed). The Watcher produces one
// batch per initial scan and one per debounced burst of filesystem events.
// Batches are delivered one at a time, in the order they were produced.
//
// # Usage
//
//	reg := files.NewRegistry()
//	reg.Changed(files.KindSource, func(updated, removed []files.SourceFile) error {
//	    return nil
//	})
//
//	w := files.NewWatcher(reg, []files.Root{{Path: "source", Kind: files.KindSource}}, 100*time.Millisecond, logger)
//	if err := w.Scan(ctx); err != nil {
//	    return err
//	}
//	go w.Run(ctx)
package files
