// Package sitemap keeps the site's resource list consistent with the files on disk.
//
// # Components
//
//   - RuleSet: ordered, named ignore predicates. A file is ignored when any rule matches.
//   - ReadinessGate: one-way Starting -> Ready switch flipped when the host is ready to serve.
//   - Dispatcher: turns change batches into Touched and RebuildRequested signals for the Owner.
//   - OnDisk: the coordinator. It receives change batches from the file registry,
//     handles the ready hook and contributes one resource per tracked source file.
//   - Store: the resource-list Owner. It runs the registered manipulators in order
//     whenever the list is dirty and somebody needs it current.
//
// # Rebuild policy
//
// Every batch that touches at least one non-ignored file marks the list dirty.
// An eager rebuild follows only once the host is ready and only outside batch
// builds; during startup the ready hook performs the rebuild, and during a
// build the build driver decides when to rebuild.
//
//	store := sitemap.NewStore(logger)
//	od := sitemap.NewOnDisk(registry, rules, host, store, logger)
//	store.Register("on_disk", od)
//	registry.Changed(files.KindSource, od.UpdateFiles)
//
//	// after startup, before serving
//	if err := od.Ready(); err != nil {
//	    return err
//	}
package sitemap
