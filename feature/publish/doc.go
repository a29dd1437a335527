// Package publish uploads a built site to object storage.
//
// Publishing runs in two phases, the same way any destructive operation in
// this service does:
//
//  1. Plan lists what is already in the bucket under the configured prefix and
//     compares it with the sitemap. Missing resources are uploaded as "new",
//     resources whose size differs as "changed"; remote objects without a
//     resource are deleted as "orphaned". The manifest is never deleted.
//  2. Apply executes a plan. It refuses to run unless the options are
//     confirmed and not a dry run, returning ErrNotConfirmed otherwise.
//
// Uploads run in parallel with a bounded errgroup; deletes go out as one batch.
// After a successful apply a manifest.json describing every resource is written
// next to the site, and, when a database is configured, the run is recorded
// through Recorder (tables publish_runs and published_resources).
package publish
