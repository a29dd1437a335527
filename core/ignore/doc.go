// Package ignore provides the predicates that keep files out of the sitemap.
//
// Each constructor returns a sitemap.Predicate. Register installs the set
// described by Config on a sitemap.RuleSet:
//
//   - partials: any file whose name starts with an underscore.
//   - layouts: every file below the configured layouts directory.
//   - pattern:<glob>: one rule per configured glob, matched against the
//     slash separated path relative to the source root ("**" crosses directories).
package ignore
