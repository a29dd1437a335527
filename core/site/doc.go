// Package site assembles the file registry, ignore rules, resource list store
// and watcher into one running site.
//
// A site starts out booting: Boot scans the source directories while change
// batches only mark the resource list stale. Ready flips the site into its
// ready state and builds the list once. In serve mode, Watch then keeps the
// list in sync with the disk; in build mode the list is never rebuilt by file
// changes and the build driver asks for the list explicitly.
package site
