// Package sitemap exposes the resource list of a running site over HTTP.
//
// Routes:
//
//	GET  /sitemap                 every resource, rebuilt first if stale
//	GET  /sitemap/resource?path=  one resource by its logical path
//	GET  /sitemap/status          readiness and rebuild statistics
//	POST /sitemap/rebuild         mark the list stale and rebuild now
//
// Every route except status answers 503 while the site is still starting.
package sitemap
