// Package server holds the HTTP server configuration.
//
// The start command owns the Fiber application itself; this package only
// defines the settings it needs: the listen port, the API key protecting the
// sitemap endpoints and the graceful shutdown timeout.
//
// # Usage
//
// This package is embedded by core/config and read by cmd/start.
package server
