// Package config provides configuration management for sitesync.
//
// Values come from the environment, optionally seeded from a .env file. Every
// field declares its key with a `mapstructure` tag and its fallback with a
// `default` tag; nested sections map to underscore separated variables, so
// site.source_dir is read from SITE_SOURCE_DIR.
//
// # Configuration Structure
//
//   - Server: HTTP port, API key and shutdown timeout
//   - Site: source and data directories, watcher debounce
//   - Ignore: partials, layouts directory and extra glob patterns
//   - Log: level, format and optional rotating file
//   - Storage: S3/MinIO credentials and bucket
//   - Database: optional publish history database (mysql or sqlite)
//   - Publish: bucket prefix, manifest name and upload concurrency
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Site.SourceDir)
package config
