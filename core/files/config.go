package files

// Config holds configuration for the watched site directories.
type Config struct {
	// SourceDir is the root of the files that become sitemap resources.
	SourceDir string `mapstructure:"source_dir" default:"source"`
	// DataDir is an optional root of tracked data files.
	DataDir string `mapstructure:"data_dir" default:""`
	// DebounceMillis is the quiet period before a burst of events is flushed.
	DebounceMillis int `mapstructure:"debounce_millis" default:"100"`
}

// Roots returns the watched roots described by the configuration.
func (c Config) Roots() []Root {
	roots := []Root{{Path: c.SourceDir, Kind: KindSource}}
	if c.DataDir != "" {
		roots = append(roots, Root{Path: c.DataDir, Kind: KindData})
	}
	return roots
}
