package ignore

// Config holds the ignore rule settings.
type Config struct {
	// Partials excludes files whose name starts with an underscore.
	Partials bool `mapstructure:"partials" default:"true"`
	// LayoutsDir excludes everything under this source-relative directory.
	LayoutsDir string `mapstructure:"layouts_dir" default:"layouts"`
	// Patterns are additional glob patterns, comma separated in the environment.
	Patterns []string `mapstructure:"patterns" default:""`
}
