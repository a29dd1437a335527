package publish

// Config holds the publish settings.
type Config struct {
	// Prefix is the key prefix of the site inside the bucket.
	Prefix string `mapstructure:"prefix" default:"site"`
	// Manifest is the object name of the manifest, relative to Prefix.
	Manifest string `mapstructure:"manifest" default:"manifest.json"`
	// Concurrency bounds the number of parallel uploads.
	Concurrency int `mapstructure:"concurrency" default:"4"`
}
