package publish

import (
	"errors"
	"time"
)

// ErrNotConfirmed is returned by Apply when the options do not allow changes.
var ErrNotConfirmed = errors.New("publish requires confirmation and dry-run disabled")

// ActionType is the kind of change a publish makes in the bucket.
type ActionType string

const (
	// ActionUpload uploads a built resource.
	ActionUpload ActionType = "upload"
	// ActionDelete removes an object that no longer has a resource.
	ActionDelete ActionType = "delete"
)

// Reasons attached to planned actions.
const (
	ReasonNew      = "new"
	ReasonChanged  = "changed"
	ReasonOrphaned = "orphaned"
)

// Action is one planned change.
type Action struct {
	Type   ActionType `json:"type"`
	Key    string     `json:"key"`
	Path   string     `json:"path,omitempty"`
	File   string     `json:"file,omitempty"`
	Size   int64      `json:"size"`
	Reason string     `json:"reason"`
}

// Plan is the set of changes needed to make the bucket match the sitemap.
type Plan struct {
	Bucket    string   `json:"bucket"`
	Prefix    string   `json:"prefix"`
	Actions   []Action `json:"actions"`
	Unchanged int      `json:"unchanged"`
	// Entries describes every resource for the manifest, unchanged ones included.
	Entries []ManifestEntry `json:"-"`
}

// Uploads returns the planned uploads.
func (p *Plan) Uploads() []Action {
	return p.filter(ActionUpload)
}

// Deletes returns the planned deletes.
func (p *Plan) Deletes() []Action {
	return p.filter(ActionDelete)
}

func (p *Plan) filter(t ActionType) []Action {
	var out []Action
	for _, a := range p.Actions {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

// Options controls Apply.
type Options struct {
	// DryRun plans without changing anything.
	DryRun bool
	// Confirmed must be set for Apply to make changes.
	Confirmed bool
}

// Result summarizes an applied plan.
type Result struct {
	RunID     uint          `json:"run_id,omitempty"`
	Uploaded  int           `json:"uploaded"`
	Deleted   int           `json:"deleted"`
	Unchanged int           `json:"unchanged"`
	Manifest  string        `json:"manifest"`
	Took      time.Duration `json:"took"`
}

// ManifestEntry describes one published resource.
type ManifestEntry struct {
	Path   string `json:"path"`
	Key    string `json:"key"`
	Source string `json:"source"`
	Size   int64  `json:"size"`
}

// Manifest is written next to the published site.
type Manifest struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Resources   []ManifestEntry `json:"resources"`
}
