package sitemap

import "sitesync/core/files"

// Host is the application the sitemap belongs to.
type Host interface {
	// IsBuild reports whether the process is running an offline batch build.
	IsBuild() bool
}

// Owner is the component that owns the aggregate resource list.
type Owner interface {
	// RebuildResourceList marks the list stale without recomputing it.
	RebuildResourceList(reason string)
	// EnsureResourceListUpdated recomputes the list now if it is stale.
	EnsureResourceListUpdated() error
	// FileToPath returns the logical sitemap path for a source file.
	FileToPath(file files.SourceFile) string
}

// FileSource enumerates the tracked files of a kind.
type FileSource interface {
	ByKind(kind files.Kind) ([]files.SourceFile, error)
}

// Manipulator is one named step of the resource list pipeline.
type Manipulator interface {
	ManipulateResourceList(resources ResourceList) (ResourceList, error)
}

// ManipulatorFunc adapts a function to the Manipulator interface.
type ManipulatorFunc func(resources ResourceList) (ResourceList, error)

// ManipulateResourceList calls f.
func (f ManipulatorFunc) ManipulateResourceList(resources ResourceList) (ResourceList, error) {
	return f(resources)
}

// Resource is one output-producing entry of the sitemap.
type Resource struct {
	// Sitemap is the owner the resource was created for.
	Sitemap Owner `json:"-"`
	// Path is the logical path the resource is served under.
	Path string `json:"path"`
	// Source is the file the resource was derived from.
	Source files.SourceFile `json:"source"`
}

// ResourceList is an ordered list of resources.
type ResourceList []Resource

// Paths returns the logical paths in list order.
func (l ResourceList) Paths() []string {
	out := make([]string, 0, len(l))
	for _, r := range l {
		out = append(out, r.Path)
	}
	return out
}
