package sitemap

import (
	"go.uber.org/zap"

	"sitesync/core/files"
)

// OnDisk contributes one resource per tracked source file and turns file
// change batches into rebuild requests.
type OnDisk struct {
	files      FileSource
	rules      *RuleSet
	host       Host
	owner      Owner
	gate       *ReadinessGate
	dispatcher *Dispatcher
	logger     *zap.Logger
}

// NewOnDisk creates the coordinator. It starts in the waiting state.
func NewOnDisk(source FileSource, rules *RuleSet, host Host, owner Owner, logger *zap.Logger) *OnDisk {
	gate := NewReadinessGate()
	return &OnDisk{
		files:      source,
		rules:      rules,
		host:       host,
		owner:      owner,
		gate:       gate,
		dispatcher: NewDispatcher(owner, gate, host, logger),
		logger:     logger,
	}
}

// Name identifies the coordinator in the resource list pipeline.
func (o *OnDisk) Name() string {
	return "on_disk"
}

// Gate returns the readiness gate shared with the dispatcher.
func (o *OnDisk) Gate() *ReadinessGate {
	return o.gate
}

// Dispatcher returns the dispatcher so callers can observe signals.
func (o *OnDisk) Dispatcher() *Dispatcher {
	return o.dispatcher
}

// Ignored reports whether the file is excluded from the sitemap.
func (o *OnDisk) Ignored(file files.SourceFile) (bool, error) {
	return o.rules.Ignored(file, o.host)
}

// UpdateFiles handles one change batch.
//
// A batch made only of ignored files (or no files) is skipped. Otherwise the
// resource list is touched, even when the touched files never become
// resources, since other manipulators may depend on their contents.
func (o *OnDisk) UpdateFiles(updated, removed []files.SourceFile) error {
	all := make([]files.SourceFile, 0, len(updated)+len(removed))
	all = append(all, updated...)
	all = append(all, removed...)

	allIgnored, err := o.allIgnored(all)
	if err != nil {
		return err
	}
	if allIgnored {
		o.logger.Debug("Skipping batch of ignored files", zap.Int("files", len(all)))
		return nil
	}

	o.dispatcher.RequestTouch(ReasonTouchedFile)
	return o.dispatcher.RequestRebuildIfNeeded()
}

// Ready is the host's first-ready hook. It leaves the starting state and
// brings the resource list up to date before the first request is served.
func (o *OnDisk) Ready() error {
	if o.gate.MarkReady() {
		o.logger.Info("Sitemap ready", zap.Bool("build", o.host.IsBuild()))
	}
	return o.dispatcher.forceRebuild()
}

// ManipulateResourceList appends a resource for every non-ignored source file.
// The input is never deduplicated; the owner takes care of that.
func (o *OnDisk) ManipulateResourceList(resources ResourceList) (ResourceList, error) {
	sources, err := o.filesForSitemap()
	if err != nil {
		return nil, err
	}

	out := make(ResourceList, 0, len(resources)+len(sources))
	out = append(out, resources...)
	for _, f := range sources {
		out = append(out, Resource{
			Sitemap: o.owner,
			Path:    o.owner.FileToPath(f),
			Source:  f,
		})
	}
	return out, nil
}

func (o *OnDisk) filesForSitemap() ([]files.SourceFile, error) {
	all, err := o.files.ByKind(files.KindSource)
	if err != nil {
		return nil, err
	}

	kept := make([]files.SourceFile, 0, len(all))
	for _, f := range all {
		ignored, err := o.Ignored(f)
		if err != nil {
			return nil, err
		}
		if !ignored {
			kept = append(kept, f)
		}
	}
	return kept, nil
}

func (o *OnDisk) allIgnored(in []files.SourceFile) (bool, error) {
	for _, f := range in {
		ignored, err := o.Ignored(f)
		if err != nil {
			return false, err
		}
		if !ignored {
			return false, nil
		}
	}
	return true, nil
}
