package sitemap

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"sitesync/core/files"
)

type fakeHost struct {
	build bool
}

func (h *fakeHost) IsBuild() bool { return h.build }

type fakeOwner struct {
	touches    []string
	rebuilds   int
	rebuildErr error
}

func (o *fakeOwner) RebuildResourceList(reason string) {
	o.touches = append(o.touches, reason)
}

func (o *fakeOwner) EnsureResourceListUpdated() error {
	o.rebuilds++
	return o.rebuildErr
}

func (o *fakeOwner) FileToPath(file files.SourceFile) string {
	return file.RelativePath
}

type fakeFiles struct {
	files []files.SourceFile
	err   error
	calls int
}

func (f *fakeFiles) ByKind(kind files.Kind) ([]files.SourceFile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []files.SourceFile
	for _, file := range f.files {
		if file.Kind == kind {
			out = append(out, file)
		}
	}
	return out, nil
}

func sourceFile(rel string) files.SourceFile {
	return files.SourceFile{RelativePath: rel, FullPath: "/site/source/" + rel, Kind: files.KindSource}
}

func sourceFiles(rels ...string) []files.SourceFile {
	out := make([]files.SourceFile, 0, len(rels))
	for _, r := range rels {
		out = append(out, sourceFile(r))
	}
	return out
}

var partials = PredicateFunc(func(file files.SourceFile, _ Host) (bool, error) {
	base := file.RelativePath[strings.LastIndex(file.RelativePath, "/")+1:]
	return strings.HasPrefix(base, "_"), nil
})

var errBroken = errors.New("broken rule")

func newTestOnDisk(build bool, rels ...string) (*OnDisk, *fakeOwner, *fakeFiles) {
	rules := NewRuleSet()
	rules.Register("partials", partials)
	owner := &fakeOwner{}
	src := &fakeFiles{files: sourceFiles(rels...)}
	od := NewOnDisk(src, rules, &fakeHost{build: build}, owner, zap.NewNop())
	return od, owner, src
}
