package ignore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitesync/core/files"
	"sitesync/core/sitemap"
)

type host struct{}

func (host) IsBuild() bool { return false }

func match(t *testing.T, p sitemap.Predicate, rel string) bool {
	t.Helper()
	got, err := p.Ignore(files.SourceFile{RelativePath: rel, Kind: files.KindSource}, host{})
	require.NoError(t, err)
	return got
}

func TestGlob(t *testing.T) {
	p, err := Glob("drafts/**")
	require.NoError(t, err)

	assert.True(t, match(t, p, "drafts/a.md"))
	assert.True(t, match(t, p, "drafts/2024/b.md"))
	assert.False(t, match(t, p, "posts/a.md"))

	p, err = Glob("*.bak")
	require.NoError(t, err)
	assert.True(t, match(t, p, "notes.bak"))
	assert.False(t, match(t, p, "dir/notes.bak"))
}

func TestRegexp(t *testing.T) {
	p, err := Regexp(`\.draft\.`)
	require.NoError(t, err)
	assert.True(t, match(t, p, "post.draft.md"))
	assert.False(t, match(t, p, "post.md"))

	_, err = Regexp("(")
	assert.Error(t, err)
}

func TestPartials(t *testing.T) {
	p := Partials()
	assert.True(t, match(t, p, "_partial.md"))
	assert.True(t, match(t, p, "blog/_sidebar.md"))
	assert.False(t, match(t, p, "index.md"))
	assert.False(t, match(t, p, "_dir/index.md"))
}

func TestUnder(t *testing.T) {
	p := Under("layouts/")
	assert.True(t, match(t, p, "layouts/base.tmpl"))
	assert.True(t, match(t, p, "layouts/nested/x.tmpl"))
	assert.False(t, match(t, p, "layouts.md"))
	assert.False(t, match(t, p, "blog/layouts/x.tmpl"))
}

func TestRegister(t *testing.T) {
	rules := sitemap.NewRuleSet()
	err := Register(rules, Config{
		Partials:   true,
		LayoutsDir: "layouts",
		Patterns:   []string{"drafts/**", " ", "*.bak"},
	})
	require.NoError(t, err)

	names := make([]string, 0)
	for _, r := range rules.Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"partials", "layouts", "pattern:drafts/**", "pattern:*.bak"}, names)

	tests := map[string]bool{
		"index.md":          false,
		"_partial.md":       true,
		"layouts/base.tmpl": true,
		"drafts/wip.md":     true,
		"old.bak":           true,
	}
	for rel, want := range tests {
		got, err := rules.Ignored(files.SourceFile{RelativePath: rel}, host{})
		require.NoError(t, err)
		assert.Equal(t, want, got, rel)
	}
}
