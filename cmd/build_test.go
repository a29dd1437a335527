package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"sitesync/core/config"
	"sitesync/core/files"
	"sitesync/core/ignore"
	"sitesync/feature/publish"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	source := t.TempDir()
	for _, rel := range []string{"index.html", "_header.html", "docs/guide.md.erb"} {
		full := filepath.Join(source, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}
	return &config.Config{
		Site:   files.Config{SourceDir: source},
		Ignore: ignore.Config{Partials: true},
	}
}

func TestBuildSite(t *testing.T) {
	s, err := buildSite(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)

	assert.True(t, s.IsBuild())
	assert.True(t, s.IsReady())
	assert.False(t, s.Store().Dirty())
	assert.Equal(t, []string{"docs/guide.md", "index.html"}, s.Store().Resources().Paths())
}

func TestBuildSite_MissingSource(t *testing.T) {
	cfg := &config.Config{Site: files.Config{SourceDir: filepath.Join(t.TempDir(), "missing")}}
	_, err := buildSite(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "failed to scan source directories")
}

func TestRenderResources(t *testing.T) {
	s, err := buildSite(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)

	var buf bytes.Buffer
	renderResources(&buf, s.Store().Resources())
	out := buf.String()

	assert.Contains(t, out, "PATH")
	assert.Contains(t, out, "docs/guide.md.erb")
	assert.Contains(t, out, "index.html")
	assert.NotContains(t, out, "_header.html")
	assert.Contains(t, out, "TOTAL")
}

func TestConfirmPublish(t *testing.T) {
	tests := []struct {
		name  string
		input string
		yes   bool
		want  bool
	}{
		{"Typed", "yes\n", false, true},
		{"TypedNoNewline", "yes", false, true},
		{"Declined", "no\n", false, false},
		{"Empty", "", false, false},
		{"Flag", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yesConfirm = tt.yes
			t.Cleanup(func() { yesConfirm = false })

			var out bytes.Buffer
			assert.Equal(t, tt.want, confirmPublish(strings.NewReader(tt.input), &out))
			assert.NotEmpty(t, out.String())
		})
	}
}

func TestPrintPublishReport(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	plan := &publish.Plan{Bucket: "site", Prefix: "www"}
	for i := 0; i < 7; i++ {
		plan.Actions = append(plan.Actions, publish.Action{Type: publish.ActionUpload, Key: "www/page", Reason: publish.ReasonNew})
	}
	printPublishReport(zap.New(core), plan)

	assert.Equal(t, 1, logs.FilterMessage("Publish report").Len())
	assert.Equal(t, 5, logs.FilterMessage("Sample action").Len())
	remaining := logs.FilterMessage("Additional actions not shown").All()
	require.Len(t, remaining, 1)
	assert.Equal(t, int64(2), remaining[0].ContextMap()["count"])
}
