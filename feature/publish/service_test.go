package publish

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sitesync/core/database"
	"sitesync/core/files"
	"sitesync/core/sitemap"
	"sitesync/core/storage/mocks"
)

type staticResources sitemap.ResourceList

func (s staticResources) Resources() sitemap.ResourceList {
	return sitemap.ResourceList(s)
}

func objects(infos ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(infos))
	for _, info := range infos {
		ch <- info
	}
	close(ch)
	return ch
}

func removeErrors(errs ...minio.RemoveObjectError) <-chan minio.RemoveObjectError {
	ch := make(chan minio.RemoveObjectError, len(errs))
	for _, e := range errs {
		ch <- e
	}
	close(ch)
	return ch
}

// setupResources writes the source files and returns the matching resources:
// about.html (3 bytes), blog/post.html from post.html.tmpl (4 bytes) and
// index.html (5 bytes).
func setupResources(t *testing.T) staticResources {
	t.Helper()
	dir := t.TempDir()
	entries := []struct {
		path, rel, content string
	}{
		{"about.html", "about.html", "abc"},
		{"blog/post.html", "blog/post.html.tmpl", "post"},
		{"index.html", "index.html", "hello"},
	}

	var out staticResources
	for _, e := range entries {
		full := filepath.Join(dir, filepath.FromSlash(e.rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(e.content), 0o644))
		out = append(out, sitemap.Resource{
			Path:   e.path,
			Source: files.SourceFile{RelativePath: e.rel, FullPath: full, Kind: files.KindSource},
		})
	}
	return out
}

func remoteState() <-chan minio.ObjectInfo {
	return objects(
		minio.ObjectInfo{Key: "site/index.html", Size: 5},
		minio.ObjectInfo{Key: "site/about.html", Size: 1},
		minio.ObjectInfo{Key: "site/old.html", Size: 9},
		minio.ObjectInfo{Key: "site/manifest.json", Size: 120},
	)
}

func newTestService(m *mocks.Client, res ResourceSource, rec *Recorder) *Service {
	return NewService(m, "bucket", Config{Prefix: "/site/", Manifest: "manifest.json", Concurrency: 2}, res, rec, zap.NewNop())
}

func TestPlan(t *testing.T) {
	m := new(mocks.Client)
	m.On("ListObjects", mock.Anything, "bucket", minio.ListObjectsOptions{Prefix: "site/", Recursive: true}).Return(remoteState())

	plan, err := newTestService(m, setupResources(t), nil).Plan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "bucket", plan.Bucket)
	assert.Equal(t, "site", plan.Prefix)
	assert.Equal(t, 1, plan.Unchanged)

	uploads := plan.Uploads()
	require.Len(t, uploads, 2)
	assert.Equal(t, "site/about.html", uploads[0].Key)
	assert.Equal(t, ReasonChanged, uploads[0].Reason)
	assert.Equal(t, int64(3), uploads[0].Size)
	assert.Equal(t, "site/blog/post.html", uploads[1].Key)
	assert.Equal(t, ReasonNew, uploads[1].Reason)
	assert.Equal(t, "blog/post.html", uploads[1].Path)

	deletes := plan.Deletes()
	require.Len(t, deletes, 1)
	assert.Equal(t, "site/old.html", deletes[0].Key)
	assert.Equal(t, ReasonOrphaned, deletes[0].Reason)

	require.Len(t, plan.Entries, 3)
	assert.Equal(t, "blog/post.html.tmpl", plan.Entries[1].Source)
}

func TestPlan_EmptyPrefix(t *testing.T) {
	m := new(mocks.Client)
	m.On("ListObjects", mock.Anything, "bucket", minio.ListObjectsOptions{Recursive: true}).Return(objects())

	svc := NewService(m, "bucket", Config{}, setupResources(t), nil, zap.NewNop())
	plan, err := svc.Plan(context.Background())
	require.NoError(t, err)

	require.Len(t, plan.Uploads(), 3)
	assert.Equal(t, "about.html", plan.Uploads()[0].Key)
	assert.Empty(t, plan.Deletes())
}

func TestPlan_ListError(t *testing.T) {
	m := new(mocks.Client)
	m.On("ListObjects", mock.Anything, "bucket", mock.Anything).Return(objects(minio.ObjectInfo{Err: errors.New("access denied")}))

	_, err := newTestService(m, setupResources(t), nil).Plan(context.Background())
	assert.ErrorContains(t, err, "failed to list bucket bucket: access denied")
}

func TestPlan_MissingSourceFile(t *testing.T) {
	m := new(mocks.Client)
	m.On("ListObjects", mock.Anything, "bucket", mock.Anything).Return(objects())

	res := staticResources{{
		Path:   "gone.html",
		Source: files.SourceFile{RelativePath: "gone.html", FullPath: filepath.Join(t.TempDir(), "gone.html")},
	}}
	_, err := newTestService(m, res, nil).Plan(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApply_RequiresConfirmation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"Default", Options{}},
		{"DryRun", Options{DryRun: true}},
		{"ConfirmedDryRun", Options{DryRun: true, Confirmed: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(mocks.Client)
			plan := &Plan{Actions: []Action{{Type: ActionUpload, Key: "site/index.html"}}}

			result, err := newTestService(m, staticResources{}, nil).Apply(context.Background(), plan, tt.opts)
			assert.ErrorIs(t, err, ErrNotConfirmed)
			assert.Nil(t, result)
			m.AssertNotCalled(t, "FPutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func expectPlan(t *testing.T, m *mocks.Client, res staticResources) *Plan {
	t.Helper()
	m.On("ListObjects", mock.Anything, "bucket", mock.Anything).Return(remoteState())
	plan, err := newTestService(m, res, nil).Plan(context.Background())
	require.NoError(t, err)
	return plan
}

func TestApply(t *testing.T) {
	m := new(mocks.Client)
	res := setupResources(t)
	plan := expectPlan(t, m, res)

	m.On("FPutObject", mock.Anything, "bucket", "site/about.html", res[0].Source.FullPath, mock.Anything).
		Return(minio.UploadInfo{}, nil).Once()
	m.On("FPutObject", mock.Anything, "bucket", "site/blog/post.html", res[1].Source.FullPath, mock.Anything).
		Return(minio.UploadInfo{}, nil).Once()
	m.On("RemoveObjects", mock.Anything, "bucket", mock.Anything).Return(nil)

	var manifest Manifest
	m.On("PutObject", mock.Anything, "bucket", "site/manifest.json", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			data, err := io.ReadAll(args.Get(3).(io.Reader))
			require.NoError(t, err)
			assert.Equal(t, int64(len(data)), args.Get(4).(int64))
			require.NoError(t, json.Unmarshal(data, &manifest))
		}).
		Return(minio.UploadInfo{}, nil)

	result, err := newTestService(m, res, nil).Apply(context.Background(), plan, Options{Confirmed: true})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Uploaded)
	assert.Equal(t, 1, result.Deleted)
	assert.Equal(t, 1, result.Unchanged)
	assert.Equal(t, "site/manifest.json", result.Manifest)
	assert.Zero(t, result.RunID)
	assert.Equal(t, []string{"site/old.html"}, m.Removed)

	require.Len(t, manifest.Resources, 3)
	assert.Equal(t, "index.html", manifest.Resources[2].Path)
	assert.Equal(t, int64(5), manifest.Resources[2].Size)
	m.AssertExpectations(t)
}

func TestApply_UploadFails(t *testing.T) {
	m := new(mocks.Client)
	res := setupResources(t)
	plan := expectPlan(t, m, res)

	m.On("FPutObject", mock.Anything, "bucket", "site/about.html", mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("connection reset"))
	m.On("FPutObject", mock.Anything, "bucket", "site/blog/post.html", mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	_, err := newTestService(m, res, nil).Apply(context.Background(), plan, Options{Confirmed: true})
	assert.ErrorContains(t, err, "failed to upload site/about.html: connection reset")
	m.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApply_DeleteFails(t *testing.T) {
	m := new(mocks.Client)
	res := setupResources(t)
	plan := expectPlan(t, m, res)

	m.On("FPutObject", mock.Anything, "bucket", mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)
	m.On("RemoveObjects", mock.Anything, "bucket", mock.Anything).
		Return(removeErrors(minio.RemoveObjectError{ObjectName: "site/old.html", Err: errors.New("locked")}))

	result, err := newTestService(m, res, nil).Apply(context.Background(), plan, Options{Confirmed: true})
	assert.ErrorContains(t, err, "failed to delete site/old.html: locked")
	assert.Equal(t, 2, result.Uploaded)
	assert.Equal(t, 0, result.Deleted)
}

func TestApply_RecordsHistory(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	rec := NewRecorder(db)
	require.NoError(t, rec.Migrate(context.Background()))

	m := new(mocks.Client)
	res := setupResources(t)
	plan := expectPlan(t, m, res)
	m.On("FPutObject", mock.Anything, "bucket", mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)
	m.On("RemoveObjects", mock.Anything, "bucket", mock.Anything).Return(nil)
	m.On("PutObject", mock.Anything, "bucket", "site/manifest.json", mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)

	result, err := newTestService(m, res, rec).Apply(context.Background(), plan, Options{Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, uint(1), result.RunID)

	runs, err := rec.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Uploaded)
	assert.Equal(t, 1, runs[0].Deleted)
	assert.Equal(t, 1, runs[0].Unchanged)
	assert.Len(t, runs[0].Resources, 3)
}
