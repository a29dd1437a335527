package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sitesync/core/sitemap"
	"sitesync/core/storage"
)

// ResourceSource provides the resource list to publish.
type ResourceSource interface {
	Resources() sitemap.ResourceList
}

// Service publishes a built site to object storage.
type Service struct {
	client    storage.Client
	bucket    string
	cfg       Config
	resources ResourceSource
	recorder  *Recorder
	logger    *zap.Logger
}

// NewService creates a publisher. recorder may be nil.
func NewService(client storage.Client, bucket string, cfg Config, resources ResourceSource, recorder *Recorder, logger *zap.Logger) *Service {
	if cfg.Manifest == "" {
		cfg.Manifest = "manifest.json"
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	cfg.Prefix = strings.Trim(cfg.Prefix, "/")
	return &Service{
		client:    client,
		bucket:    bucket,
		cfg:       cfg,
		resources: resources,
		recorder:  recorder,
		logger:    logger,
	}
}

// Plan compares the sitemap with the objects under the prefix.
// Resources are uploaded when missing remotely or when their size differs;
// remote objects without a resource are deleted. The manifest is never deleted.
func (s *Service) Plan(ctx context.Context) (*Plan, error) {
	remote, err := s.listRemote(ctx)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Bucket: s.bucket, Prefix: s.cfg.Prefix}
	wanted := make(map[string]struct{})

	for _, r := range s.resources.Resources() {
		info, err := os.Stat(r.Source.FullPath)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", r.Source.FullPath, err)
		}

		key := s.key(r.Path)
		wanted[key] = struct{}{}
		plan.Entries = append(plan.Entries, ManifestEntry{
			Path:   r.Path,
			Key:    key,
			Source: r.Source.RelativePath,
			Size:   info.Size(),
		})

		size, exists := remote[key]
		switch {
		case !exists:
			plan.Actions = append(plan.Actions, s.upload(r, key, info.Size(), ReasonNew))
		case size != info.Size():
			plan.Actions = append(plan.Actions, s.upload(r, key, info.Size(), ReasonChanged))
		default:
			plan.Unchanged++
		}
	}

	manifestKey := s.key(s.cfg.Manifest)
	var orphans []string
	for key := range remote {
		if _, ok := wanted[key]; ok || key == manifestKey {
			continue
		}
		orphans = append(orphans, key)
	}
	sort.Strings(orphans)
	for _, key := range orphans {
		plan.Actions = append(plan.Actions, Action{
			Type:   ActionDelete,
			Key:    key,
			Size:   remote[key],
			Reason: ReasonOrphaned,
		})
	}

	s.logger.Info("Publish plan ready",
		zap.Int("uploads", len(plan.Uploads())),
		zap.Int("deletes", len(plan.Deletes())),
		zap.Int("unchanged", plan.Unchanged),
	)
	return plan, nil
}

// Apply executes a plan. It refuses to run unless opts is confirmed and not a
// dry run.
func (s *Service) Apply(ctx context.Context, plan *Plan, opts Options) (*Result, error) {
	if opts.DryRun || !opts.Confirmed {
		return nil, ErrNotConfirmed
	}

	started := time.Now()
	result := &Result{Unchanged: plan.Unchanged, Manifest: s.key(s.cfg.Manifest)}

	uploaded, err := s.uploadAll(ctx, plan.Uploads())
	result.Uploaded = uploaded
	if err != nil {
		return result, err
	}

	deleted, err := s.deleteAll(ctx, plan.Deletes())
	result.Deleted = deleted
	if err != nil {
		return result, err
	}

	if err := s.writeManifest(ctx, plan.Entries); err != nil {
		return result, err
	}

	finished := time.Now()
	result.Took = finished.Sub(started)

	if s.recorder != nil {
		id, err := s.recorder.Record(ctx, plan, started, finished)
		if err != nil {
			// The bucket is already up to date; history is best effort.
			s.logger.Warn("Failed to record publish run", zap.Error(err))
		} else {
			result.RunID = id
		}
	}

	s.logger.Info("Publish complete",
		zap.Int("uploaded", result.Uploaded),
		zap.Int("deleted", result.Deleted),
		zap.Duration("took", result.Took),
	)
	return result, nil
}

func (s *Service) uploadAll(ctx context.Context, uploads []Action) (int, error) {
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for _, a := range uploads {
		g.Go(func() error {
			_, err := s.client.FPutObject(gctx, s.bucket, a.Key, a.File, minio.PutObjectOptions{
				ContentType: contentType(a.Key),
			})
			if err != nil {
				return fmt.Errorf("failed to upload %s: %w", a.Key, err)
			}
			done.Add(1)
			s.logger.Debug("Uploaded resource", zap.String("key", a.Key), zap.String("reason", a.Reason))
			return nil
		})
	}

	err := g.Wait()
	return int(done.Load()), err
}

func (s *Service) deleteAll(ctx context.Context, deletes []Action) (int, error) {
	if len(deletes) == 0 {
		return 0, nil
	}

	objects := make(chan minio.ObjectInfo, len(deletes))
	for _, a := range deletes {
		objects <- minio.ObjectInfo{Key: a.Key}
	}
	close(objects)

	failed := 0
	var firstErr error
	for rErr := range s.client.RemoveObjects(ctx, s.bucket, objects, minio.RemoveObjectsOptions{}) {
		failed++
		s.logger.Error("Failed to delete object", zap.String("key", rErr.ObjectName), zap.Error(rErr.Err))
		if firstErr == nil {
			firstErr = fmt.Errorf("failed to delete %s: %w", rErr.ObjectName, rErr.Err)
		}
	}
	return len(deletes) - failed, firstErr
}

func (s *Service) writeManifest(ctx context.Context, entries []ManifestEntry) error {
	if entries == nil {
		entries = []ManifestEntry{}
	}
	data, err := json.MarshalIndent(Manifest{GeneratedAt: time.Now().UTC(), Resources: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	key := s.key(s.cfg.Manifest)
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", key, err)
	}
	return nil
}

func (s *Service) listRemote(ctx context.Context) (map[string]int64, error) {
	opts := minio.ListObjectsOptions{Recursive: true}
	if s.cfg.Prefix != "" {
		opts.Prefix = s.cfg.Prefix + "/"
	}

	remote := make(map[string]int64)
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", s.bucket, obj.Err)
		}
		remote[obj.Key] = obj.Size
	}
	return remote, nil
}

func (s *Service) upload(r sitemap.Resource, key string, size int64, reason string) Action {
	return Action{
		Type:   ActionUpload,
		Key:    key,
		Path:   r.Path,
		File:   r.Source.FullPath,
		Size:   size,
		Reason: reason,
	}
}

func (s *Service) key(p string) string {
	p = strings.TrimPrefix(p, "/")
	if s.cfg.Prefix == "" {
		return p
	}
	return path.Join(s.cfg.Prefix, p)
}

func contentType(key string) string {
	if t := mime.TypeByExtension(path.Ext(key)); t != "" {
		return t
	}
	return "application/octet-stream"
}
