package publish

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Recorder keeps the publish history in a database.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder creates a recorder backed by db.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Migrate creates or updates the history tables.
func (r *Recorder) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&PublishRun{}, &PublishedResource{}); err != nil {
		return fmt.Errorf("failed to migrate publish history: %w", err)
	}
	return nil
}

// Record stores a run and the changes it made in one transaction.
func (r *Recorder) Record(ctx context.Context, plan *Plan, started, finished time.Time) (uint, error) {
	run := PublishRun{
		Bucket:     plan.Bucket,
		Prefix:     plan.Prefix,
		Uploaded:   len(plan.Uploads()),
		Deleted:    len(plan.Deletes()),
		Unchanged:  plan.Unchanged,
		StartedAt:  started,
		FinishedAt: finished,
	}
	for _, a := range plan.Actions {
		run.Resources = append(run.Resources, PublishedResource{
			Path:   a.Path,
			Key:    a.Key,
			Action: string(a.Type),
			Reason: a.Reason,
			Size:   a.Size,
		})
	}

	if err := r.db.WithContext(ctx).Create(&run).Error; err != nil {
		return 0, fmt.Errorf("failed to record publish run: %w", err)
	}
	return run.ID, nil
}

// History returns the most recent runs, newest first.
func (r *Recorder) History(ctx context.Context, limit int) ([]PublishRun, error) {
	var runs []PublishRun
	err := r.db.WithContext(ctx).
		Preload("Resources").
		Order("id desc").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load publish history: %w", err)
	}
	return runs, nil
}
