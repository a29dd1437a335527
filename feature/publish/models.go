package publish

import "time"

// PublishRun is one applied publish.
type PublishRun struct {
	ID         uint      `gorm:"primaryKey"`
	Bucket     string    `gorm:"size:255"`
	Prefix     string    `gorm:"size:255"`
	Uploaded   int       `gorm:"not null"`
	Deleted    int       `gorm:"not null"`
	Unchanged  int       `gorm:"not null"`
	StartedAt  time.Time `gorm:"not null"`
	FinishedAt time.Time `gorm:"not null"`

	Resources []PublishedResource `gorm:"foreignKey:RunID"`
}

// PublishedResource is one change made by a run.
type PublishedResource struct {
	ID     uint   `gorm:"primaryKey"`
	RunID  uint   `gorm:"index;not null"`
	Path   string `gorm:"size:512"`
	Key    string `gorm:"size:1024"`
	Action string `gorm:"size:16"`
	Reason string `gorm:"size:16"`
	Size   int64
}
