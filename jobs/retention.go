package jobs

import (
	"fmt"
	"log"
	"time"
)

// EventPruner deletes stored view events older than a cutoff.
type EventPruner interface {
	DeleteOldEvents(olderThan time.Duration) (int64, error)
}

// RetentionJob prunes the view history
type RetentionJob struct {
	pruner    EventPruner
	retention time.Duration
}

// NewRetentionJob creates a job keeping events for retention
func NewRetentionJob(pruner EventPruner, retention time.Duration) *RetentionJob {
	return &RetentionJob{pruner: pruner, retention: retention}
}

// Run deletes expired events once
func (j *RetentionJob) Run() error {
	if j.pruner == nil {
		return fmt.Errorf("retention job has no event store")
	}
	if j.retention <= 0 {
		return nil
	}

	deleted, err := j.pruner.DeleteOldEvents(j.retention)
	if err != nil {
		return fmt.Errorf("failed to prune view events: %w", err)
	}
	if deleted > 0 {
		log.Printf("Pruned %d view events older than %s", deleted, j.retention)
	}
	return nil
}
