// Package jobs provides background job processing functionality.
package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

const defaultInterval = time.Hour

// JobManager handles background job execution
type JobManager struct {
	retentionJob *RetentionJob
	interval     time.Duration
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	running      bool
	mu           sync.RWMutex
}

// NewJobManager creates a new job manager
func NewJobManager(retentionJob *RetentionJob, interval time.Duration) *JobManager {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &JobManager{
		retentionJob: retentionJob,
		interval:     interval,
	}
}

// Start begins the job manager background processing
func (jm *JobManager) Start() {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	if jm.running {
		log.Println("Job manager is already running")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	jm.cancel = cancel
	jm.running = true
	log.Println("Starting job manager...")

	jm.wg.Add(1)
	go jm.runPeriodicRetention(ctx)
}

// Stop stops the job manager
func (jm *JobManager) Stop() {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	if !jm.running {
		return
	}

	log.Println("Stopping job manager...")
	jm.cancel()
	jm.running = false

	// Wait for all jobs to finish; jobs never take mu
	jm.wg.Wait()
	log.Println("Job manager stopped")
}

// IsRunning returns whether the job manager is currently running
func (jm *JobManager) IsRunning() bool {
	jm.mu.RLock()
	defer jm.mu.RUnlock()
	return jm.running
}

// RunNow prunes expired view events in the background. It works whether or
// not the manager is running; Stop and Wait also wait for these runs.
func (jm *JobManager) RunNow() {
	if jm.retentionJob == nil {
		log.Printf("Cannot run retention: no retention job configured")
		return
	}

	jm.mu.Lock()
	defer jm.mu.Unlock()

	jm.wg.Add(1)
	go func() {
		defer jm.wg.Done()
		if err := jm.retentionJob.Run(); err != nil {
			log.Printf("Retention run failed: %v", err)
		}
	}()
}

// Wait blocks until every started job has returned
func (jm *JobManager) Wait() {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	jm.wg.Wait()
}

// runPeriodicRetention runs the retention job periodically
func (jm *JobManager) runPeriodicRetention(ctx context.Context) {
	defer jm.wg.Done()

	// Skip if no retention job is configured
	if jm.retentionJob == nil {
		log.Println("No retention job configured, skipping periodic pruning")
		<-ctx.Done()
		return
	}

	// Run immediately on startup
	if err := jm.retentionJob.Run(); err != nil {
		log.Printf("Initial retention run failed: %v", err)
	}

	ticker := time.NewTicker(jm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Periodic retention job stopped")
			return
		case <-ticker.C:
			if err := jm.retentionJob.Run(); err != nil {
				log.Printf("Periodic retention run failed: %v", err)
			}
		}
	}
}
