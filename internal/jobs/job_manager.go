package jobs

import (
	"context"
	"fmt"
)

// JobManager starts and stops the background work of the service.
type JobManager struct {
	reclamationJob *ReclamationJob
	queue          *ReclamationQueue
}

// NewJobManager takes the sweep job and, in async reclamation mode, the queue
// that serves markPrinted. queue may be nil.
func NewJobManager(reclamationJob *ReclamationJob, queue *ReclamationQueue) *JobManager {
	return &JobManager{
		reclamationJob: reclamationJob,
		queue:          queue,
	}
}

// StartAll starts the queue workers first so completions enqueued during
// startup are served.
func (jm *JobManager) StartAll(ctx context.Context) error {
	if jm.queue != nil {
		jm.queue.Start()
	}

	if err := jm.reclamationJob.Start(ctx); err != nil {
		if jm.queue != nil {
			jm.queue.Stop()
		}
		return fmt.Errorf("failed to start reclamation job: %w", err)
	}

	return nil
}

// StopAll stops the sweeper, waiting for a running sweep, then the queue.
func (jm *JobManager) StopAll() {
	jm.reclamationJob.Stop()
	if jm.queue != nil {
		jm.queue.Stop()
	}
}
