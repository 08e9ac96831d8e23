// Package jobs provides the background work of the kiosk service.
//
// # Available Jobs
//
//  1. ReclamationJob - runs the reclamation sweep on a github.com/robfig/cron/v3
//     schedule (SWEEP_SCHEDULE, "@every 1m" by default). Overlapping ticks are
//     skipped, so at most one sweep runs at a time.
//  2. ReclamationQueue - a bounded queue with a few workers that reclaims an
//     order right after it was marked printed (RECLAIM_MODE=async).
//
// InlineScheduler is the RECLAIM_MODE=sync alternative to the queue: it runs
// the reclaimer on the caller's goroutine.
//
// # Usage
//
//	job := jobs.NewReclamationJob(&sweepHandler, cfg.SweepSchedule, logger)
//	queue := jobs.NewReclamationQueue(reclaimer, cfg.ReclaimQueueSize, 0, cfg.ReclaimTimeout, logger)
//	jobManager := jobs.NewJobManager(job, queue)
//
//	if err := jobManager.StartAll(ctx); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Nothing here propagates reclamation failures. They are logged with the
// order id, and the order stays a sweep candidate until a later sweep succeeds.
package jobs
