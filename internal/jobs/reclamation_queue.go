package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"kiosk/internal/core/application/usecases/commands"
	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/domain/services"
)

const (
	DefaultQueueSize      = 256
	DefaultQueueWorkers   = 2
	DefaultReclaimTimeout = 30 * time.Second
)

// ReclamationQueue reclaims completed orders on a small pool of workers.
// It implements ports.ReclamationScheduler.
//
// Schedule never blocks: when the buffer is full, or the queue was stopped,
// the order is dropped with a warning and the periodic sweep reclaims it later.
type ReclamationQueue struct {
	reclaimer commands.OrderReclaimer
	items     chan kernel.UUID
	workers   int
	timeout   time.Duration
	logger    *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	wg        sync.WaitGroup
}

func NewReclamationQueue(
	reclaimer commands.OrderReclaimer,
	size, workers int,
	timeout time.Duration,
	logger *slog.Logger,
) *ReclamationQueue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if workers <= 0 {
		workers = DefaultQueueWorkers
	}
	if timeout <= 0 {
		timeout = DefaultReclaimTimeout
	}
	return &ReclamationQueue{
		reclaimer: reclaimer,
		items:     make(chan kernel.UUID, size),
		workers:   workers,
		timeout:   timeout,
		logger:    logger.With("component", "reclamation_queue"),
		stop:      make(chan struct{}),
	}
}

func (q *ReclamationQueue) Schedule(ctx context.Context, orderID kernel.UUID) {
	select {
	case <-q.stop:
		q.logger.WarnContext(ctx, "Reclamation queue stopped, leaving order to the sweeper", "order_id", orderID.String())
		return
	default:
	}

	select {
	case q.items <- orderID:
	default:
		q.logger.WarnContext(ctx, "Reclamation queue full, leaving order to the sweeper", "order_id", orderID.String())
	}
}

// Start launches the workers. Calling it again has no effect.
func (q *ReclamationQueue) Start() {
	q.startOnce.Do(func() {
		for range q.workers {
			q.wg.Add(1)
			go q.work()
		}
		q.logger.Info("Reclamation queue started", "workers", q.workers, "capacity", cap(q.items))
	})
}

// Stop makes the workers exit after their current item. Items still buffered
// are abandoned.
func (q *ReclamationQueue) Stop() {
	q.stopOnce.Do(func() { close(q.stop) })
	q.wg.Wait()
	q.logger.Info("Reclamation queue stopped", "abandoned", len(q.items))
}

// Pending is the number of buffered orders.
func (q *ReclamationQueue) Pending() int {
	return len(q.items)
}

func (q *ReclamationQueue) work() {
	defer q.wg.Done()
	for {
		select {
		case <-q.stop:
			return
		case id := <-q.items:
			q.reclaim(id)
		}
	}
}

func (q *ReclamationQueue) reclaim(id kernel.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	reclaimAndLog(ctx, q.reclaimer, id, q.logger)
}

// InlineScheduler reclaims right away on the caller's goroutine. It implements
// ports.ReclamationScheduler for RECLAIM_MODE=sync.
type InlineScheduler struct {
	reclaimer commands.OrderReclaimer
	timeout   time.Duration
	logger    *slog.Logger
}

func NewInlineScheduler(reclaimer commands.OrderReclaimer, timeout time.Duration, logger *slog.Logger) *InlineScheduler {
	if timeout <= 0 {
		timeout = DefaultReclaimTimeout
	}
	return &InlineScheduler{
		reclaimer: reclaimer,
		timeout:   timeout,
		logger:    logger.With("component", "inline_reclamation"),
	}
}

// Schedule detaches from the caller's cancellation: the order has already
// been completed, and its reclamation should not die with the request.
func (s *InlineScheduler) Schedule(ctx context.Context, orderID kernel.UUID) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	reclaimAndLog(ctx, s.reclaimer, orderID, s.logger)
}

func reclaimAndLog(ctx context.Context, reclaimer commands.OrderReclaimer, id kernel.UUID, logger *slog.Logger) {
	outcome, err := reclaimer.Reclaim(ctx, id)
	if err != nil {
		logger.ErrorContext(ctx, "Reclamation failed, the sweeper will retry",
			"order_id", id.String(), "error", err)
		return
	}
	if outcome == services.AlreadyReclaimed {
		logger.DebugContext(ctx, "Order was already reclaimed", "order_id", id.String())
	}
}
