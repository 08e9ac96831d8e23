package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/domain/model/order"
	"kiosk/internal/core/domain/services"
	"kiosk/internal/core/ports"
	"kiosk/internal/pkg/errs"

	"golang.org/x/sync/errgroup"
)

// ErrReclaimTimeout is reported for an order whose reclamation outlived the
// per-order deadline. The order stays a candidate for the next sweep.
var ErrReclaimTimeout = errors.New("reclamation timed out")

// errNoLongerExpirable marks a candidate that was redeemed after it was listed.
var errNoLongerExpirable = errors.New("order is no longer expirable")

var (
	expirableStatuses   = []order.Status{order.Created, order.PendingPayment, order.Active}
	reclaimableStatuses = []order.Status{order.Completed, order.Expired}
)

// SweepSettings tunes a sweep.
type SweepSettings struct {
	// TTL is the age after which unredeemed orders are expired.
	TTL time.Duration
	// CompletedRetention is how long a completed order is kept before reclamation.
	CompletedRetention time.Duration
	// Concurrency bounds the orders processed in parallel.
	Concurrency int
	// BatchSize bounds the candidates fetched per query.
	BatchSize int
	// ReclaimTimeout bounds the reclamation of one order.
	ReclaimTimeout time.Duration
	// MaxTransitionAttempts bounds retries of the expiring write.
	MaxTransitionAttempts int
	// FailureBackoff is how long an order that failed is left out of the
	// following sweeps. Zero retries it on the very next sweep.
	FailureBackoff time.Duration
}

// SweepSummary counts what one sweep did. Found = Reclaimed + Failed + Skipped.
type SweepSummary struct {
	Found     int
	Expired   int
	Reclaimed int
	Failed    int
	Skipped   int
}

// SweepOrdersCommandHandler is the periodic garbage collector of the kiosk.
//
// A sweep collects two kinds of candidates: unredeemed orders past their
// deadline, which are first expired and then reclaimed, and terminal orders
// not yet reclaimed (completed ones only after CompletedRetention). Every
// candidate is processed on its own under a deadline; a failure is logged and
// counted and the sweep moves on. Failed orders stay candidates but sit out
// FailureBackoff first, so a batch full of orders that keep failing does not
// hold back the newer ones behind it.
type SweepOrdersCommandHandler struct {
	repo      ports.OrderRepository
	reclaimer OrderReclaimer
	clock     kernel.Clock
	metrics   ports.Metrics
	settings  SweepSettings
	failures  *failureBackoff
	logger    *slog.Logger
}

func NewSweepOrdersCommandHandler(
	repo ports.OrderRepository,
	reclaimer OrderReclaimer,
	clock kernel.Clock,
	metrics ports.Metrics,
	settings SweepSettings,
	logger *slog.Logger,
) SweepOrdersCommandHandler {
	if settings.Concurrency <= 0 {
		settings.Concurrency = 1
	}
	if settings.MaxTransitionAttempts <= 0 {
		settings.MaxTransitionAttempts = DefaultMaxTransitionAttempts
	}
	return SweepOrdersCommandHandler{
		repo:      repo,
		reclaimer: reclaimer,
		clock:     clock,
		metrics:   metrics,
		settings:  settings,
		failures:  newFailureBackoff(settings.FailureBackoff),
		logger:    logger.With("component", "reclamation-sweeper"),
	}
}

type sweepCandidate struct {
	id     kernel.UUID
	expire bool
}

// Handle runs one sweep. It fails only when candidates cannot be listed.
func (h *SweepOrdersCommandHandler) Handle(ctx context.Context, cmd SweepOrdersCommand) (SweepSummary, error) {
	if err := cmd.Validate(); err != nil {
		return SweepSummary{}, err
	}

	now := h.clock.Now()
	candidates, err := h.collect(ctx, now)
	if err != nil {
		return SweepSummary{}, err
	}

	var (
		mu      sync.Mutex
		summary = SweepSummary{Found: len(candidates)}
	)

	g := new(errgroup.Group)
	g.SetLimit(h.settings.Concurrency)
	for _, c := range candidates {
		g.Go(func() error {
			expired, outcome, procErr := h.process(ctx, c)

			if procErr != nil {
				h.failures.fail(c.id, now)
			} else {
				h.failures.clear(c.id)
			}

			mu.Lock()
			defer mu.Unlock()
			if expired {
				summary.Expired++
			}
			switch {
			case procErr != nil:
				summary.Failed++
				h.logger.ErrorContext(ctx, "failed to reclaim order",
					"order_id", c.id.String(), "error", procErr)
			case outcome == services.Reclaimed:
				summary.Reclaimed++
			default:
				summary.Skipped++
			}
			return nil
		})
	}
	_ = g.Wait()

	h.metrics.SweepFinished(summary.Found, summary.Expired, summary.Reclaimed, summary.Failed)
	if summary.Found > 0 {
		h.logger.InfoContext(ctx, "sweep finished",
			"found", summary.Found,
			"expired", summary.Expired,
			"reclaimed", summary.Reclaimed,
			"failed", summary.Failed,
			"skipped", summary.Skipped,
		)
	}
	return summary, nil
}

// collect lists both candidate sets before anything is processed, so an order
// that fails in this sweep is not picked up again by the same sweep.
//
// Orders backing off are skipped. Each query asks for that many extra rows so
// a full batch of them still leaves BatchSize rows for the rest.
func (h *SweepOrdersCommandHandler) collect(ctx context.Context, now time.Time) ([]sweepCandidate, error) {
	backingOff := h.failures.active(now)
	limit := h.settings.BatchSize
	if limit > 0 {
		limit += len(backingOff)
	}

	stale, err := h.repo.QueryByStatusAndAge(ctx, expirableStatuses, now.Add(-h.settings.TTL), limit)
	if err != nil {
		return nil, fmt.Errorf("query expirable orders: %w", err)
	}
	terminal, err := h.repo.QueryUnreclaimed(ctx, reclaimableStatuses, limit)
	if err != nil {
		return nil, fmt.Errorf("query reclaimable orders: %w", err)
	}

	seen := make(map[kernel.UUID]struct{}, len(stale)+len(terminal))
	candidates := make([]sweepCandidate, 0, len(stale)+len(terminal))
	take := func(o *order.Order, expire bool) {
		seen[o.ID()] = struct{}{}
		candidates = append(candidates, sweepCandidate{id: o.ID(), expire: expire})
	}
	taken := 0
	for _, o := range stale {
		if _, skip := backingOff[o.ID()]; skip || !o.IsExpired(now) || h.full(taken) {
			continue
		}
		take(o, true)
		taken++
	}
	taken = 0
	for _, o := range terminal {
		if _, skip := backingOff[o.ID()]; skip || h.full(taken) {
			continue
		}
		if _, dup := seen[o.ID()]; dup || !o.ReclaimDue(now, h.settings.CompletedRetention) {
			continue
		}
		take(o, false)
		taken++
	}
	return candidates, nil
}

func (h *SweepOrdersCommandHandler) full(taken int) bool {
	return h.settings.BatchSize > 0 && taken >= h.settings.BatchSize
}

// process expires c if needed and reclaims it, bounded by ReclaimTimeout.
func (h *SweepOrdersCommandHandler) process(ctx context.Context, c sweepCandidate) (bool, services.ReclaimOutcome, error) {
	if h.settings.ReclaimTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.settings.ReclaimTimeout)
		defer cancel()
	}

	type result struct {
		expired bool
		outcome services.ReclaimOutcome
		err     error
	}
	done := make(chan result, 1)
	go func() {
		var r result
		if c.expire {
			r.expired, r.err = h.expire(ctx, c.id)
			if errors.Is(r.err, errNoLongerExpirable) {
				done <- result{}
				return
			}
		}
		if r.err == nil {
			r.outcome, r.err = h.reclaimer.Reclaim(ctx, c.id)
		}
		done <- r
	}()

	// A store call that ignores ctx must not hold up the sweep; the goroutine
	// finishes on its own and its result is dropped.
	select {
	case r := <-done:
		return r.expired, r.outcome, r.err
	case <-ctx.Done():
		return false, 0, fmt.Errorf("%w: order %s: %w", ErrReclaimTimeout, c.id, ctx.Err())
	}
}

// expire moves c to EXPIRED. It reports false when the order left the
// expirable states on its own (redeemed in the meantime).
func (h *SweepOrdersCommandHandler) expire(ctx context.Context, id kernel.UUID) (bool, error) {
	expired := false
	err := retryOnConflict(ctx, h.settings.MaxTransitionAttempts, "expire order "+id.String(), func(ctx context.Context) error {
		o, err := h.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if o.Status() == order.Expired {
			return nil
		}
		expected := o.Status()
		if err = o.Expire(); err != nil {
			return err
		}
		if err = h.repo.ConditionalUpdate(ctx, o, expected); err != nil {
			return err
		}
		expired = true
		return nil
	})
	if errors.Is(err, errs.ErrInvalidState) && !errors.Is(err, errs.ErrPreconditionFailed) {
		return false, errNoLongerExpirable
	}
	return expired, err
}

// failureBackoff remembers when orders last failed. It is shared by every
// sweep of one handler; entries older than the backoff are dropped lazily.
type failureBackoff struct {
	mu     sync.Mutex
	window time.Duration
	failed map[kernel.UUID]time.Time
}

func newFailureBackoff(window time.Duration) *failureBackoff {
	return &failureBackoff{window: window, failed: make(map[kernel.UUID]time.Time)}
}

func (b *failureBackoff) fail(id kernel.UUID, at time.Time) {
	if b.window <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failed[id] = at
}

func (b *failureBackoff) clear(id kernel.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failed, id)
}

// active returns the orders still backing off at now.
func (b *failureBackoff) active(now time.Time) map[kernel.UUID]struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[kernel.UUID]struct{}, len(b.failed))
	for id, at := range b.failed {
		if now.Sub(at) >= b.window {
			delete(b.failed, id)
			continue
		}
		out[id] = struct{}{}
	}
	return out
}
