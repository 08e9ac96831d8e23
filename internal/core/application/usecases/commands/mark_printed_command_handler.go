package commands

import (
	"context"
	"log/slog"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/domain/model/order"
	"kiosk/internal/core/ports"
)

// MarkPrintedCommandHandler completes a printing order and schedules its
// reclamation.
//
// Only the caller whose PRINTING -> COMPLETED write committed schedules
// reclamation, so it is requested at most once per completion. A repeated
// call fails with errs.ErrInvalidState and schedules nothing.
type MarkPrintedCommandHandler struct {
	repo        ports.OrderRepository
	clock       kernel.Clock
	scheduler   ports.ReclamationScheduler
	maxAttempts int
	logger      *slog.Logger
}

func NewMarkPrintedCommandHandler(
	repo ports.OrderRepository,
	clock kernel.Clock,
	scheduler ports.ReclamationScheduler,
	maxAttempts int,
	logger *slog.Logger,
) MarkPrintedCommandHandler {
	return MarkPrintedCommandHandler{
		repo:        repo,
		clock:       clock,
		scheduler:   scheduler,
		maxAttempts: maxAttempts,
		logger:      logger.With("component", "mark-printed"),
	}
}

func (h *MarkPrintedCommandHandler) Handle(ctx context.Context, cmd MarkPrintedCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	err := retryOnConflict(ctx, h.maxAttempts, "mark order "+cmd.OrderID().String()+" printed", func(ctx context.Context) error {
		o, err := h.repo.Get(ctx, cmd.OrderID())
		if err != nil {
			return err
		}
		if err = o.Complete(h.clock.Now()); err != nil {
			return err
		}
		return h.repo.ConditionalUpdate(ctx, o, order.Printing)
	})
	if err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "order printed", "order_id", cmd.OrderID().String())
	h.scheduler.Schedule(ctx, cmd.OrderID())
	return nil
}
