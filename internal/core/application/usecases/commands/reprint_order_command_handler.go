package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/domain/model/order"
	"kiosk/internal/core/ports"
	"kiosk/internal/pkg/errs"
)

// ReprintOrderCommandHandler creates an order that shares the source order's
// files. The shared files stay in the object store until every order listing
// them has been reclaimed.
type ReprintOrderCommandHandler struct {
	repo   ports.OrderRepository
	clock  kernel.Clock
	ttl    time.Duration
	logger *slog.Logger
}

func NewReprintOrderCommandHandler(
	repo ports.OrderRepository,
	clock kernel.Clock,
	ttl time.Duration,
	logger *slog.Logger,
) ReprintOrderCommandHandler {
	return ReprintOrderCommandHandler{
		repo:   repo,
		clock:  clock,
		ttl:    ttl,
		logger: logger.With("component", "reprint-order"),
	}
}

// Handle fails with errs.ErrInvalidState when the source was already reclaimed
// or has no files.
//
// The source is read again after the reprint is stored. If it got reclaimed
// in between, the reclaimer may not have seen the reprint as a holder of the
// shared files, so the reprint is expired again and the sweeper releases them.
func (h *ReprintOrderCommandHandler) Handle(ctx context.Context, cmd ReprintOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	source, err := h.repo.Get(ctx, cmd.SourceID())
	if err != nil {
		return nil, err
	}
	if err = checkReprintable(source); err != nil {
		return nil, err
	}

	reprint, err := order.NewOrder(cmd.OrderID(), source.Settings(), source.AssetRefs(), "", h.clock.Now(), h.ttl)
	if err != nil {
		return nil, err
	}
	if err = h.repo.Create(ctx, reprint); err != nil {
		return nil, err
	}

	source, err = h.repo.Get(ctx, cmd.SourceID())
	if err == nil {
		err = checkReprintable(source)
	}
	if err != nil {
		h.withdraw(ctx, reprint)
		return nil, err
	}

	return reprint, nil
}

// withdraw expires a reprint whose source went away. It goes through the
// sweeper like any other expired order, so files nobody else lists get deleted.
func (h *ReprintOrderCommandHandler) withdraw(ctx context.Context, reprint *order.Order) {
	err := reprint.Expire()
	if err == nil {
		err = h.repo.ConditionalUpdate(ctx, reprint, order.Created)
	}
	if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
		h.logger.ErrorContext(ctx, "failed to withdraw reprint",
			"order_id", reprint.ID().String(), "error", err)
	}
}

func checkReprintable(source *order.Order) error {
	if source.IsReclaimed() || !source.HasAssets() {
		return errs.NewInvalidStateError("order", source.Status().String(), "reprint")
	}
	return nil
}
