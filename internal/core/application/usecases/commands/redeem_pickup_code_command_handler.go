package commands

import (
	"context"
	"errors"
	"log/slog"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/domain/model/order"
	"kiosk/internal/core/ports"
	"kiosk/internal/pkg/errs"
)

// Redemption outcomes reported to ports.Metrics.
const (
	RedeemPrinting          = "printing"
	RedeemNotFound          = "not_found"
	RedeemAlreadyPrinted    = "already_printed"
	RedeemExpired           = "expired"
	RedeemNoAssets          = "no_assets"
	RedeemDiagnosticReprint = "diagnostic_reprint"
	RedeemFailed            = "failed"
)

// RedeemPickupCodeCommandHandler authorizes a print: ACTIVE -> PRINTING.
//
// The transition is a conditional write on status ACTIVE, so of any number of
// concurrent redemptions of one code exactly one commits. The others re-read
// the order, find it PRINTING and fail with order.ErrAlreadyPrinted.
//
// With diagnosticReprint enabled, redeeming the code of a PRINTING order
// returns the order unchanged instead of failing. This exists for kiosk
// testing only and logs a warning every time.
type RedeemPickupCodeCommandHandler struct {
	repo              ports.OrderRepository
	clock             kernel.Clock
	metrics           ports.Metrics
	maxAttempts       int
	diagnosticReprint bool
	logger            *slog.Logger
}

func NewRedeemPickupCodeCommandHandler(
	repo ports.OrderRepository,
	clock kernel.Clock,
	metrics ports.Metrics,
	maxAttempts int,
	diagnosticReprint bool,
	logger *slog.Logger,
) RedeemPickupCodeCommandHandler {
	return RedeemPickupCodeCommandHandler{
		repo:              repo,
		clock:             clock,
		metrics:           metrics,
		maxAttempts:       maxAttempts,
		diagnosticReprint: diagnosticReprint,
		logger:            logger.With("component", "redeem-pickup-code"),
	}
}

// Handle returns the order now in PRINTING.
//
// Fails with errs.ErrObjectNotFound when no live order holds the code,
// order.ErrAlreadyPrinted, order.ErrPickupCodeExpired or order.ErrNoAssets.
func (h *RedeemPickupCodeCommandHandler) Handle(ctx context.Context, cmd RedeemPickupCodeCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var redeemed *order.Order
	err := retryOnConflict(ctx, h.maxAttempts, "redeem pickup code", func(ctx context.Context) error {
		o, err := h.repo.QueryByCode(ctx, cmd.Code())
		if err != nil {
			return err
		}

		if h.diagnosticReprint && o.Status() == order.Printing {
			h.logger.WarnContext(ctx, "diagnostic reprint of a printing order", "order_id", o.ID().String())
			redeemed = o
			h.metrics.Redemption(RedeemDiagnosticReprint)
			return nil
		}

		if err = o.Redeem(cmd.Code(), h.clock.Now()); err != nil {
			return err
		}
		if err = h.repo.ConditionalUpdate(ctx, o, order.Active); err != nil {
			return err
		}
		redeemed = o
		h.metrics.Redemption(RedeemPrinting)
		return nil
	})
	if err != nil {
		h.metrics.Redemption(redeemOutcome(err))
		return nil, err
	}

	return redeemed, nil
}

func redeemOutcome(err error) string {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return RedeemNotFound
	case errors.Is(err, order.ErrAlreadyPrinted):
		return RedeemAlreadyPrinted
	case errors.Is(err, order.ErrPickupCodeExpired):
		return RedeemExpired
	case errors.Is(err, order.ErrNoAssets):
		return RedeemNoAssets
	default:
		return RedeemFailed
	}
}
