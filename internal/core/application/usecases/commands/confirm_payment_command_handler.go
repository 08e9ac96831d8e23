package commands

import (
	"context"
	"log/slog"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/ports"
	"kiosk/internal/pkg/errs"
)

// ConfirmPaymentCommandHandler verifies the payment proof, then issues a pickup
// code and activates the order in one conditional write.
//
// Example:
//
//	cmd, _ := NewConfirmPaymentCommand(orderID, "txn-8812", signature)
//	code, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrSignatureInvalid) {
//	    return echo.ErrUnauthorized
//	}
type ConfirmPaymentCommandHandler struct {
	repo        ports.OrderRepository
	gateway     ports.PaymentGateway
	allocator   CodeAllocator
	maxAttempts int
	logger      *slog.Logger
}

func NewConfirmPaymentCommandHandler(
	repo ports.OrderRepository,
	gateway ports.PaymentGateway,
	allocator CodeAllocator,
	maxAttempts int,
	logger *slog.Logger,
) ConfirmPaymentCommandHandler {
	return ConfirmPaymentCommandHandler{
		repo:        repo,
		gateway:     gateway,
		allocator:   allocator,
		maxAttempts: maxAttempts,
		logger:      logger.With("component", "confirm-payment"),
	}
}

// Handle returns the issued pickup code.
//
// Fails with errs.ErrObjectNotFound for an unknown order, errs.ErrInvalidState
// when the order is past payment, and errs.ErrSignatureInvalid when the proof
// does not verify. The caller learns nothing else about a rejected proof.
func (h *ConfirmPaymentCommandHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (kernel.PickupCode, error) {
	if err := cmd.Validate(); err != nil {
		return kernel.PickupCode{}, err
	}

	o, err := h.repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return kernel.PickupCode{}, err
	}
	if _, err = o.Status().Activate(); err != nil {
		return kernel.PickupCode{}, err
	}

	valid, err := h.gateway.VerifySignature(ctx, o.ID().String(), cmd.PaymentRef(), cmd.Signature())
	if err != nil {
		return kernel.PickupCode{}, err
	}
	if !valid {
		h.logger.WarnContext(ctx, "payment signature rejected", "order_id", o.ID().String())
		return kernel.PickupCode{}, errs.ErrSignatureInvalid
	}

	var code kernel.PickupCode
	err = retryOnConflict(ctx, h.maxAttempts, "confirm payment for order "+o.ID().String(), func(ctx context.Context) error {
		var allocErr error
		code, allocErr = h.allocator.Allocate(ctx, func(ctx context.Context, candidate kernel.PickupCode) error {
			cur, getErr := h.repo.Get(ctx, cmd.OrderID())
			if getErr != nil {
				return getErr
			}
			expected := cur.Status()
			if confirmErr := cur.ConfirmPayment(cmd.PaymentRef(), candidate); confirmErr != nil {
				return confirmErr
			}
			return h.repo.ConditionalUpdate(ctx, cur, expected)
		})
		return allocErr
	})
	if err != nil {
		return kernel.PickupCode{}, err
	}

	h.logger.InfoContext(ctx, "payment confirmed", "order_id", o.ID().String())
	return code, nil
}
