package commands

import (
	"context"
	"time"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/domain/model/order"
	"kiosk/internal/core/ports"
)

// CreateOrderCommandHandler registers new orders with expiresAt = now + ttl.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(repo, kernel.SystemClock{}, 24*time.Hour)
//	created, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
//	fmt.Printf("order %s costs %d\n", created.ID(), created.Amount())
type CreateOrderCommandHandler struct {
	repo  ports.OrderRepository
	clock kernel.Clock
	ttl   time.Duration
}

func NewCreateOrderCommandHandler(repo ports.OrderRepository, clock kernel.Clock, ttl time.Duration) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		repo:  repo,
		clock: clock,
		ttl:   ttl,
	}
}

// Handle builds the order and stores it. A duplicate id fails with
// errs.ErrObjectAlreadyExists.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	o, err := order.NewOrder(cmd.OrderID(), cmd.Settings(), cmd.AssetRefs(), "", h.clock.Now(), h.ttl)
	if err != nil {
		return nil, err
	}

	if cmd.PaymentRef() != "" {
		if err = o.OpenPayment(cmd.PaymentRef()); err != nil {
			return nil, err
		}
	}

	if err = h.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}
