package commands

import (
	"context"

	"kiosk/internal/core/domain/model/order"
	"kiosk/internal/core/ports"
)

// OpenPaymentCommandHandler moves CREATED -> PENDING_PAYMENT after the gateway
// registered the payment. Repeating the call for a PENDING_PAYMENT order
// returns the reference already stored without calling the gateway again.
type OpenPaymentCommandHandler struct {
	repo        ports.OrderRepository
	gateway     ports.PaymentGateway
	maxAttempts int
}

func NewOpenPaymentCommandHandler(
	repo ports.OrderRepository,
	gateway ports.PaymentGateway,
	maxAttempts int,
) OpenPaymentCommandHandler {
	return OpenPaymentCommandHandler{repo: repo, gateway: gateway, maxAttempts: maxAttempts}
}

// Handle returns the gateway's payment reference.
func (h *OpenPaymentCommandHandler) Handle(ctx context.Context, cmd OpenPaymentCommand) (string, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}

	o, err := h.repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return "", err
	}
	if o.Status() == order.PendingPayment {
		return o.PaymentRef(), nil
	}
	if _, err = o.Status().OpenPayment(); err != nil {
		return "", err
	}

	paymentRef, err := h.gateway.OpenOrder(ctx, o.ID().String(), o.Amount())
	if err != nil {
		return "", err
	}

	err = retryOnConflict(ctx, h.maxAttempts, "open payment for order "+o.ID().String(), func(ctx context.Context) error {
		cur, getErr := h.repo.Get(ctx, cmd.OrderID())
		if getErr != nil {
			return getErr
		}
		if cur.Status() == order.PendingPayment {
			paymentRef = cur.PaymentRef()
			return nil
		}
		expected := cur.Status()
		if openErr := cur.OpenPayment(paymentRef); openErr != nil {
			return openErr
		}
		return h.repo.ConditionalUpdate(ctx, cur, expected)
	})
	if err != nil {
		return "", err
	}

	return paymentRef, nil
}
