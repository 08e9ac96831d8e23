package commands

import (
	"errors"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/pkg/guard"
)

var ErrOpenPaymentCommandIsNotConstructed = errors.New(
	"OpenPaymentCommand must be created via NewOpenPaymentCommand constructor",
)

// OpenPaymentCommand asks the payment gateway to open a payment for an order.
type OpenPaymentCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewOpenPaymentCommand(orderID kernel.UUID) (OpenPaymentCommand, error) {
	if err := orderID.Validate(); err != nil {
		return OpenPaymentCommand{}, err
	}
	return OpenPaymentCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c OpenPaymentCommand) Validate() error {
	return c.guard.Validate(ErrOpenPaymentCommandIsNotConstructed)
}

func (c OpenPaymentCommand) OrderID() kernel.UUID {
	return c.orderID
}
