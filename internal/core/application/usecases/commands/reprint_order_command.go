package commands

import (
	"errors"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/pkg/errs"
	"kiosk/internal/pkg/guard"
)

var ErrReprintOrderCommandIsNotConstructed = errors.New(
	"ReprintOrderCommand must be created via NewReprintOrderCommand constructor",
)

// ReprintOrderCommand asks for a new order printing the same files with the
// same settings as an existing one.
type ReprintOrderCommand struct { //nolint:recvcheck //using for validation
	sourceID kernel.UUID
	orderID  kernel.UUID

	guard guard.ConstructorGuard
}

func NewReprintOrderCommand(sourceID, orderID kernel.UUID) (ReprintOrderCommand, error) {
	if err := errors.Join(sourceID.Validate(), orderID.Validate()); err != nil {
		return ReprintOrderCommand{}, err
	}
	if sourceID.IsEqual(orderID) {
		return ReprintOrderCommand{}, errs.NewValueIsInvalidError("reprint order id equals source order id")
	}
	return ReprintOrderCommand{
		sourceID: sourceID,
		orderID:  orderID,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c ReprintOrderCommand) Validate() error {
	return c.guard.Validate(ErrReprintOrderCommandIsNotConstructed)
}

func (c ReprintOrderCommand) SourceID() kernel.UUID {
	return c.sourceID
}

func (c ReprintOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}
