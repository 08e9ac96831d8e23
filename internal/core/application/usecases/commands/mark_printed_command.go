package commands

import (
	"errors"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/pkg/guard"
)

var ErrMarkPrintedCommandIsNotConstructed = errors.New(
	"MarkPrintedCommand must be created via NewMarkPrintedCommand constructor",
)

// MarkPrintedCommand is the kiosk reporting a finished print.
type MarkPrintedCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewMarkPrintedCommand(orderID kernel.UUID) (MarkPrintedCommand, error) {
	if err := orderID.Validate(); err != nil {
		return MarkPrintedCommand{}, err
	}
	return MarkPrintedCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c MarkPrintedCommand) Validate() error {
	return c.guard.Validate(ErrMarkPrintedCommandIsNotConstructed)
}

func (c MarkPrintedCommand) OrderID() kernel.UUID {
	return c.orderID
}
