package commands

import (
	"errors"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/domain/model/order"
	"kiosk/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a request to register a new print order.
// Files are priced at creation and never change afterwards.
//
// Example:
//
//	file, _ := order.NewPrintFile("thesis.pdf", order.Color, 2, 1)
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), []order.PrintFile{file}, refs, "")
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	created, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	settings   order.PrintSettings
	assetRefs  []kernel.AssetRef
	paymentRef string

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the order id and the print files.
// assetRefs and paymentRef are optional; with a paymentRef the order starts
// in PENDING_PAYMENT.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	files []order.PrintFile,
	assetRefs []kernel.AssetRef,
	paymentRef string,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		assetRefs:  assetRefs,
		paymentRef: paymentRef,
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setSettings(files),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) Settings() order.PrintSettings {
	return c.settings
}

func (c CreateOrderCommand) AssetRefs() []kernel.AssetRef {
	return c.assetRefs
}

func (c CreateOrderCommand) PaymentRef() string {
	return c.paymentRef
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setSettings(files []order.PrintFile) error {
	settings, err := order.NewPrintSettings(files)
	if err != nil {
		return err
	}
	c.settings = settings
	return nil
}
