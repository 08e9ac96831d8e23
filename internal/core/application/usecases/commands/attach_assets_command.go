package commands

import (
	"errors"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/pkg/errs"
	"kiosk/internal/pkg/guard"
)

var ErrAttachAssetsCommandIsNotConstructed = errors.New(
	"AttachAssetsCommand must be created via NewAttachAssetsCommand constructor",
)

// AttachAssetsCommand sets the stored files of an order.
type AttachAssetsCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	assetRefs []kernel.AssetRef

	guard guard.ConstructorGuard
}

func NewAttachAssetsCommand(orderID kernel.UUID, assetRefs []kernel.AssetRef) (AttachAssetsCommand, error) {
	var refsErr error
	if len(assetRefs) == 0 {
		refsErr = errs.NewValueIsRequiredError("assetRefs")
	}
	if err := errors.Join(orderID.Validate(), refsErr); err != nil {
		return AttachAssetsCommand{}, err
	}
	return AttachAssetsCommand{
		orderID:   orderID,
		assetRefs: assetRefs,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c AttachAssetsCommand) Validate() error {
	return c.guard.Validate(ErrAttachAssetsCommandIsNotConstructed)
}

func (c AttachAssetsCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c AttachAssetsCommand) AssetRefs() []kernel.AssetRef {
	return c.assetRefs
}
