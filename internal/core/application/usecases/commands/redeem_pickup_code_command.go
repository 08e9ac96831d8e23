package commands

import (
	"errors"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/pkg/guard"
)

var ErrRedeemPickupCodeCommandIsNotConstructed = errors.New(
	"RedeemPickupCodeCommand must be created via NewRedeemPickupCodeCommand constructor",
)

// RedeemPickupCodeCommand is a customer typing a code at the kiosk.
type RedeemPickupCodeCommand struct { //nolint:recvcheck //using for validation
	code kernel.PickupCode

	guard guard.ConstructorGuard
}

// NewRedeemPickupCodeCommand parses the typed code.
func NewRedeemPickupCodeCommand(code string) (RedeemPickupCodeCommand, error) {
	parsed, err := kernel.NewPickupCode(code)
	if err != nil {
		return RedeemPickupCodeCommand{}, err
	}
	return RedeemPickupCodeCommand{code: parsed, guard: guard.NewConstructorGuard()}, nil
}

func (c RedeemPickupCodeCommand) Validate() error {
	return c.guard.Validate(ErrRedeemPickupCodeCommandIsNotConstructed)
}

func (c RedeemPickupCodeCommand) Code() kernel.PickupCode {
	return c.code
}
