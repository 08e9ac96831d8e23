package commands

import (
	"errors"
	"strings"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/pkg/errs"
	"kiosk/internal/pkg/guard"
)

var ErrConfirmPaymentCommandIsNotConstructed = errors.New(
	"ConfirmPaymentCommand must be created via NewConfirmPaymentCommand constructor",
)

// ConfirmPaymentCommand carries the gateway's callback for a settled payment.
type ConfirmPaymentCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	paymentRef string
	signature  string

	guard guard.ConstructorGuard
}

func NewConfirmPaymentCommand(orderID kernel.UUID, paymentRef, signature string) (ConfirmPaymentCommand, error) {
	cmd := ConfirmPaymentCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setPaymentRef(paymentRef),
		cmd.setSignature(signature),
	); err != nil {
		return ConfirmPaymentCommand{}, err
	}

	return cmd, nil
}

func (c ConfirmPaymentCommand) Validate() error {
	return c.guard.Validate(ErrConfirmPaymentCommandIsNotConstructed)
}

func (c ConfirmPaymentCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ConfirmPaymentCommand) PaymentRef() string {
	return c.paymentRef
}

func (c ConfirmPaymentCommand) Signature() string {
	return c.signature
}

func (c *ConfirmPaymentCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *ConfirmPaymentCommand) setPaymentRef(paymentRef string) error {
	paymentRef = strings.TrimSpace(paymentRef)
	if paymentRef == "" {
		return errs.NewValueIsRequiredError("paymentRef")
	}
	c.paymentRef = paymentRef
	return nil
}

func (c *ConfirmPaymentCommand) setSignature(signature string) error {
	if strings.TrimSpace(signature) == "" {
		return errs.NewValueIsRequiredError("signature")
	}
	c.signature = signature
	return nil
}
