// Package guard lets value objects and commands detect zero-value instances
// that bypassed their constructor.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is given.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded in structs whose invariants are established by a
// constructor. Its zero value fails Validate.
//
//	type RedeemPickupCodeCommand struct {
//	    code  kernel.PickupCode
//	    guard guard.ConstructorGuard
//	}
//
//	func (c RedeemPickupCodeCommand) Validate() error {
//	    return c.guard.Validate(ErrRedeemPickupCodeCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard marks the enclosing object as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
