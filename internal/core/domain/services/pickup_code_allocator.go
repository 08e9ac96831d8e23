package services

import (
	"context"
	"errors"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/domain/model/order"
	"kiosk/internal/pkg/errs"
)

// DefaultMaxCodeAttempts bounds how many codes one allocation draws before giving up.
const DefaultMaxCodeAttempts = 20

// ErrPickupCodesExhausted is returned when every drawn code collided with a live one.
var ErrPickupCodesExhausted = errors.New("no free pickup code found")

// ClaimFunc writes code onto an order. It must fail with errs.ErrObjectAlreadyExists
// when the store already holds code on another live order.
type ClaimFunc func(ctx context.Context, code kernel.PickupCode) error

// CodeLookup is the part of the order repository the allocator reads.
type CodeLookup interface {
	QueryByCode(ctx context.Context, code kernel.PickupCode) (*order.Order, error)
}

// PickupCodeAllocator draws random codes and claims the first free one.
//
// The lookup before claiming only saves a round trip for codes that are
// obviously taken. The claim itself is a conditional write the store rejects
// on a duplicate live code, so two allocators that both see a code as free
// cannot both commit it.
type PickupCodeAllocator struct {
	codes       CodeLookup
	maxAttempts int
	draw        func() (kernel.PickupCode, error)
}

func NewPickupCodeAllocator(codes CodeLookup, maxAttempts int) *PickupCodeAllocator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxCodeAttempts
	}
	return &PickupCodeAllocator{
		codes:       codes,
		maxAttempts: maxAttempts,
		draw:        kernel.NewRandomPickupCode,
	}
}

// WithSource replaces the random code source. Used by tests to force collisions.
func (a *PickupCodeAllocator) WithSource(draw func() (kernel.PickupCode, error)) *PickupCodeAllocator {
	a.draw = draw
	return a
}

// Allocate draws codes until claim accepts one and returns it.
// Errors from claim other than a duplicate code are returned unchanged.
func (a *PickupCodeAllocator) Allocate(ctx context.Context, claim ClaimFunc) (kernel.PickupCode, error) {
	for range a.maxAttempts {
		if err := ctx.Err(); err != nil {
			return kernel.PickupCode{}, err
		}

		code, err := a.draw()
		if err != nil {
			return kernel.PickupCode{}, err
		}

		_, err = a.codes.QueryByCode(ctx, code)
		switch {
		case err == nil:
			continue
		case !errors.Is(err, errs.ErrObjectNotFound):
			return kernel.PickupCode{}, err
		}

		err = claim(ctx, code)
		if errors.Is(err, errs.ErrObjectAlreadyExists) {
			continue
		}
		if err != nil {
			return kernel.PickupCode{}, err
		}
		return code, nil
	}
	return kernel.PickupCode{}, ErrPickupCodesExhausted
}
