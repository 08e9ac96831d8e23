// Package commands contains the operations that change order state.
// Each command is validated on construction and executed by its handler;
// handlers persist through conditional updates and retry optimistic
// collisions a bounded number of times.
package commands

import (
	"context"
	"errors"
	"fmt"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/domain/services"
	"kiosk/internal/pkg/errs"
)

// DefaultMaxTransitionAttempts bounds how often a handler re-fetches an order
// after losing a conditional update before giving up.
const DefaultMaxTransitionAttempts = 5

// Domain services consumed by command handlers.
type (
	// CodeAllocator issues a pickup code and claims it through claim.
	CodeAllocator interface {
		Allocate(ctx context.Context, claim services.ClaimFunc) (kernel.PickupCode, error)
	}

	// OrderReclaimer tears down a single terminal order.
	OrderReclaimer interface {
		Reclaim(ctx context.Context, id kernel.UUID) (services.ReclaimOutcome, error)
	}
)

// retryOnConflict runs attempt until it stops failing with errs.ErrPreconditionFailed.
// Once maxAttempts collisions happened the result matches errs.ErrInvalidState.
func retryOnConflict(ctx context.Context, maxAttempts int, subject string, attempt func(context.Context) error) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxTransitionAttempts
	}

	var err error
	for range maxAttempts {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = attempt(ctx)
		if !errors.Is(err, errs.ErrPreconditionFailed) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: gave up after %d attempts: %w", errs.ErrInvalidState, subject, maxAttempts, err)
}
