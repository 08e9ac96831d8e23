// Package ports defines the contracts between the kiosk core and its
// infrastructure: order storage, the payment gateway, the object store and
// the reclamation scheduler.
package ports

import (
	"context"
	"time"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
//
// Every mutation of a stored order goes through ConditionalUpdate, a
// compare-and-set keyed on the status (and version) the aggregate was loaded
// with. Implementations never perform blanket read-modify-write.
type OrderRepository interface {
	// Create persists a new order. Fails with errs.ObjectAlreadyExistsError if
	// the id exists or the order holds a pickup code already held by another order.
	Create(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by id. Fails with errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ConditionalUpdate writes aggregate only if the stored record is still in
	// status expected and at the version aggregate was loaded with.
	//
	// Fails with errs.PreconditionFailedError when the record moved on (the caller
	// should re-fetch and retry), errs.ObjectNotFoundError when it is gone, and
	// errs.ObjectAlreadyExistsError when aggregate's pickup code is live on another order.
	// The aggregate's own Version is not advanced: re-load it before updating again.
	ConditionalUpdate(ctx context.Context, aggregate *order.Order, expected order.Status) error

	// Delete removes the record. Fails with errs.ObjectNotFoundError if it is gone.
	Delete(ctx context.Context, id kernel.UUID) error

	// QueryByStatusAndAge returns up to limit orders in one of statuses created
	// at or before olderThan, oldest first.
	QueryByStatusAndAge(ctx context.Context, statuses []order.Status, olderThan time.Time, limit int) ([]*order.Order, error)

	// QueryUnreclaimed returns up to limit orders in one of statuses that are
	// not fully reclaimed, oldest first. An order whose files are still pending
	// deletion counts as not fully reclaimed.
	QueryUnreclaimed(ctx context.Context, statuses []order.Status, limit int) ([]*order.Order, error)

	// QueryByCode returns the live order holding code. Fails with
	// errs.ObjectNotFoundError when no live order holds it.
	QueryByCode(ctx context.Context, code kernel.PickupCode) (*order.Order, error)

	// QueryByAssetRef returns the ids of at most limit orders listing ref.
	QueryByAssetRef(ctx context.Context, ref kernel.AssetRef, limit int) ([]kernel.UUID, error)
}
