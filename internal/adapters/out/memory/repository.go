// Package memory provides an in-process OrderRepository.
//
// It backs STORAGE_DRIVER=memory and the concurrency tests. Its conditional
// update has the same compare-and-set semantics as the PostgreSQL repository:
// a write lands only if status and version still match, and a live pickup
// code can be held by one order at a time.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/domain/model/order"
	"kiosk/internal/pkg/errs"
)

// OrderRepository keeps orders in a map guarded by a mutex. The mutex is held
// only inside a single call, never across calls.
type OrderRepository struct {
	mu        sync.RWMutex
	orders    map[kernel.UUID]*order.Order
	liveCodes map[string]kernel.UUID
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders:    make(map[kernel.UUID]*order.Order),
		liveCodes: make(map[string]kernel.UUID),
	}
}

func (r *OrderRepository) Create(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[aggregate.ID()]; ok {
		return errs.NewObjectAlreadyExistsError("order", aggregate.ID().String())
	}
	if err := r.checkCodeFree(aggregate); err != nil {
		return err
	}

	stored, err := snapshot(aggregate, aggregate.Version())
	if err != nil {
		return err
	}
	r.put(stored)
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return snapshot(stored, stored.Version())
}

func (r *OrderRepository) ConditionalUpdate(ctx context.Context, aggregate *order.Order, expected order.Status) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[aggregate.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}
	if stored.Status() != expected || stored.Version() != aggregate.Version() {
		return errs.NewPreconditionFailedError("order", aggregate.ID().String(), expected.String())
	}
	if err := r.checkCodeFree(aggregate); err != nil {
		return err
	}

	next, err := snapshot(aggregate, stored.Version()+1)
	if err != nil {
		return err
	}
	r.drop(stored)
	r.put(next)
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id kernel.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[id]
	if !ok {
		return errs.NewObjectNotFoundError("order", id.String())
	}
	r.drop(stored)
	return nil
}

func (r *OrderRepository) QueryByStatusAndAge(
	ctx context.Context, statuses []order.Status, olderThan time.Time, limit int,
) ([]*order.Order, error) {
	return r.query(ctx, limit, func(o *order.Order) bool {
		return slices.Contains(statuses, o.Status()) && !o.CreatedAt().After(olderThan)
	})
}

func (r *OrderRepository) QueryUnreclaimed(ctx context.Context, statuses []order.Status, limit int) ([]*order.Order, error) {
	return r.query(ctx, limit, func(o *order.Order) bool {
		return slices.Contains(statuses, o.Status()) && !o.IsFullyReclaimed()
	})
}

func (r *OrderRepository) QueryByCode(ctx context.Context, code kernel.PickupCode) (*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.liveCodes[code.String()]
	if !ok || code.IsZero() {
		return nil, errs.NewObjectNotFoundError("pickupCode", code.String())
	}
	stored := r.orders[id]
	return snapshot(stored, stored.Version())
}

func (r *OrderRepository) QueryByAssetRef(ctx context.Context, ref kernel.AssetRef, limit int) ([]kernel.UUID, error) {
	matches, err := r.query(ctx, limit, func(o *order.Order) bool {
		return slices.ContainsFunc(o.AssetRefs(), ref.IsEqual)
	})
	if err != nil {
		return nil, err
	}
	ids := make([]kernel.UUID, 0, len(matches))
	for _, o := range matches {
		ids = append(ids, o.ID())
	}
	return ids, nil
}

// Len returns the number of stored orders.
func (r *OrderRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

func (r *OrderRepository) query(ctx context.Context, limit int, match func(*order.Order) bool) ([]*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]*order.Order, 0)
	for _, o := range r.orders {
		if match(o) {
			found = append(found, o)
		}
	}
	slices.SortFunc(found, func(a, b *order.Order) int {
		return cmp.Or(a.CreatedAt().Compare(b.CreatedAt()), cmp.Compare(a.ID().String(), b.ID().String()))
	})
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}

	out := make([]*order.Order, 0, len(found))
	for _, o := range found {
		cp, err := snapshot(o, o.Version())
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

// checkCodeFree must be called with mu held.
func (r *OrderRepository) checkCodeFree(o *order.Order) error {
	code := o.PickupCode()
	if code.IsZero() {
		return nil
	}
	if holder, ok := r.liveCodes[code.String()]; ok && !holder.IsEqual(o.ID()) {
		return errs.NewObjectAlreadyExistsError("pickupCode", code.String())
	}
	return nil
}

func (r *OrderRepository) put(o *order.Order) {
	r.orders[o.ID()] = o
	if !o.PickupCode().IsZero() {
		r.liveCodes[o.PickupCode().String()] = o.ID()
	}
}

func (r *OrderRepository) drop(o *order.Order) {
	delete(r.orders, o.ID())
	if !o.PickupCode().IsZero() {
		delete(r.liveCodes, o.PickupCode().String())
	}
}

// snapshot copies o at the given version so callers never share state with the store.
func snapshot(o *order.Order, version int64) (*order.Order, error) {
	return order.RestoreOrder(order.RestoreParams{
		ID:               o.ID(),
		Status:           o.Status(),
		PickupCode:       o.PickupCode(),
		AssetRefs:        o.AssetRefs(),
		PendingAssetRefs: o.PendingAssetRefs(),
		Settings:         o.Settings(),
		Amount:           o.Amount(),
		TotalPages:       o.TotalPages(),
		PaymentRef:       o.PaymentRef(),
		CreatedAt:        o.CreatedAt(),
		ExpiresAt:        o.ExpiresAt(),
		PrintedAt:        o.PrintedAt(),
		ReclaimedAt:      o.ReclaimedAt(),
		Version:          version,
	})
}
