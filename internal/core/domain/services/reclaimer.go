package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/domain/model/order"
	"kiosk/internal/core/ports"
	"kiosk/internal/pkg/errs"
)

// RetentionPolicy says what happens to an order record once its files are handled.
type RetentionPolicy int

const (
	// RetainHistory keeps the record with reclaimedAt set and file fields cleared.
	RetainHistory RetentionPolicy = iota + 1
	// DeleteRecord removes the record.
	DeleteRecord
)

func ParseRetentionPolicy(s string) (RetentionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "history", "":
		return RetainHistory, nil
	case "delete":
		return DeleteRecord, nil
	}
	return 0, errs.NewValueIsInvalidErrorWithCause("retention policy", fmt.Errorf("%q is not history or delete", s))
}

func (p RetentionPolicy) String() string {
	switch p {
	case RetainHistory:
		return "history"
	case DeleteRecord:
		return "delete"
	default:
		return "unknown"
	}
}

// ReclaimOutcome tells what a Reclaim call did.
type ReclaimOutcome int

const (
	// Reclaimed means this call tore the order down.
	Reclaimed ReclaimOutcome = iota + 1
	// AlreadyReclaimed means the order was gone or reclaimed before this call.
	AlreadyReclaimed
)

// Reclaimer tears down one terminal order in two steps.
//
// First the record is reclaimed with a conditional write: reclaimedAt is set
// and the order's files move to its pending list, so the order stops counting
// as a holder of them. Then every pending file is checked against the other
// orders and deleted if nobody lists it, and the pending list is cleared (or
// the record deleted, per the retention policy).
//
// Committing the record before looking for other holders means two orders
// sharing a file cannot both see each other and both keep it: whichever checks
// last sees no holder. A reprint created after the first step re-reads its
// source, finds it reclaimed and backs out.
//
// Reclaim is safe to run concurrently for the same order; only one
// conditional write per step can win and object deletion tolerates missing
// objects. A failure in the second step leaves the pending list in place and
// the order stays a sweep candidate.
type Reclaimer struct {
	repo    ports.OrderRepository
	guard   *SharedAssetGuard
	store   ports.ObjectStore
	policy  RetentionPolicy
	clock   kernel.Clock
	metrics ports.Metrics
	logger  *slog.Logger
}

func NewReclaimer(
	repo ports.OrderRepository,
	guard *SharedAssetGuard,
	store ports.ObjectStore,
	policy RetentionPolicy,
	clock kernel.Clock,
	metrics ports.Metrics,
	logger *slog.Logger,
) *Reclaimer {
	return &Reclaimer{
		repo:    repo,
		guard:   guard,
		store:   store,
		policy:  policy,
		clock:   clock,
		metrics: metrics,
		logger:  logger.With("component", "reclaimer"),
	}
}

func (r *Reclaimer) Policy() RetentionPolicy {
	return r.policy
}

// Reclaim tears down the order with the given id.
//
// Fails with errs.ErrInvalidState when the order is not terminal. An order
// reclaimed earlier whose files are still pending is picked up where it was
// left.
func (r *Reclaimer) Reclaim(ctx context.Context, id kernel.UUID) (ReclaimOutcome, error) {
	o, err := r.repo.Get(ctx, id)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return AlreadyReclaimed, nil
	}
	if err != nil {
		return 0, err
	}
	if o.IsFullyReclaimed() {
		return AlreadyReclaimed, nil
	}
	if !o.Status().IsTerminal() {
		return 0, errs.NewInvalidStateError("order", o.Status().String(), "reclaim")
	}

	if !o.IsReclaimed() {
		if err = o.MarkReclaimed(r.clock.Now()); err != nil {
			return 0, err
		}
		done, err := r.commit(ctx, o)
		if err != nil {
			return 0, err
		}
		if done {
			return AlreadyReclaimed, nil
		}
		if o, err = r.repo.Get(ctx, id); err != nil {
			if errors.Is(err, errs.ErrObjectNotFound) {
				return AlreadyReclaimed, nil
			}
			return 0, err
		}
	}

	for _, ref := range o.PendingAssetRefs() {
		if err = r.releaseAsset(ctx, id, ref); err != nil {
			return 0, err
		}
	}

	switch r.policy {
	case DeleteRecord:
		err = r.repo.Delete(ctx, id)
		if errors.Is(err, errs.ErrObjectNotFound) {
			return AlreadyReclaimed, nil
		}
		if err != nil {
			return 0, err
		}
	default:
		if err = o.ReleasePendingAssets(); err != nil {
			return 0, err
		}
		done, err := r.commit(ctx, o)
		if err != nil {
			return 0, err
		}
		if done {
			return AlreadyReclaimed, nil
		}
	}

	r.logger.InfoContext(ctx, "order reclaimed",
		"order_id", id.String(), "status", o.Status().String(), "policy", r.policy.String())
	return Reclaimed, nil
}

// commit writes o. It reports true when a concurrent reclaimer got there first.
func (r *Reclaimer) commit(ctx context.Context, o *order.Order) (bool, error) {
	err := r.repo.ConditionalUpdate(ctx, o, o.Status())
	if errors.Is(err, errs.ErrPreconditionFailed) || errors.Is(err, errs.ErrObjectNotFound) {
		return true, nil
	}
	return false, err
}

func (r *Reclaimer) releaseAsset(ctx context.Context, id kernel.UUID, ref kernel.AssetRef) error {
	shared, err := r.guard.IsShared(ctx, ref, id)
	if err != nil {
		return fmt.Errorf("check asset %s: %w", ref, err)
	}
	if shared {
		r.metrics.AssetShared()
		r.logger.DebugContext(ctx, "asset kept, still listed by another order",
			"order_id", id.String(), "asset_ref", ref.String())
		return nil
	}
	if err = r.store.Delete(ctx, ref); err != nil {
		return fmt.Errorf("delete asset %s: %w", ref, err)
	}
	r.metrics.AssetDeleted()
	return nil
}
