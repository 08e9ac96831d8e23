package order

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrPickupCodeExpired is returned when a code is redeemed after the order's deadline.
	ErrPickupCodeExpired = errors.New("pickup code has expired")

	// ErrAlreadyPrinted is returned when a code is redeemed for an order that is
	// already printing or printed. It matches errs.ErrInvalidState as well.
	ErrAlreadyPrinted = fmt.Errorf("%w: order has already been printed", errs.ErrInvalidState)

	// ErrNoAssets is returned when an order without files is redeemed.
	ErrNoAssets = errors.New("order has no files to print")

	// ErrPaymentRefMismatch is returned when a payment confirmation names a
	// different gateway transaction than the one opened for the order.
	ErrPaymentRefMismatch = fmt.Errorf("%w: payment reference mismatch", errs.ErrSignatureInvalid)
)

// Order is the aggregate root of the kiosk: one paid print job from creation
// through pickup to reclamation.
//
// Order follows these invariants:
//   - pickupCode is set if and only if status is Active or Printing
//   - status only moves forward (see Status)
//   - printSettings, amount and totalPages never change after creation
//   - paymentRef is set at most once
//   - assetRefs are attached at most once; re-attaching the same refs is a no-op
//   - an order without assetRefs never reaches Printing
//   - pendingAssetRefs is non-empty only on a reclaimed order
type Order struct {
	id         kernel.UUID
	status     Status
	pickupCode kernel.PickupCode
	assetRefs  []kernel.AssetRef
	settings   PrintSettings

	// pendingAssetRefs are the files a reclaimed order gave up but that have
	// not been released from the object store yet.
	pendingAssetRefs []kernel.AssetRef

	amount     int64
	totalPages int
	paymentRef string

	createdAt   time.Time
	expiresAt   time.Time
	printedAt   *time.Time
	reclaimedAt *time.Time

	// version is the optimistic-concurrency token of the stored record this
	// aggregate was loaded from.
	version int64

	isConstructed bool
}

// NewOrder creates an order in Created status.
//
// amount and totalPages are derived from settings; expiresAt is now + ttl.
// paymentRef is optional and may be attached later by OpenPayment or ConfirmPayment.
// assetRefs may be empty and attached later by AttachAssets.
//
// Example:
//
//	file, _ := order.NewPrintFile("thesis.pdf", order.Color, 2, 1)
//	settings, _ := order.NewPrintSettings([]order.PrintFile{file})
//	o, err := order.NewOrder(kernel.NewUUID(), settings, refs, "", clock.Now(), 24*time.Hour)
func NewOrder(
	id kernel.UUID,
	settings PrintSettings,
	assetRefs []kernel.AssetRef,
	paymentRef string,
	now time.Time,
	ttl time.Duration,
) (*Order, error) {
	o := &Order{
		status:        Created,
		paymentRef:    paymentRef,
		createdAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setSettings(settings),
		o.setAssetRefs(assetRefs),
		o.setExpiry(now, ttl),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreParams carries a persisted order back into the domain.
type RestoreParams struct {
	ID          kernel.UUID
	Status      Status
	PickupCode  kernel.PickupCode
	AssetRefs   []kernel.AssetRef
	Settings    PrintSettings
	Amount      int64
	TotalPages  int
	PaymentRef  string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	PrintedAt   *time.Time
	ReclaimedAt *time.Time
	Version     int64

	PendingAssetRefs []kernel.AssetRef
}

// RestoreOrder rebuilds an order from storage and re-checks its invariants.
func RestoreOrder(p RestoreParams) (*Order, error) {
	if err := p.Status.Validate(); err != nil {
		return nil, err
	}

	o := &Order{
		status:        p.Status,
		pickupCode:    p.PickupCode,
		amount:        p.Amount,
		totalPages:    p.TotalPages,
		paymentRef:    p.PaymentRef,
		createdAt:     p.CreatedAt,
		expiresAt:     p.ExpiresAt,
		printedAt:     p.PrintedAt,
		reclaimedAt:   p.ReclaimedAt,
		version:       p.Version,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(p.ID),
		o.setAssetRefs(p.AssetRefs),
		o.setPendingAssetRefs(p.PendingAssetRefs),
		o.restoreSettings(p.Settings),
		o.checkPickupCode(),
		o.checkPrintable(),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) ID() kernel.UUID { return o.id }
func (o *Order) Status() Status { return o.status }
func (o *Order) PickupCode() kernel.PickupCode { return o.pickupCode }
func (o *Order) Settings() PrintSettings { return o.settings }
func (o *Order) Amount() int64 { return o.amount }
func (o *Order) TotalPages() int { return o.totalPages }
func (o *Order) PaymentRef() string { return o.paymentRef }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
func (o *Order) ExpiresAt() time.Time { return o.expiresAt }
func (o *Order) PrintedAt() *time.Time { return o.printedAt }
func (o *Order) ReclaimedAt() *time.Time { return o.reclaimedAt }
func (o *Order) Version() int64 { return o.version }
func (o *Order) AssetRefs() []kernel.AssetRef { return slices.Clone(o.assetRefs) }
func (o *Order) HasAssets() bool { return len(o.assetRefs) > 0 }
func (o *Order) IsReclaimed() bool { return o.reclaimedAt != nil }
func (o *Order) PendingAssetRefs() []kernel.AssetRef { return slices.Clone(o.pendingAssetRefs) }
func (o *Order) HasPendingAssets() bool { return len(o.pendingAssetRefs) > 0 }

// IsFullyReclaimed reports whether the record was reclaimed and every file it
// gave up has been released.
func (o *Order) IsFullyReclaimed() bool { return o.IsReclaimed() && !o.HasPendingAssets() }
func (o *Order) IsExpired(now time.Time) bool { return now.After(o.expiresAt) }
func (o *Order) IsEqual(other *Order) bool { return other != nil && o.id.IsEqual(other.id) }

// OpenPayment records the gateway transaction and moves Created -> PendingPayment.
func (o *Order) OpenPayment(paymentRef string) error {
	if paymentRef == "" {
		return errs.NewValueIsRequiredError("paymentRef")
	}
	newStatus, err := o.status.OpenPayment()
	if err != nil {
		return err
	}
	if err = o.bindPaymentRef(paymentRef); err != nil {
		return err
	}
	o.status = newStatus
	return nil
}

// ConfirmPayment moves Created/PendingPayment -> Active and issues code.
// The payment proof itself is verified by the caller before this is called.
func (o *Order) ConfirmPayment(paymentRef string, code kernel.PickupCode) error {
	if paymentRef == "" {
		return errs.NewValueIsRequiredError("paymentRef")
	}
	if err := code.Validate(); err != nil {
		return err
	}
	newStatus, err := o.status.Activate()
	if err != nil {
		return err
	}
	if err = o.bindPaymentRef(paymentRef); err != nil {
		return err
	}
	o.status = newStatus
	o.pickupCode = code
	return nil
}

// AttachAssets sets the order's files. Re-sending the refs already attached is
// accepted as a no-op; replacing different refs is rejected.
// Returns true when the order changed.
func (o *Order) AttachAssets(refs []kernel.AssetRef) (bool, error) {
	if len(refs) == 0 {
		return false, errs.NewValueIsRequiredError("assetRefs")
	}
	if !o.status.AcceptsAssets() || o.IsReclaimed() {
		return false, o.status.transitionError("attach assets to")
	}
	if o.HasAssets() {
		if slices.EqualFunc(o.assetRefs, refs, kernel.AssetRef.IsEqual) {
			return false, nil
		}
		return false, errs.NewInvalidStateError("order", o.status.String(), "replace attached assets of")
	}
	if err := o.setAssetRefs(refs); err != nil {
		return false, err
	}
	return true, nil
}

// Redeem checks a presented code and moves Active -> Printing.
//
// Guards, in order: the order must not already be printing or printed
// (ErrAlreadyPrinted), must be Active, the code must match, now must not be
// past expiresAt (ErrPickupCodeExpired), and there must be files (ErrNoAssets).
func (o *Order) Redeem(code kernel.PickupCode, now time.Time) error {
	if o.status == Printing || o.status == Completed {
		return ErrAlreadyPrinted
	}
	// Reachable only for an aggregate loaded by id: expiring clears the code,
	// so a lookup by code never returns an Expired order.
	if o.status == Expired {
		return ErrPickupCodeExpired
	}
	if o.pickupCode.IsZero() || !o.pickupCode.IsEqual(code) {
		return errs.NewObjectNotFoundError("pickupCode", code.String())
	}
	if o.IsExpired(now) {
		return ErrPickupCodeExpired
	}
	if !o.HasAssets() {
		return ErrNoAssets
	}
	newStatus, err := o.status.StartPrinting()
	if err != nil {
		return err
	}
	o.status = newStatus
	return nil
}

// Complete records a confirmed print: Printing -> Completed, code revoked.
func (o *Order) Complete(now time.Time) error {
	newStatus, err := o.status.Complete()
	if err != nil {
		return err
	}
	o.status = newStatus
	o.pickupCode = kernel.PickupCode{}
	printedAt := now
	o.printedAt = &printedAt
	return nil
}

// Expire moves an unredeemed order to Expired and revokes its code.
func (o *Order) Expire() error {
	newStatus, err := o.status.Expire()
	if err != nil {
		return err
	}
	o.status = newStatus
	o.pickupCode = kernel.PickupCode{}
	return nil
}

// MarkReclaimed stamps reclaimedAt and moves the order's files to the pending
// list. From then on the order no longer counts as a holder of those files;
// they are released with ReleasePendingAssets once the object store is done.
func (o *Order) MarkReclaimed(now time.Time) error {
	if !o.status.IsTerminal() {
		return o.status.transitionError("reclaim")
	}
	if o.IsReclaimed() {
		return errs.NewInvalidStateError("order", "RECLAIMED", "reclaim")
	}
	reclaimedAt := now
	o.reclaimedAt = &reclaimedAt
	o.pendingAssetRefs = append(o.pendingAssetRefs, o.assetRefs...)
	o.assetRefs = nil
	o.pickupCode = kernel.PickupCode{}
	return nil
}

// ReleasePendingAssets forgets the pending files of a reclaimed order.
func (o *Order) ReleasePendingAssets() error {
	if !o.IsReclaimed() {
		return o.status.transitionError("release assets of")
	}
	o.pendingAssetRefs = nil
	return nil
}

// ReclaimDue reports whether a terminal order should be reclaimed at now.
// Expired orders are due immediately; completed orders once completedRetention
// has passed since printedAt. A reclaimed order with pending files stays due
// until they are released.
func (o *Order) ReclaimDue(now time.Time, completedRetention time.Duration) bool {
	if o.IsReclaimed() {
		return o.HasPendingAssets()
	}
	switch o.status {
	case Expired:
		return true
	case Completed:
		return o.printedAt == nil || !now.Before(o.printedAt.Add(completedRetention))
	default:
		return false
	}
}

func (o *Order) bindPaymentRef(paymentRef string) error {
	if o.paymentRef != "" && o.paymentRef != paymentRef {
		return ErrPaymentRefMismatch
	}
	o.paymentRef = paymentRef
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setSettings(settings PrintSettings) error {
	if err := settings.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("printSettings", err)
	}
	o.settings = settings
	o.amount = settings.Amount()
	o.totalPages = settings.TotalPages()
	return nil
}

// restoreSettings keeps the stored amount and page count; prices may have
// changed since the order was created.
func (o *Order) restoreSettings(settings PrintSettings) error {
	if err := settings.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("printSettings", err)
	}
	if o.amount < 0 {
		return errs.NewValueIsOutOfRangeError("amount", o.amount, 0, "unbounded")
	}
	o.settings = settings
	return nil
}

func (o *Order) setAssetRefs(refs []kernel.AssetRef) error {
	for i, ref := range refs {
		if err := ref.Validate(); err != nil {
			return fmt.Errorf("asset ref #%d: %w", i, err)
		}
	}
	o.assetRefs = slices.Clone(refs)
	return nil
}

func (o *Order) setPendingAssetRefs(refs []kernel.AssetRef) error {
	if len(refs) > 0 && !o.IsReclaimed() {
		return errs.NewValueIsInvalidErrorWithCause("pendingAssetRefs", errors.New("order is not reclaimed"))
	}
	for i, ref := range refs {
		if err := ref.Validate(); err != nil {
			return fmt.Errorf("pending asset ref #%d: %w", i, err)
		}
	}
	o.pendingAssetRefs = slices.Clone(refs)
	return nil
}

func (o *Order) setExpiry(now time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return errs.NewValueIsOutOfRangeError("ttl", ttl, "1ns", "unbounded")
	}
	o.expiresAt = now.Add(ttl)
	return nil
}

func (o *Order) checkPickupCode() error {
	hasCode := !o.pickupCode.IsZero()
	if hasCode != o.status.HoldsPickupCode() {
		return errs.NewValueIsInvalidErrorWithCause(
			"pickupCode",
			fmt.Errorf("status %s with pickup code present=%t", o.status, hasCode),
		)
	}
	return nil
}

func (o *Order) checkPrintable() error {
	if o.status == Printing && !o.HasAssets() {
		return errs.NewValueIsInvalidErrorWithCause("assetRefs", errors.New("printing order has no assets"))
	}
	return nil
}
