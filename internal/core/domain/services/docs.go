// Package services provides the domain services of the kiosk that work across
// more than one order or reach outside the aggregate.
//
// The package includes:
//   - PickupCodeAllocator: issues six-digit codes unique among live orders
//   - SharedAssetGuard: tells whether a stored file is still listed by another order
//   - Reclaimer: tears down one terminal order (its files, then its record)
//
// None of these services hold an in-process lock across storage calls.
// Uniqueness and at-most-once guarantees come from conditional writes in the
// OrderRepository; the services only decide what to attempt and how to retry.
package services
