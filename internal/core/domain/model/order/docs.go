// Package order provides the Order aggregate of the print kiosk and its
// lifecycle state machine.
//
// The package includes:
//   - Order: the aggregate root holding settings, price, pickup code and file refs
//   - Status: the forward-only state machine
//     (Created -> PendingPayment -> Active -> Printing -> Completed, or -> Expired)
//   - PrintSettings / PrintFile: the immutable print configuration and its pricing
//
// Key business rules:
//   - A colored page costs 10 units and a monochrome page 3, times copies, summed over files
//   - A pickup code exists exactly while the order is Active or Printing
//   - Redeeming requires a matching, unexpired code and at least one attached file
//   - Completed and Expired orders are reclaimed later; their files may outlive
//     them when another order still references the same asset
//
// The aggregate performs transitions in memory only. Persisting a transition is
// a conditional write keyed on the status the aggregate was loaded in, done by
// the repository.
package order
