package order

import (
	"fmt"
	"strings"

	"kiosk/internal/pkg/errs"
)

// Status represents the lifecycle state of a print order.
//
// State transitions (forward only):
//
//	Created ──> PendingPayment ──> Active ──> Printing ──> Completed
//	   │              │              │
//	   └──────────────┴──> Active    └──> Expired
//	   └──────────────┴─────────────────> Expired (abandoned, never paid)
//
// Completed and Expired are terminal. Active and Printing are the only states
// in which an order holds a pickup code.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Created is the initial status of an order with settings but no payment.
	Created

	// PendingPayment means a payment order was opened with the gateway.
	PendingPayment

	// Active means the order is paid and its pickup code can be redeemed.
	Active

	// Printing means the pickup code was redeemed and the kiosk is printing.
	Printing

	// Completed means the kiosk confirmed the print. Terminal.
	Completed

	// Expired means the order outlived its TTL without being printed. Terminal.
	Expired
)

var statusNames = map[Status]string{
	Created:        "CREATED",
	PendingPayment: "PENDING_PAYMENT",
	Active:         "ACTIVE",
	Printing:       "PRINTING",
	Completed:      "COMPLETED",
	Expired:        "EXPIRED",
}

// legacyStatusNames maps spellings written by older kiosk builds.
var legacyStatusNames = map[string]Status{
	"PENDING": PendingPayment,
	"PAID":    Active,
	"PRINTED": Completed,
}

// AllStatuses lists every valid status in lifecycle order.
func AllStatuses() []Status {
	return []Status{Created, PendingPayment, Active, Printing, Completed, Expired}
}

// ParseStatus accepts the canonical names case-insensitively, plus the legacy
// spellings found in older records ("printed", "paid", "pending").
func ParseStatus(s string) (Status, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for st, name := range statusNames {
		if name == norm {
			return st, nil
		}
	}
	if st, ok := legacyStatusNames[norm]; ok {
		return st, nil
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that s is one of the defined statuses.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the canonical upper-case name, or "UNKNOWN".
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no further lifecycle transition is possible.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Expired
}

// HoldsPickupCode reports whether an order in this status must carry a live code.
func (s Status) HoldsPickupCode() bool {
	return s == Active || s == Printing
}

// AcceptsAssets reports whether asset refs may still be attached.
func (s Status) AcceptsAssets() bool {
	return s == Created || s == PendingPayment || s == Active
}

// OpenPayment transitions Created -> PendingPayment.
func (s Status) OpenPayment() (Status, error) {
	if s != Created {
		return 0, s.transitionError("open payment for")
	}
	return PendingPayment, nil
}

// Activate transitions Created or PendingPayment -> Active.
func (s Status) Activate() (Status, error) {
	if s != Created && s != PendingPayment {
		return 0, s.transitionError("confirm payment for")
	}
	return Active, nil
}

// StartPrinting transitions Active -> Printing.
func (s Status) StartPrinting() (Status, error) {
	if s != Active {
		return 0, s.transitionError("redeem")
	}
	return Printing, nil
}

// Complete transitions Printing -> Completed.
func (s Status) Complete() (Status, error) {
	if s != Printing {
		return 0, s.transitionError("mark printed")
	}
	return Completed, nil
}

// Expire transitions any unpaid or unredeemed status -> Expired.
// Printing orders are never expired: the kiosk already holds them.
func (s Status) Expire() (Status, error) {
	if s != Created && s != PendingPayment && s != Active {
		return 0, s.transitionError("expire")
	}
	return Expired, nil
}

func (s Status) transitionError(action string) error {
	return errs.NewInvalidStateError("order", s.String(), action)
}
