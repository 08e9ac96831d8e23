package kernel

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"kiosk/internal/pkg/errs"
)

const (
	// PickupCodeLength is the fixed number of digits in a pickup code.
	PickupCodeLength = 6

	pickupCodeMin = 100000
	pickupCodeMax = 999999
)

// ErrPickupCodeIsNotConstructed indicates a zero-value PickupCode.
var ErrPickupCodeIsNotConstructed = errs.NewValueIsRequiredError("PickupCode must be created via NewPickupCode or NewRandomPickupCode")

// PickupCode is the short numeric credential a customer types at the kiosk.
// Codes are fixed-width decimal strings in [100000, 999999].
type PickupCode struct {
	value string
}

// NewPickupCode parses a code typed by a customer or read from storage.
func NewPickupCode(s string) (PickupCode, error) {
	if s == "" {
		return PickupCode{}, errs.NewValueIsRequiredError("pickup code")
	}
	if len(s) != PickupCodeLength {
		return PickupCode{}, errs.NewValueIsInvalidErrorWithCause(
			"pickup code", fmt.Errorf("expected %d digits, got %d characters", PickupCodeLength, len(s)),
		)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return PickupCode{}, errs.NewValueIsInvalidErrorWithCause("pickup code", err)
	}
	if n < pickupCodeMin || n > pickupCodeMax {
		return PickupCode{}, errs.NewValueIsOutOfRangeError("pickup code", n, pickupCodeMin, pickupCodeMax)
	}
	return PickupCode{value: s}, nil
}

// NewRandomPickupCode draws a code uniformly from the valid range using
// crypto/rand, so issued codes cannot be predicted from earlier ones.
func NewRandomPickupCode() (PickupCode, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(pickupCodeMax-pickupCodeMin+1))
	if err != nil {
		return PickupCode{}, fmt.Errorf("draw pickup code: %w", err)
	}
	return PickupCode{value: strconv.FormatInt(n.Int64()+pickupCodeMin, 10)}, nil
}

func (c PickupCode) String() string {
	return c.value
}

func (c PickupCode) IsEqual(other PickupCode) bool {
	return c.value == other.value
}

// IsZero reports whether c holds no code (revoked or never issued).
func (c PickupCode) IsZero() bool {
	return c.value == ""
}

func (c PickupCode) Validate() error {
	if c.IsZero() {
		return ErrPickupCodeIsNotConstructed
	}
	return nil
}
