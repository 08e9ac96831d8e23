package order_test

import (
	"errors"
	"testing"
	"time"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/domain/model/order"
	"kiosk/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const ttl = 24 * time.Hour

func testSettings(t *testing.T) order.PrintSettings {
	t.Helper()
	color, err := order.NewPrintFile("cover.pdf", order.Color, 2, 1)
	require.NoError(t, err)
	bw, err := order.NewPrintFile("body.pdf", order.Monochrome, 3, 2)
	require.NoError(t, err)
	settings, err := order.NewPrintSettings([]order.PrintFile{color, bw})
	require.NoError(t, err)
	return settings
}

func testRefs(t *testing.T, raw ...string) []kernel.AssetRef {
	t.Helper()
	if len(raw) == 0 {
		raw = []string{"sha256:aaa", "sha256:bbb"}
	}
	refs, err := kernel.NewAssetRefs(raw)
	require.NoError(t, err)
	return refs
}

func testCode(t *testing.T, s string) kernel.PickupCode {
	t.Helper()
	code, err := kernel.NewPickupCode(s)
	require.NoError(t, err)
	return code
}

func newActiveOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), testSettings(t), testRefs(t), "", t0, ttl)
	require.NoError(t, err)
	require.NoError(t, o.ConfirmPayment("pay-1", testCode(t, "123456")))
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("should create order in Created status with derived price", func(t *testing.T) {
		id := kernel.NewUUID()

		o, err := order.NewOrder(id, testSettings(t), testRefs(t), "", t0, ttl)

		require.NoError(t, err)
		require.NoError(t, o.Validate())
		assert.True(t, o.ID().IsEqual(id))
		assert.Equal(t, order.Created, o.Status())
		assert.Equal(t, int64(38), o.Amount())
		assert.Equal(t, 8, o.TotalPages())
		assert.True(t, o.PickupCode().IsZero())
		assert.Equal(t, t0, o.CreatedAt())
		assert.Equal(t, t0.Add(ttl), o.ExpiresAt())
		assert.Nil(t, o.PrintedAt())
		assert.Nil(t, o.ReclaimedAt())
		assert.Len(t, o.AssetRefs(), 2)
	})

	t.Run("should accept order without assets", func(t *testing.T) {
		o, err := order.NewOrder(kernel.NewUUID(), testSettings(t), nil, "", t0, ttl)

		require.NoError(t, err)
		assert.False(t, o.HasAssets())
	})

	t.Run("should join all validation errors", func(t *testing.T) {
		o, err := order.NewOrder(kernel.UUID{}, order.PrintSettings{}, nil, "", t0, 0)

		require.Error(t, err)
		assert.Nil(t, o)
		assert.Contains(t, err.Error(), "UUID must be created")
		assert.Contains(t, err.Error(), "printSettings")
		assert.Contains(t, err.Error(), "ttl")
	})

	t.Run("returned asset refs are a copy", func(t *testing.T) {
		o, err := order.NewOrder(kernel.NewUUID(), testSettings(t), testRefs(t), "", t0, ttl)
		require.NoError(t, err)

		refs := o.AssetRefs()
		refs[0] = kernel.AssetRef{}

		assert.Equal(t, "sha256:aaa", o.AssetRefs()[0].String())
	})
}

func TestOrder_Validate(t *testing.T) {
	var o *order.Order
	require.ErrorIs(t, o.Validate(), order.ErrOrderIsNotConstructed)

	require.ErrorIs(t, (&order.Order{}).Validate(), order.ErrOrderIsNotConstructed)
}

func TestOrder_Payment(t *testing.T) {
	t.Run("open then confirm issues a code", func(t *testing.T) {
		o, err := order.NewOrder(kernel.NewUUID(), testSettings(t), testRefs(t), "", t0, ttl)
		require.NoError(t, err)

		require.NoError(t, o.OpenPayment("pay-1"))
		assert.Equal(t, order.PendingPayment, o.Status())
		assert.True(t, o.PickupCode().IsZero())

		require.NoError(t, o.ConfirmPayment("pay-1", testCode(t, "654321")))
		assert.Equal(t, order.Active, o.Status())
		assert.Equal(t, "654321", o.PickupCode().String())
		assert.Equal(t, "pay-1", o.PaymentRef())
	})

	t.Run("confirm straight from Created", func(t *testing.T) {
		o, err := order.NewOrder(kernel.NewUUID(), testSettings(t), nil, "", t0, ttl)
		require.NoError(t, err)

		require.NoError(t, o.ConfirmPayment("pay-2", testCode(t, "111111")))
		assert.Equal(t, order.Active, o.Status())
	})

	t.Run("confirm with another payment ref is rejected", func(t *testing.T) {
		o, err := order.NewOrder(kernel.NewUUID(), testSettings(t), nil, "", t0, ttl)
		require.NoError(t, err)
		require.NoError(t, o.OpenPayment("pay-1"))

		err = o.ConfirmPayment("pay-other", testCode(t, "111111"))

		require.ErrorIs(t, err, order.ErrPaymentRefMismatch)
		require.ErrorIs(t, err, errs.ErrSignatureInvalid)
		assert.Equal(t, order.PendingPayment, o.Status())
		assert.True(t, o.PickupCode().IsZero())
	})

	t.Run("confirm twice fails with invalid state", func(t *testing.T) {
		o := newActiveOrder(t)

		err := o.ConfirmPayment("pay-1", testCode(t, "999999"))

		require.ErrorIs(t, err, errs.ErrInvalidState)
		assert.Equal(t, "123456", o.PickupCode().String())
	})

	t.Run("confirm needs a code", func(t *testing.T) {
		o, err := order.NewOrder(kernel.NewUUID(), testSettings(t), nil, "", t0, ttl)
		require.NoError(t, err)

		require.ErrorIs(t, o.ConfirmPayment("pay-1", kernel.PickupCode{}), kernel.ErrPickupCodeIsNotConstructed)
		assert.Equal(t, order.Created, o.Status())
	})
}

func TestOrder_AttachAssets(t *testing.T) {
	t.Run("attaches to an order without assets", func(t *testing.T) {
		o, err := order.NewOrder(kernel.NewUUID(), testSettings(t), nil, "", t0, ttl)
		require.NoError(t, err)

		changed, err := o.AttachAssets(testRefs(t, "a"))

		require.NoError(t, err)
		assert.True(t, changed)
		assert.True(t, o.HasAssets())
	})

	t.Run("same refs again is a no-op", func(t *testing.T) {
		o := newActiveOrder(t)

		changed, err := o.AttachAssets(testRefs(t))

		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("different refs are rejected", func(t *testing.T) {
		o := newActiveOrder(t)

		_, err := o.AttachAssets(testRefs(t, "other"))

		require.ErrorIs(t, err, errs.ErrInvalidState)
	})

	t.Run("printing order does not accept assets", func(t *testing.T) {
		o := newActiveOrder(t)
		require.NoError(t, o.Redeem(testCode(t, "123456"), t0))

		_, err := o.AttachAssets(testRefs(t))

		require.ErrorIs(t, err, errs.ErrInvalidState)
	})
}

func TestOrder_Redeem(t *testing.T) {
	t.Run("valid code moves Active to Printing", func(t *testing.T) {
		o := newActiveOrder(t)

		err := o.Redeem(testCode(t, "123456"), t0.Add(time.Hour))

		require.NoError(t, err)
		assert.Equal(t, order.Printing, o.Status())
		assert.Equal(t, "123456", o.PickupCode().String())
	})

	t.Run("wrong code is not found", func(t *testing.T) {
		o := newActiveOrder(t)

		err := o.Redeem(testCode(t, "222222"), t0)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
		assert.Equal(t, order.Active, o.Status())
	})

	t.Run("second redeem reports already printed", func(t *testing.T) {
		o := newActiveOrder(t)
		require.NoError(t, o.Redeem(testCode(t, "123456"), t0))

		err := o.Redeem(testCode(t, "123456"), t0)

		require.ErrorIs(t, err, order.ErrAlreadyPrinted)
		require.ErrorIs(t, err, errs.ErrInvalidState)
	})

	t.Run("past deadline is expired", func(t *testing.T) {
		o := newActiveOrder(t)

		err := o.Redeem(testCode(t, "123456"), t0.Add(ttl+time.Second))

		require.ErrorIs(t, err, order.ErrPickupCodeExpired)
		assert.Equal(t, order.Active, o.Status())
	})

	t.Run("exactly at deadline still redeems", func(t *testing.T) {
		o := newActiveOrder(t)

		require.NoError(t, o.Redeem(testCode(t, "123456"), t0.Add(ttl)))
	})

	t.Run("expired order reports expired code", func(t *testing.T) {
		o := newActiveOrder(t)
		require.NoError(t, o.Expire())

		err := o.Redeem(testCode(t, "123456"), t0)

		require.ErrorIs(t, err, order.ErrPickupCodeExpired)
	})

	t.Run("order without assets cannot print", func(t *testing.T) {
		o, err := order.NewOrder(kernel.NewUUID(), testSettings(t), nil, "", t0, ttl)
		require.NoError(t, err)
		require.NoError(t, o.ConfirmPayment("pay-1", testCode(t, "123456")))

		err = o.Redeem(testCode(t, "123456"), t0)

		require.ErrorIs(t, err, order.ErrNoAssets)
		assert.Equal(t, order.Active, o.Status())
	})

	t.Run("unpaid order has no code to match", func(t *testing.T) {
		o, err := order.NewOrder(kernel.NewUUID(), testSettings(t), testRefs(t), "", t0, ttl)
		require.NoError(t, err)

		err = o.Redeem(testCode(t, "123456"), t0)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

func TestOrder_CompleteAndExpire(t *testing.T) {
	t.Run("complete revokes code and stamps printedAt", func(t *testing.T) {
		o := newActiveOrder(t)
		require.NoError(t, o.Redeem(testCode(t, "123456"), t0))

		require.NoError(t, o.Complete(t0.Add(time.Minute)))

		assert.Equal(t, order.Completed, o.Status())
		assert.True(t, o.PickupCode().IsZero())
		require.NotNil(t, o.PrintedAt())
		assert.Equal(t, t0.Add(time.Minute), *o.PrintedAt())
	})

	t.Run("complete requires Printing", func(t *testing.T) {
		o := newActiveOrder(t)

		require.ErrorIs(t, o.Complete(t0), errs.ErrInvalidState)
	})

	t.Run("expire revokes code", func(t *testing.T) {
		o := newActiveOrder(t)

		require.NoError(t, o.Expire())

		assert.Equal(t, order.Expired, o.Status())
		assert.True(t, o.PickupCode().IsZero())
	})

	t.Run("printing orders never expire", func(t *testing.T) {
		o := newActiveOrder(t)
		require.NoError(t, o.Redeem(testCode(t, "123456"), t0))

		require.ErrorIs(t, o.Expire(), errs.ErrInvalidState)
		assert.Equal(t, order.Printing, o.Status())
	})
}

func TestOrder_Reclaim(t *testing.T) {
	t.Run("expired order is due at once and reclaims once", func(t *testing.T) {
		o := newActiveOrder(t)
		require.NoError(t, o.Expire())
		assert.True(t, o.ReclaimDue(t0, time.Hour))

		refs := o.AssetRefs()
		require.NoError(t, o.MarkReclaimed(t0))

		assert.True(t, o.IsReclaimed())
		assert.False(t, o.HasAssets())
		assert.Equal(t, refs, o.PendingAssetRefs())
		assert.False(t, o.IsFullyReclaimed())
		assert.True(t, o.ReclaimDue(t0, time.Hour), "pending files keep the order due")
		require.ErrorIs(t, o.MarkReclaimed(t0), errs.ErrInvalidState)

		require.NoError(t, o.ReleasePendingAssets())

		assert.True(t, o.IsFullyReclaimed())
		assert.False(t, o.ReclaimDue(t0, time.Hour))
	})

	t.Run("pending files cannot be released before reclamation", func(t *testing.T) {
		o := newActiveOrder(t)
		require.NoError(t, o.Expire())

		require.ErrorIs(t, o.ReleasePendingAssets(), errs.ErrInvalidState)
	})

	t.Run("completed order waits for retention", func(t *testing.T) {
		o := newActiveOrder(t)
		require.NoError(t, o.Redeem(testCode(t, "123456"), t0))
		require.NoError(t, o.Complete(t0))

		assert.False(t, o.ReclaimDue(t0.Add(30*time.Minute), time.Hour))
		assert.True(t, o.ReclaimDue(t0.Add(time.Hour), time.Hour))
		assert.True(t, o.ReclaimDue(t0, 0))
	})

	t.Run("live order cannot be reclaimed", func(t *testing.T) {
		o := newActiveOrder(t)

		assert.False(t, o.ReclaimDue(t0.Add(48*time.Hour), 0))
		require.ErrorIs(t, o.MarkReclaimed(t0), errs.ErrInvalidState)
		assert.True(t, o.HasAssets())
	})
}

func TestRestoreOrder(t *testing.T) {
	base := func(t *testing.T) order.RestoreParams {
		return order.RestoreParams{
			ID:         kernel.NewUUID(),
			Status:     order.Active,
			PickupCode: testCode(t, "123456"),
			AssetRefs:  testRefs(t),
			Settings:   testSettings(t),
			Amount:     38,
			TotalPages: 8,
			PaymentRef: "pay-1",
			CreatedAt:  t0,
			ExpiresAt:  t0.Add(ttl),
			Version:    3,
		}
	}

	t.Run("restores a consistent record", func(t *testing.T) {
		o, err := order.RestoreOrder(base(t))

		require.NoError(t, err)
		assert.Equal(t, order.Active, o.Status())
		assert.Equal(t, int64(3), o.Version())
		assert.Equal(t, int64(38), o.Amount())
	})

	t.Run("keeps stored amount", func(t *testing.T) {
		p := base(t)
		p.Amount = 50

		o, err := order.RestoreOrder(p)

		require.NoError(t, err)
		assert.Equal(t, int64(50), o.Amount())
	})

	t.Run("active without code is rejected", func(t *testing.T) {
		p := base(t)
		p.PickupCode = kernel.PickupCode{}

		_, err := order.RestoreOrder(p)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("completed with code is rejected", func(t *testing.T) {
		p := base(t)
		p.Status = order.Completed

		_, err := order.RestoreOrder(p)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("printing without assets is rejected", func(t *testing.T) {
		p := base(t)
		p.Status = order.Printing
		p.AssetRefs = nil

		_, err := order.RestoreOrder(p)

		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrValueIsInvalid))
	})

	t.Run("pending files on a live order are rejected", func(t *testing.T) {
		p := base(t)
		p.PendingAssetRefs = testRefs(t)

		_, err := order.RestoreOrder(p)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("restores pending files of a reclaimed order", func(t *testing.T) {
		p := base(t)
		p.Status = order.Expired
		p.PickupCode = kernel.PickupCode{}
		p.AssetRefs = nil
		reclaimedAt := t0.Add(time.Hour)
		p.ReclaimedAt = &reclaimedAt
		p.PendingAssetRefs = testRefs(t)

		o, err := order.RestoreOrder(p)

		require.NoError(t, err)
		assert.Equal(t, testRefs(t), o.PendingAssetRefs())
		assert.True(t, o.ReclaimDue(t0, time.Hour))
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		p := base(t)
		p.Status = order.Unknown

		_, err := order.RestoreOrder(p)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}
