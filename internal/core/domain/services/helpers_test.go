package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"kiosk/internal/adapters/out/memory"
	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/domain/model/order"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockObjectStore struct {
	mock.Mock
}

func (m *mockObjectStore) Delete(ctx context.Context, ref kernel.AssetRef) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func refs(t *testing.T, raw ...string) []kernel.AssetRef {
	t.Helper()
	out, err := kernel.NewAssetRefs(raw)
	require.NoError(t, err)
	return out
}

func code(t *testing.T, s string) kernel.PickupCode {
	t.Helper()
	c, err := kernel.NewPickupCode(s)
	require.NoError(t, err)
	return c
}

func newOrder(t *testing.T, assetRefs []kernel.AssetRef) *order.Order {
	t.Helper()
	file, err := order.NewPrintFile("doc.pdf", order.Monochrome, 4, 1)
	require.NoError(t, err)
	settings, err := order.NewPrintSettings([]order.PrintFile{file})
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), settings, assetRefs, "", t0, 24*time.Hour)
	require.NoError(t, err)
	return o
}

// storeOrder saves o and walks it forward to status.
func storeOrder(t *testing.T, repo *memory.OrderRepository, o *order.Order, status order.Status, pickup string) *order.Order {
	t.Helper()
	ctx := t.Context()
	require.NoError(t, repo.Create(ctx, o))

	step := func(expected order.Status, fn func(*order.Order) error) {
		cur, err := repo.Get(ctx, o.ID())
		require.NoError(t, err)
		require.NoError(t, fn(cur))
		require.NoError(t, repo.ConditionalUpdate(ctx, cur, expected))
	}

	if status == order.Created {
		return o
	}
	if status == order.Expired {
		step(order.Created, (*order.Order).Expire)
		return o
	}
	step(order.Created, func(cur *order.Order) error { return cur.ConfirmPayment("pay-"+pickup, code(t, pickup)) })
	if status == order.Active {
		return o
	}
	step(order.Active, func(cur *order.Order) error { return cur.Redeem(code(t, pickup), t0) })
	if status == order.Printing {
		return o
	}
	step(order.Printing, func(cur *order.Order) error { return cur.Complete(t0.Add(time.Minute)) })
	return o
}
