package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"kiosk/internal/adapters/out/memory"
	"kiosk/internal/adapters/out/metrics"
	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/domain/model/order"
	"kiosk/internal/core/domain/services"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const ttl = 24 * time.Hour

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) ConditionalUpdate(ctx context.Context, o *order.Order, expected order.Status) error {
	args := m.Called(ctx, o, expected)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) QueryByStatusAndAge(
	ctx context.Context, statuses []order.Status, olderThan time.Time, limit int,
) ([]*order.Order, error) {
	args := m.Called(ctx, statuses, olderThan, limit)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

func (m *MockOrderRepository) QueryUnreclaimed(ctx context.Context, statuses []order.Status, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, statuses, limit)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

func (m *MockOrderRepository) QueryByCode(ctx context.Context, code kernel.PickupCode) (*order.Order, error) {
	args := m.Called(ctx, code)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) QueryByAssetRef(ctx context.Context, ref kernel.AssetRef, limit int) ([]kernel.UUID, error) {
	args := m.Called(ctx, ref, limit)
	ids, _ := args.Get(0).([]kernel.UUID)
	return ids, args.Error(1)
}

type MockPaymentGateway struct{ mock.Mock }

func (m *MockPaymentGateway) OpenOrder(ctx context.Context, orderRef string, amount int64) (string, error) {
	args := m.Called(ctx, orderRef, amount)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentGateway) VerifySignature(ctx context.Context, orderRef, paymentRef, signature string) (bool, error) {
	args := m.Called(ctx, orderRef, paymentRef, signature)
	return args.Bool(0), args.Error(1)
}

type MockReclamationScheduler struct{ mock.Mock }

func (m *MockReclamationScheduler) Schedule(ctx context.Context, id kernel.UUID) {
	m.Called(ctx, id)
}

type MockOrderReclaimer struct{ mock.Mock }

func (m *MockOrderReclaimer) Reclaim(ctx context.Context, id kernel.UUID) (services.ReclaimOutcome, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(services.ReclaimOutcome), args.Error(1)
}

func newMetrics() *metrics.Collector {
	return metrics.NewCollector()
}

func assetRefs(t *testing.T, raw ...string) []kernel.AssetRef {
	t.Helper()
	refs, err := kernel.NewAssetRefs(raw)
	require.NoError(t, err)
	return refs
}

func pickupCode(t *testing.T, s string) kernel.PickupCode {
	t.Helper()
	c, err := kernel.NewPickupCode(s)
	require.NoError(t, err)
	return c
}

func printFiles(t *testing.T) []order.PrintFile {
	t.Helper()
	color, err := order.NewPrintFile("cover.pdf", order.Color, 2, 1)
	require.NoError(t, err)
	bw, err := order.NewPrintFile("body.pdf", order.Monochrome, 3, 2)
	require.NoError(t, err)
	return []order.PrintFile{color, bw}
}

// seed stores an order created at createdAt and walks it to status.
func seed(
	t *testing.T, repo *memory.OrderRepository, createdAt time.Time, refs []kernel.AssetRef, status order.Status, code string,
) *order.Order {
	t.Helper()
	ctx := t.Context()
	settings, err := order.NewPrintSettings(printFiles(t))
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), settings, refs, "", createdAt, ttl)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, o))

	step := func(expected order.Status, fn func(*order.Order) error) {
		cur, getErr := repo.Get(ctx, o.ID())
		require.NoError(t, getErr)
		require.NoError(t, fn(cur))
		require.NoError(t, repo.ConditionalUpdate(ctx, cur, expected))
	}

	switch status {
	case order.Created:
	case order.PendingPayment:
		step(order.Created, func(cur *order.Order) error { return cur.OpenPayment("pay-" + code) })
	case order.Expired:
		step(order.Created, (*order.Order).Expire)
	default:
		step(order.Created, func(cur *order.Order) error { return cur.ConfirmPayment("pay-"+code, pickupCode(t, code)) })
		if status == order.Active {
			break
		}
		step(order.Active, func(cur *order.Order) error { return cur.Redeem(pickupCode(t, code), createdAt) })
		if status == order.Printing {
			break
		}
		step(order.Printing, func(cur *order.Order) error { return cur.Complete(createdAt.Add(time.Minute)) })
	}

	stored, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	return stored
}
