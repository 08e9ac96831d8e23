package commands_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"kiosk/internal/adapters/out/memory"
	"kiosk/internal/core/application/usecases/commands"
	"kiosk/internal/core/domain/model/order"
	"kiosk/internal/core/ports"
	"kiosk/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRedeemHandler(repo ports.OrderRepository, now time.Time, diagnostic bool) commands.RedeemPickupCodeCommandHandler {
	return commands.NewRedeemPickupCodeCommandHandler(
		repo, &fixedClock{now: now}, newMetrics(), commands.DefaultMaxTransitionAttempts, diagnostic, discardLogger(),
	)
}

func redeemCmd(t *testing.T, code string) commands.RedeemPickupCodeCommand {
	t.Helper()
	cmd, err := commands.NewRedeemPickupCodeCommand(code)
	require.NoError(t, err)
	return cmd
}

func TestNewRedeemPickupCodeCommand(t *testing.T) {
	for _, bad := range []string{"", "12345", "abcdef", "012345"} {
		_, err := commands.NewRedeemPickupCodeCommand(bad)
		require.Error(t, err, bad)
		assert.True(t, errs.IsValidation(err), bad)
	}
}

func TestRedeemPickupCodeCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	repo := memory.NewOrderRepository()
	o := seed(t, repo, t0, assetRefs(t, "cid-1"), order.Active, "123456")
	h := newRedeemHandler(repo, t0.Add(time.Hour), false)

	redeemed, err := h.Handle(ctx, redeemCmd(t, "123456"))

	require.NoError(t, err)
	assert.True(t, redeemed.ID().IsEqual(o.ID()))
	assert.Equal(t, order.Printing, redeemed.Status())
	stored, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, order.Printing, stored.Status())
}

func TestRedeemPickupCodeCommandHandler_Handle_Failures(t *testing.T) {
	t.Run("unknown code", func(t *testing.T) {
		repo := memory.NewOrderRepository()
		seed(t, repo, t0, assetRefs(t, "cid-1"), order.Active, "123456")
		h := newRedeemHandler(repo, t0, false)

		_, err := h.Handle(t.Context(), redeemCmd(t, "654321"))

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("past the deadline", func(t *testing.T) {
		repo := memory.NewOrderRepository()
		seed(t, repo, t0, assetRefs(t, "cid-1"), order.Active, "123456")
		h := newRedeemHandler(repo, t0.Add(ttl+time.Second), false)

		_, err := h.Handle(t.Context(), redeemCmd(t, "123456"))

		require.ErrorIs(t, err, order.ErrPickupCodeExpired)
	})

	t.Run("no files attached", func(t *testing.T) {
		repo := memory.NewOrderRepository()
		seed(t, repo, t0, nil, order.Active, "123456")
		h := newRedeemHandler(repo, t0, false)

		_, err := h.Handle(t.Context(), redeemCmd(t, "123456"))

		require.ErrorIs(t, err, order.ErrNoAssets)
	})

	t.Run("second redemption", func(t *testing.T) {
		repo := memory.NewOrderRepository()
		seed(t, repo, t0, assetRefs(t, "cid-1"), order.Printing, "123456")
		h := newRedeemHandler(repo, t0, false)

		_, err := h.Handle(t.Context(), redeemCmd(t, "123456"))

		require.ErrorIs(t, err, order.ErrAlreadyPrinted)
	})

	t.Run("completed order released its code", func(t *testing.T) {
		repo := memory.NewOrderRepository()
		seed(t, repo, t0, assetRefs(t, "cid-1"), order.Completed, "123456")
		h := newRedeemHandler(repo, t0, false)

		_, err := h.Handle(t.Context(), redeemCmd(t, "123456"))

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("storage failure surfaces", func(t *testing.T) {
		repo := new(MockOrderRepository)
		storageErr := errs.NewStorageError("query order by code", errors.New("connection refused"))
		repo.On("QueryByCode", mock.Anything, pickupCode(t, "123456")).Return(nil, storageErr).Once()
		h := newRedeemHandler(repo, t0, false)

		_, err := h.Handle(t.Context(), redeemCmd(t, "123456"))

		require.ErrorIs(t, err, errs.ErrStorage)
		repo.AssertExpectations(t)
	})

	t.Run("endless conflicts give up with invalid state", func(t *testing.T) {
		memRepo := memory.NewOrderRepository()
		o := seed(t, memRepo, t0, assetRefs(t, "cid-1"), order.Active, "123456")
		repo := new(MockOrderRepository)
		for range commands.DefaultMaxTransitionAttempts {
			fresh, err := memRepo.Get(t.Context(), o.ID())
			require.NoError(t, err)
			repo.On("QueryByCode", mock.Anything, mock.Anything).Return(fresh, nil).Once()
		}
		repo.On("ConditionalUpdate", mock.Anything, mock.Anything, order.Active).
			Return(errs.NewPreconditionFailedError("order", o.ID().String(), "ACTIVE"))
		h := newRedeemHandler(repo, t0, false)

		_, err := h.Handle(t.Context(), redeemCmd(t, "123456"))

		require.ErrorIs(t, err, errs.ErrInvalidState)
		repo.AssertNumberOfCalls(t, "ConditionalUpdate", commands.DefaultMaxTransitionAttempts)
	})
}

func TestRedeemPickupCodeCommandHandler_Handle_ConcurrentRedemptionsHaveOneWinner(t *testing.T) {
	const callers = 50
	ctx := t.Context()
	repo := memory.NewOrderRepository()
	o := seed(t, repo, t0, assetRefs(t, "cid-1"), order.Active, "123456")
	h := newRedeemHandler(repo, t0.Add(time.Minute), false)

	var wg sync.WaitGroup
	start := make(chan struct{})
	errList := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errList[i] = h.Handle(ctx, redeemCmd(t, "123456"))
		}(i)
	}
	close(start)
	wg.Wait()

	winners := 0
	for _, err := range errList {
		if err == nil {
			winners++
			continue
		}
		assert.True(t,
			errors.Is(err, order.ErrAlreadyPrinted) || errors.Is(err, errs.ErrInvalidState),
			"unexpected error: %v", err)
	}
	assert.Equal(t, 1, winners)

	stored, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, order.Printing, stored.Status())
	assert.Equal(t, o.Version()+1, stored.Version())
}

func TestRedeemPickupCodeCommandHandler_Handle_DiagnosticReprint(t *testing.T) {
	repo := memory.NewOrderRepository()
	o := seed(t, repo, t0, assetRefs(t, "cid-1"), order.Printing, "123456")

	t.Run("off by default semantics", func(t *testing.T) {
		h := newRedeemHandler(repo, t0, false)

		_, err := h.Handle(t.Context(), redeemCmd(t, "123456"))

		require.ErrorIs(t, err, order.ErrAlreadyPrinted)
	})

	t.Run("enabled returns the printing order untouched", func(t *testing.T) {
		h := newRedeemHandler(repo, t0, true)

		again, err := h.Handle(t.Context(), redeemCmd(t, "123456"))

		require.NoError(t, err)
		assert.Equal(t, order.Printing, again.Status())
		assert.Equal(t, o.Version(), again.Version())
	})
}
