package commands

import (
	"context"

	"kiosk/internal/core/ports"
)

// AttachAssetsCommandHandler stores the order's file refs. Re-sending the refs
// already attached succeeds without a write.
type AttachAssetsCommandHandler struct {
	repo        ports.OrderRepository
	maxAttempts int
}

func NewAttachAssetsCommandHandler(repo ports.OrderRepository, maxAttempts int) AttachAssetsCommandHandler {
	return AttachAssetsCommandHandler{repo: repo, maxAttempts: maxAttempts}
}

func (h *AttachAssetsCommandHandler) Handle(ctx context.Context, cmd AttachAssetsCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return retryOnConflict(ctx, h.maxAttempts, "attach assets to order "+cmd.OrderID().String(), func(ctx context.Context) error {
		o, err := h.repo.Get(ctx, cmd.OrderID())
		if err != nil {
			return err
		}
		expected := o.Status()
		changed, err := o.AttachAssets(cmd.AssetRefs())
		if err != nil || !changed {
			return err
		}
		return h.repo.ConditionalUpdate(ctx, o, expected)
	})
}
