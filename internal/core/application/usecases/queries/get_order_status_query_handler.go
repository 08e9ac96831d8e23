package queries

import (
	"context"

	"kiosk/internal/core/ports"
)

// GetOrderStatusQueryHandler serves GetOrderStatusQuery from the order repository.
type GetOrderStatusQueryHandler struct {
	repo ports.OrderRepository
}

func NewGetOrderStatusQueryHandler(repo ports.OrderRepository) GetOrderStatusQueryHandler {
	return GetOrderStatusQueryHandler{repo: repo}
}

// Handle fails with errs.ErrObjectNotFound for an unknown order, including
// orders whose record was deleted by reclamation.
func (h GetOrderStatusQueryHandler) Handle(
	ctx context.Context,
	query GetOrderStatusQuery,
) (GetOrderStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	o, err := h.repo.Get(ctx, query.OrderID())
	if err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	return GetOrderStatusQueryResponse{
		ID:          o.ID(),
		Status:      o.Status().String(),
		PickupCode:  o.PickupCode().String(),
		Amount:      o.Amount(),
		TotalPages:  o.TotalPages(),
		AssetCount:  len(o.AssetRefs()),
		PaymentRef:  o.PaymentRef(),
		CreatedAt:   o.CreatedAt(),
		ExpiresAt:   o.ExpiresAt(),
		PrintedAt:   o.PrintedAt(),
		ReclaimedAt: o.ReclaimedAt(),
	}, nil
}
