// Package queries contains read-only operations over orders.
package queries

import (
	"errors"
	"time"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/pkg/guard"
)

var ErrGetOrderStatusQueryIsNotConstructed = errors.New(
	"GetOrderStatusQuery must be created via NewGetOrderStatusQuery constructor",
)

// GetOrderStatusQuery reads the current state of one order.
//
// Example:
//
//	query, _ := NewGetOrderStatusQuery(orderID)
//	resp, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("order %s is %s\n", resp.ID, resp.Status)
type GetOrderStatusQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetOrderStatusQuery(orderID kernel.UUID) (GetOrderStatusQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderStatusQuery{}, err
	}
	return GetOrderStatusQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderStatusQueryIsNotConstructed)
}

func (q GetOrderStatusQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetOrderStatusQueryResponse is the customer-facing view of an order.
// PickupCode is empty unless the order is ACTIVE or PRINTING.
type GetOrderStatusQueryResponse struct {
	ID          kernel.UUID
	Status      string
	PickupCode  string
	Amount      int64
	TotalPages  int
	AssetCount  int
	PaymentRef  string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	PrintedAt   *time.Time
	ReclaimedAt *time.Time
}
