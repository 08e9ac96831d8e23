package http

import (
	"kiosk/internal/core/application/usecases/queries"
	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/domain/model/order"
	"kiosk/internal/generated/servers"
)

func toPrintFiles(files []servers.PrintFile) ([]order.PrintFile, error) {
	out := make([]order.PrintFile, 0, len(files))
	for _, f := range files {
		color, err := order.ParseColorMode(f.Color)
		if err != nil {
			return nil, err
		}
		file, err := order.NewPrintFile(deref(f.Name), color, f.PageCount, f.Copies)
		if err != nil {
			return nil, err
		}
		out = append(out, file)
	}
	return out, nil
}

// toOrder is the full view returned by create, reprint and redeem.
// The kiosk prints from Files and AssetRefs.
func toOrder(o *order.Order) servers.Order {
	files := o.Settings().Files()
	resp := servers.Order{
		Id:          o.ID().Bytes(),
		Status:      o.Status().String(),
		Files:       make([]servers.PrintFile, 0, len(files)),
		AssetRefs:   kernel.AssetRefStrings(o.AssetRefs()),
		Amount:      o.Amount(),
		TotalPages:  o.TotalPages(),
		PaymentRef:  optional(o.PaymentRef()),
		CreatedAt:   o.CreatedAt(),
		ExpiresAt:   o.ExpiresAt(),
		PrintedAt:   o.PrintedAt(),
		ReclaimedAt: o.ReclaimedAt(),
	}
	if !o.PickupCode().IsZero() {
		resp.PickupCode = optional(o.PickupCode().String())
	}
	for _, f := range files {
		resp.Files = append(resp.Files, servers.PrintFile{
			Name:      optional(f.Name()),
			Color:     f.Color().String(),
			PageCount: f.PageCount(),
			Copies:    f.Copies(),
		})
	}
	return resp
}

func toOrderStatus(r queries.GetOrderStatusQueryResponse) servers.OrderStatus {
	return servers.OrderStatus{
		Id:          r.ID.Bytes(),
		Status:      r.Status,
		PickupCode:  optional(r.PickupCode),
		Amount:      r.Amount,
		TotalPages:  r.TotalPages,
		AssetCount:  r.AssetCount,
		PaymentRef:  optional(r.PaymentRef),
		CreatedAt:   r.CreatedAt,
		ExpiresAt:   r.ExpiresAt,
		PrintedAt:   r.PrintedAt,
		ReclaimedAt: r.ReclaimedAt,
	}
}

// optional maps the zero value to an absent field.
func optional[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
