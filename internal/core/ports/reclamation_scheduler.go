package ports

import (
	"context"

	"kiosk/internal/core/domain/model/kernel"
)

// ReclamationScheduler triggers single-order reclamation after an order completes.
// Implementations either run it inline or hand it to a worker; a failure is
// never reported back because the periodic sweep picks the order up again.
type ReclamationScheduler interface {
	Schedule(ctx context.Context, orderID kernel.UUID)
}
