package ports

import (
	"context"

	"kiosk/internal/core/domain/model/kernel"
)

// ObjectStore holds the uploaded files orders point at.
type ObjectStore interface {
	// Delete removes the object behind ref. Deleting a missing object succeeds.
	Delete(ctx context.Context, ref kernel.AssetRef) error
}
