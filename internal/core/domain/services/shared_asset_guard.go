package services

import (
	"context"

	"kiosk/internal/core/domain/model/kernel"
)

// AssetLookup is the part of the order repository the guard reads.
type AssetLookup interface {
	QueryByAssetRef(ctx context.Context, ref kernel.AssetRef, limit int) ([]kernel.UUID, error)
}

// SharedAssetGuard decides whether a stored file may be deleted.
//
// The answer is computed from the store every time. Reprints create sibling
// orders long after the original, so nothing known at creation time is reliable.
type SharedAssetGuard struct {
	assets AssetLookup
}

func NewSharedAssetGuard(assets AssetLookup) *SharedAssetGuard {
	return &SharedAssetGuard{assets: assets}
}

// IsShared reports whether any order other than excluding lists ref.
//
// At most two holders are fetched: the excluded order itself and one other
// are enough to answer, however many orders share the file.
func (g *SharedAssetGuard) IsShared(ctx context.Context, ref kernel.AssetRef, excluding kernel.UUID) (bool, error) {
	holders, err := g.assets.QueryByAssetRef(ctx, ref, 2)
	if err != nil {
		return false, err
	}
	for _, id := range holders {
		if !id.IsEqual(excluding) {
			return true, nil
		}
	}
	return false, nil
}
