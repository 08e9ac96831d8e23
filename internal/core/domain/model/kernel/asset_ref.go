package kernel

import (
	"fmt"
	"strings"

	"kiosk/internal/pkg/errs"
)

const maxAssetRefLength = 1024

// ErrAssetRefIsNotConstructed indicates a zero-value AssetRef.
var ErrAssetRefIsNotConstructed = errs.NewValueIsRequiredError("AssetRef must be created via NewAssetRef")

// AssetRef is an opaque handle to a stored file, understood by the object store
// (a content identifier or object key). Several orders may hold the same ref.
type AssetRef struct {
	value string
}

func NewAssetRef(s string) (AssetRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AssetRef{}, errs.NewValueIsRequiredError("asset ref")
	}
	if len(s) > maxAssetRefLength {
		return AssetRef{}, errs.NewValueIsOutOfRangeError("asset ref length", len(s), 1, maxAssetRefLength)
	}
	return AssetRef{value: s}, nil
}

// NewAssetRefs parses an ordered list of refs. Duplicates are rejected so a
// single order never asks the store to delete the same object twice.
func NewAssetRefs(raw []string) ([]AssetRef, error) {
	refs := make([]AssetRef, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for i, s := range raw {
		ref, err := NewAssetRef(s)
		if err != nil {
			return nil, fmt.Errorf("asset ref #%d: %w", i, err)
		}
		if _, dup := seen[ref.value]; dup {
			return nil, errs.NewValueIsInvalidErrorWithCause("asset refs", fmt.Errorf("%q is listed twice", ref.value))
		}
		seen[ref.value] = struct{}{}
		refs = append(refs, ref)
	}
	return refs, nil
}

// AssetRefStrings is the inverse of NewAssetRefs.
func AssetRefStrings(refs []AssetRef) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.value
	}
	return out
}

func (r AssetRef) String() string {
	return r.value
}

func (r AssetRef) IsEqual(other AssetRef) bool {
	return r.value == other.value
}

func (r AssetRef) Validate() error {
	if r.value == "" {
		return ErrAssetRefIsNotConstructed
	}
	return nil
}
