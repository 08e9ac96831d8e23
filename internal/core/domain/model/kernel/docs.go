// Package kernel provides the value objects shared by the kiosk order domain.
//
// The package includes:
//   - UUID: order identifiers with validation and comparison
//   - PickupCode: the 6-digit credential a customer presents at the kiosk
//   - AssetRef: an opaque handle to a stored print file
//   - Clock: the time source used by lifecycle rules
//
// Zero values of UUID, PickupCode and AssetRef are invalid; use the constructors.
// All of them are immutable and safe for concurrent use.
package kernel
