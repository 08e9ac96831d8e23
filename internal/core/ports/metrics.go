package ports

// Metrics receives lifecycle and reclamation events.
type Metrics interface {
	SweepFinished(found, expired, reclaimed, failed int)
	AssetDeleted()
	AssetShared()
	Redemption(outcome string)
}
