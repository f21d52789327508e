// internal/engine/config.go
package engine

// Config carries the tuned business constants behind the risk and transfer
// heuristics. The numeric values encode store policy; treat them as given
// rather than re-deriving them.
type Config struct {
	// RiskWindowDays is the lookback used to estimate daily sales velocity.
	RiskWindowDays int
	// PriorWindowDays sizes the comparable window immediately preceding the
	// last sale, used for trend comparison.
	PriorWindowDays int
	// DefaultOutlookDays sizes reorder suggestions when the caller does not.
	DefaultOutlookDays int
	// ReserveWindowDays sizes the donor store's protected reserve.
	ReserveWindowDays int
	// CushionDays is the days-of-supply above which a faster-selling source
	// may still donate stock.
	CushionDays float64
	// ShortWindowDays is the recent-sales window used for confidence scoring.
	ShortWindowDays int
	// ConfidenceScale is the velocity differential (units/day) that yields
	// full confidence.
	ConfidenceScale float64
	// PrecedenceFloorDays: below this post-transfer runway a faster-selling
	// source keeps its stock and confidence drops to zero.
	PrecedenceFloorDays float64
	// HardFloorDays: below this post-transfer runway confidence is halved
	// regardless of relative velocity.
	HardFloorDays float64
	// MinSourceUnits is the minimum on-hand quantity for a donor store.
	MinSourceUnits int
	// MinTransferQty is the smallest transfer worth the logistics.
	MinTransferQty int
	// OverstockSupplyDays / OverstockMinQty bound the Overstock classification.
	OverstockSupplyDays float64
	OverstockMinQty     int
	// IndefiniteSupplyDays is the sentinel runway for stock that never sells.
	IndefiniteSupplyDays float64
	// Workers bounds the per-product fan-out.
	Workers int
}

// DefaultConfig returns the production policy values.
func DefaultConfig() Config {
	return Config{
		RiskWindowDays:       180,
		PriorWindowDays:      90,
		DefaultOutlookDays:   30,
		ReserveWindowDays:    60,
		CushionDays:          90,
		ShortWindowDays:      60,
		ConfidenceScale:      0.6,
		PrecedenceFloorDays:  35,
		HardFloorDays:        30,
		MinSourceUnits:       8,
		MinTransferQty:       4,
		OverstockSupplyDays:  180,
		OverstockMinQty:      4,
		IndefiniteSupplyDays: 999,
		Workers:              4,
	}
}
