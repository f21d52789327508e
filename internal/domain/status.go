// internal/domain/status.go
package domain

// StockStatus is the risk classification for a (product, store) pair.
type StockStatus string

const (
	StatusOK         StockStatus = "OK"
	StatusLowStock   StockStatus = "LowStock"
	StatusOutOfStock StockStatus = "OutOfStock"
	StatusOverstock  StockStatus = "Overstock"
)

// ConfidenceLevel buckets a 0-100 transfer confidence score.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "High"
	ConfidenceMedium ConfidenceLevel = "Medium"
	ConfidenceLow    ConfidenceLevel = "Low"
)

// ConfidenceLevelFor maps a score to its display bucket.
func ConfidenceLevelFor(score float64) ConfidenceLevel {
	switch {
	case score >= 80:
		return ConfidenceHigh
	case score >= 50:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
