// internal/engine/minstock.go
package engine

import "github.com/treadlinehq/treadline-backend/internal/domain"

// RoundInstallQty maps a historical average units-per-transaction to the
// step-rounded install quantity: enough stock to complete one typical job.
func RoundInstallQty(avg float64) int {
	switch {
	case avg <= 2:
		return 2
	case avg <= 6:
		return 4
	case avg <= 8:
		return 8
	default:
		return 10
	}
}

// MinStockLevel derives the safety-stock floor for a product from its global
// average units per transaction. Products with no sales history fall back to a
// per-category default.
func MinStockLevel(p domain.Product, avgUnitsPerTxn map[string]float64) int {
	avg, ok := avgUnitsPerTxn[p.ID]
	if !ok || avg <= 0 {
		switch p.Category {
		case domain.CategoryPassenger, domain.CategoryLightTruck:
			return RoundInstallQty(4)
		default:
			return RoundInstallQty(2)
		}
	}
	return RoundInstallQty(avg)
}
