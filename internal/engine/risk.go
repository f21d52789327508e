// internal/engine/risk.go
package engine

import (
	"math"
	"sort"
	"time"

	"github.com/treadlinehq/treadline-backend/internal/domain"
)

// AssessRisk classifies one (product, store) pair against the outlook horizon.
func AssessRisk(p domain.Product, s domain.Store, level domain.InventoryLevel, vp domain.VelocityProfile, minStock, outlookDays int, asOf time.Time, cfg Config) domain.RiskAssessment {
	ra := domain.RiskAssessment{
		ProductID:     p.ID,
		Brand:         p.Brand,
		Pattern:       p.Pattern,
		Size:          p.Size,
		Category:      p.Category,
		StoreID:       s.ID,
		StoreName:     s.Name,
		Quantity:      level.Quantity,
		DailyVelocity: vp.DailyVelocity,
		MinStockLevel: minStock,
		Status:        domain.StatusOK,
	}

	ra.DaysOfSupply = daysOfSupply(level.Quantity, vp.DailyVelocity, cfg)

	if level.Quantity <= 0 && !vp.LastSaleDate.IsZero() {
		ra.DaysOutOfStock = int(asOf.Sub(vp.LastSaleDate).Hours() / 24)
	}

	if vp.DailyVelocity > 0 {
		neededForOutlook := int(math.Ceil(vp.DailyVelocity * float64(outlookDays)))
		target := neededForOutlook
		if minStock > target {
			target = minStock
		}
		suggested := target - level.Quantity
		// Single-unit orders are noise.
		if suggested <= 1 {
			suggested = 0
		}
		ra.SuggestedOrderQty = suggested

		if suggested > 0 {
			if level.Quantity <= 0 {
				ra.Status = domain.StatusOutOfStock
			} else {
				ra.Status = domain.StatusLowStock
			}
			return ra
		}
	}

	if ra.DaysOfSupply > cfg.OverstockSupplyDays && level.Quantity > cfg.OverstockMinQty {
		ra.Status = domain.StatusOverstock
	}

	return ra
}

// daysOfSupply is the runway before stockout at current sell-through. Stock
// that never sells gets the indefinite sentinel.
func daysOfSupply(quantity int, dailyVelocity float64, cfg Config) float64 {
	if dailyVelocity > 0 {
		return math.Max(0, float64(quantity)/dailyVelocity)
	}
	if quantity > 0 {
		return cfg.IndefiniteSupplyDays
	}
	return 0
}

// FilterRiskResults applies the caller's out-of-stock threshold and orders the
// list by suggested order quantity, largest first. A zero threshold keeps the
// full result set.
func FilterRiskResults(items []domain.RiskAssessment, oosThreshold int) []domain.RiskAssessment {
	filtered := items
	if oosThreshold > 0 {
		filtered = make([]domain.RiskAssessment, 0, len(items))
		for _, ra := range items {
			if ra.SuggestedOrderQty <= 1 {
				continue
			}
			recentlyOut := ra.Status == domain.StatusOutOfStock && ra.DaysOutOfStock <= oosThreshold
			if recentlyOut || ra.Status == domain.StatusLowStock {
				filtered = append(filtered, ra)
			}
		}
	}

	sorted := append([]domain.RiskAssessment(nil), filtered...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SuggestedOrderQty != sorted[j].SuggestedOrderQty {
			return sorted[i].SuggestedOrderQty > sorted[j].SuggestedOrderQty
		}
		if sorted[i].ProductID != sorted[j].ProductID {
			return sorted[i].ProductID < sorted[j].ProductID
		}
		return sorted[i].StoreID < sorted[j].StoreID
	})
	return sorted
}
