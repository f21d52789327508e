// internal/engine/velocity.go
package engine

import (
	"time"

	"github.com/treadlinehq/treadline-backend/internal/domain"
)

// BuildVelocityProfiles folds sale events into per-(product, store) velocity
// profiles. A profile is emitted for every inventory pair, zero-valued when the
// pair had no sales; pairs without an inventory row are never fabricated.
func BuildVelocityProfiles(levels []domain.InventoryLevel, events []domain.SaleEvent, asOf time.Time, windowDays, priorWindowDays int) map[domain.ProductStoreKey]domain.VelocityProfile {
	profiles := make(map[domain.ProductStoreKey]domain.VelocityProfile, len(levels))
	for _, lv := range levels {
		key := domain.ProductStoreKey{ProductID: lv.ProductID, StoreID: lv.StoreID}
		profiles[key] = domain.VelocityProfile{ProductID: lv.ProductID, StoreID: lv.StoreID}
	}

	windowStart := asOf.AddDate(0, 0, -windowDays)

	// First pass: window totals and the most recent sale date per pair.
	for _, ev := range events {
		key := domain.ProductStoreKey{ProductID: ev.ProductID, StoreID: ev.StoreID}
		p, ok := profiles[key]
		if !ok {
			continue
		}
		if ev.SoldAt.After(windowStart) && !ev.SoldAt.After(asOf) {
			p.UnitsSoldInWindow += ev.Quantity
		}
		if ev.SoldAt.After(p.LastSaleDate) && !ev.SoldAt.After(asOf) {
			p.LastSaleDate = ev.SoldAt
		}
		profiles[key] = p
	}

	// Second pass: units sold in the comparable window immediately preceding
	// the last sale, now that the last sale date is known.
	for _, ev := range events {
		key := domain.ProductStoreKey{ProductID: ev.ProductID, StoreID: ev.StoreID}
		p, ok := profiles[key]
		if !ok || p.LastSaleDate.IsZero() {
			continue
		}
		priorStart := p.LastSaleDate.AddDate(0, 0, -priorWindowDays)
		if ev.SoldAt.After(priorStart) && !ev.SoldAt.After(p.LastSaleDate) {
			p.UnitsSoldPriorWindow += ev.Quantity
			profiles[key] = p
		}
	}

	if windowDays > 0 {
		for key, p := range profiles {
			p.DailyVelocity = float64(p.UnitsSoldInWindow) / float64(windowDays)
			profiles[key] = p
		}
	}

	return profiles
}
