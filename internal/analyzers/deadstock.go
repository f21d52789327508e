// internal/analyzers/deadstock.go
package analyzers

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/treadlinehq/treadline-backend/internal/domain"
	"github.com/treadlinehq/treadline-backend/internal/engine"
)

// DetectDeadStock lists on-hand items with no recorded sale inside the
// lookback window, ordered by the value they tie up. An empty storeID scans
// all stores.
func (a *Analyzer) DetectDeadStock(ctx context.Context, storeID string) ([]domain.DeadStockItem, error) {
	asOf := time.Now().UTC()

	products, err := a.reader.Products(ctx)
	if err != nil {
		return nil, unavailable("loading products", err)
	}
	stores, err := a.reader.Stores(ctx)
	if err != nil {
		return nil, unavailable("loading stores", err)
	}
	levels, err := a.reader.InventoryLevels(ctx, storeID)
	if err != nil {
		return nil, unavailable("loading inventory levels", err)
	}

	// A wider horizon than the dead-stock window, so the last sale date is
	// known even for items that went quiet months ago.
	from := asOf.AddDate(0, 0, -a.cfg.HorizonDays)
	events, err := a.reader.SaleEvents(ctx, from, asOf, storeID)
	if err != nil {
		return nil, unavailable("loading sale events", err)
	}

	productsByID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}
	storesByID := make(map[string]domain.Store, len(stores))
	for _, s := range stores {
		storesByID[s.ID] = s
	}

	profiles := engine.BuildVelocityProfiles(levels, events, asOf, a.cfg.LookbackDays, 0)

	var items []domain.DeadStockItem
	for _, lv := range levels {
		if lv.Quantity <= 0 {
			continue
		}
		p, ok := productsByID[lv.ProductID]
		if !ok {
			continue
		}
		s, ok := storesByID[lv.StoreID]
		if !ok {
			continue
		}

		vp := profiles[domain.ProductStoreKey{ProductID: lv.ProductID, StoreID: lv.StoreID}]
		if vp.UnitsSoldInWindow > 0 {
			continue
		}

		item := domain.DeadStockItem{
			ProductID:   p.ID,
			Brand:       p.Brand,
			Pattern:     p.Pattern,
			Size:        p.Size,
			StoreID:     s.ID,
			StoreName:   s.Name,
			Quantity:    lv.Quantity,
			TiedUpValue: p.UnitCost.Mul(decimal.NewFromInt(int64(lv.Quantity))),
		}
		if !vp.LastSaleDate.IsZero() {
			last := vp.LastSaleDate
			item.LastSaleDate = &last
			item.DaysSinceLastSale = int(asOf.Sub(last).Hours() / 24)
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if c := items[i].TiedUpValue.Cmp(items[j].TiedUpValue); c != 0 {
			return c > 0
		}
		if items[i].ProductID != items[j].ProductID {
			return items[i].ProductID < items[j].ProductID
		}
		return items[i].StoreID < items[j].StoreID
	})

	return items, nil
}
