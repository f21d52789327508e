// internal/analyzers/margin.go
package analyzers

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/treadlinehq/treadline-backend/internal/domain"
)

// ComputeMarginLeakage totals the gap between list-price revenue and actual
// revenue per product over the lookback window. An empty result is advisory,
// not an error.
func (a *Analyzer) ComputeMarginLeakage(ctx context.Context, storeID string) (*domain.MarginLeakageReport, error) {
	asOf := time.Now().UTC()

	products, err := a.reader.Products(ctx)
	if err != nil {
		return nil, unavailable("loading products", err)
	}
	from := asOf.AddDate(0, 0, -a.cfg.LookbackDays)
	events, err := a.reader.SaleEvents(ctx, from, asOf, storeID)
	if err != nil {
		return nil, unavailable("loading sale events", err)
	}

	report := &domain.MarginLeakageReport{
		StoreID:      storeID,
		TotalLeakage: decimal.Zero,
		Items:        []domain.MarginLeakageItem{},
	}
	if len(events) == 0 {
		report.Message = "no sales history in the analysis window"
		return report, nil
	}

	productsByID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	type accum struct {
		units   int
		revenue decimal.Decimal
	}
	byProduct := make(map[string]accum)
	for _, ev := range events {
		if ev.Quantity <= 0 {
			continue
		}
		acc := byProduct[ev.ProductID]
		acc.units += ev.Quantity
		acc.revenue = acc.revenue.Add(ev.UnitPrice.Mul(decimal.NewFromInt(int64(ev.Quantity))))
		byProduct[ev.ProductID] = acc
	}

	for pid, acc := range byProduct {
		p, ok := productsByID[pid]
		if !ok || acc.units == 0 {
			continue
		}
		units := decimal.NewFromInt(int64(acc.units))
		leakage := p.ListPrice.Mul(units).Sub(acc.revenue)
		if leakage.Sign() <= 0 {
			continue
		}
		report.Items = append(report.Items, domain.MarginLeakageItem{
			ProductID:       p.ID,
			Brand:           p.Brand,
			Pattern:         p.Pattern,
			UnitsSold:       acc.units,
			ListPrice:       p.ListPrice,
			AvgSellingPrice: acc.revenue.DivRound(units, 2),
			Leakage:         leakage,
		})
		report.TotalLeakage = report.TotalLeakage.Add(leakage)
	}

	sort.SliceStable(report.Items, func(i, j int) bool {
		if c := report.Items[i].Leakage.Cmp(report.Items[j].Leakage); c != 0 {
			return c > 0
		}
		return report.Items[i].ProductID < report.Items[j].ProductID
	})

	if len(report.Items) == 0 {
		report.Message = "no below-list sales found in the analysis window"
	}

	return report, nil
}
