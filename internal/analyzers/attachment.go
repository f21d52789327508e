// internal/analyzers/attachment.go
package analyzers

import (
	"context"
	"time"

	"github.com/treadlinehq/treadline-backend/internal/domain"
)

// ComputeAttachmentRate measures the share of tire transactions that also
// include a service or accessory line. Zero tire transactions is an advisory
// empty response, not an error.
func (a *Analyzer) ComputeAttachmentRate(ctx context.Context, storeID string) (*domain.AttachmentRateReport, error) {
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

	categories := make(map[string]domain.ProductCategory, len(products))
	for _, p := range products {
		categories[p.ID] = p.Category
	}

	type txn struct {
		hasTire  bool
		hasOther bool
	}
	txns := make(map[string]txn)
	for _, ev := range events {
		cat, ok := categories[ev.ProductID]
		if !ok {
			continue
		}
		t := txns[ev.TransactionID]
		switch cat {
		case domain.CategoryPassenger, domain.CategoryLightTruck:
			t.hasTire = true
		default:
			t.hasOther = true
		}
		txns[ev.TransactionID] = t
	}

	report := &domain.AttachmentRateReport{StoreID: storeID}
	for _, t := range txns {
		if !t.hasTire {
			continue
		}
		report.TireTransactions++
		if t.hasOther {
			report.AttachedTransactions++
		}
	}

	if report.TireTransactions == 0 {
		report.Message = "no tire transactions in the analysis window"
		return report, nil
	}

	report.AttachmentRate = float64(report.AttachedTransactions) / float64(report.TireTransactions)
	return report, nil
}
