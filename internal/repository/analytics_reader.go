// internal/repository/analytics_reader.go
package repository

import (
	"context"
	"time"

	"github.com/treadlinehq/treadline-backend/internal/domain"
)

// AnalyticsReader is the read-only contract the analytics engine requires from
// the storage layer. Implementations must tolerate products with zero matching
// rows by returning empty results or zero sums, never an error.
type AnalyticsReader interface {
	// Products returns the product catalog reference data.
	Products(ctx context.Context) ([]domain.Product, error)

	// Stores returns the store reference data.
	Stores(ctx context.Context) ([]domain.Store, error)

	// InventoryLevels returns current on-hand quantity per (product, store).
	// An empty storeID means all stores.
	InventoryLevels(ctx context.Context, storeID string) ([]domain.InventoryLevel, error)

	// SaleEvents returns historical sale lines with sold_at in (from, to].
	// An empty storeID means all stores.
	SaleEvents(ctx context.Context, from, to time.Time, storeID string) ([]domain.SaleEvent, error)

	// UnitsSoldBetween returns summed units sold for one (product, store)
	// over an arbitrary date range. Zero when no rows match.
	UnitsSoldBetween(ctx context.Context, productID, storeID string, from, to time.Time) (int, error)

	// DailySalesHistory returns a day-bucketed sales series over the given
	// lookback, zero-filled for days without sales.
	DailySalesHistory(ctx context.Context, productID, storeID string, days int) ([]domain.DailySales, error)

	// AvgUnitsPerTransaction returns the global (not per-store) historical
	// average units sold per transaction, keyed by product ID. Products with
	// no sales history are absent from the map.
	AvgUnitsPerTransaction(ctx context.Context) (map[string]float64, error)
}
