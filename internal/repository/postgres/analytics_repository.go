// internal/repository/postgres/analytics_repository.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/treadlinehq/treadline-backend/internal/domain"
	"github.com/treadlinehq/treadline-backend/internal/repository"
)

type analyticsRepository struct {
	db *DB
}

// NewAnalyticsRepository returns the Postgres-backed read interface for the
// analytics engine.
func NewAnalyticsRepository(db *DB) repository.AnalyticsReader {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) Products(ctx context.Context) ([]domain.Product, error) {
	if err := r.db.Acquire(ctx); err != nil {
		return nil, err
	}
	defer r.db.Release()

	query := `
        SELECT id, brand, pattern, size, category, tier, list_price, unit_cost
        FROM products
        ORDER BY id
    `

	products := []domain.Product{}
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("error getting products: %w", err)
	}
	return products, nil
}

func (r *analyticsRepository) Stores(ctx context.Context) ([]domain.Store, error) {
	if err := r.db.Acquire(ctx); err != nil {
		return nil, err
	}
	defer r.db.Release()

	query := `SELECT id, name FROM stores ORDER BY id`

	stores := []domain.Store{}
	if err := r.db.SelectContext(ctx, &stores, query); err != nil {
		return nil, fmt.Errorf("error getting stores: %w", err)
	}
	return stores, nil
}

func (r *analyticsRepository) InventoryLevels(ctx context.Context, storeID string) ([]domain.InventoryLevel, error) {
	if err := r.db.Acquire(ctx); err != nil {
		return nil, err
	}
	defer r.db.Release()

	query := `
        SELECT product_id, store_id, quantity
        FROM inventory_levels
        WHERE 1=1
    `

	var args []interface{}
	argCounter := 1

	if storeID != "" {
		query += fmt.Sprintf(" AND store_id = $%d", argCounter)
		args = append(args, storeID)
		argCounter++
	}

	query += " ORDER BY product_id, store_id"

	levels := []domain.InventoryLevel{}
	if err := r.db.SelectContext(ctx, &levels, query, args...); err != nil {
		return nil, fmt.Errorf("error getting inventory levels: %w", err)
	}
	return levels, nil
}

func (r *analyticsRepository) SaleEvents(ctx context.Context, from, to time.Time, storeID string) ([]domain.SaleEvent, error) {
	if err := r.db.Acquire(ctx); err != nil {
		return nil, err
	}
	defer r.db.Release()

	query := `
        SELECT product_id, store_id, transaction_id, sold_at, quantity, unit_price
        FROM sale_events
        WHERE sold_at > $1 AND sold_at <= $2
    `

	args := []interface{}{from, to}
	argCounter := 3

	if storeID != "" {
		query += fmt.Sprintf(" AND store_id = $%d", argCounter)
		args = append(args, storeID)
		argCounter++
	}

	query += " ORDER BY sold_at"

	events := []domain.SaleEvent{}
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("error getting sale events: %w", err)
	}
	return events, nil
}

func (r *analyticsRepository) UnitsSoldBetween(ctx context.Context, productID, storeID string, from, to time.Time) (int, error) {
	if err := r.db.Acquire(ctx); err != nil {
		return 0, err
	}
	defer r.db.Release()

	// COALESCE so a product with zero matching rows sums to zero, never NULL.
	query := `
        SELECT COALESCE(SUM(quantity), 0)
        FROM sale_events
        WHERE product_id = $1 AND store_id = $2
          AND sold_at > $3 AND sold_at <= $4
    `

	var total int
	if err := r.db.GetContext(ctx, &total, query, productID, storeID, from, to); err != nil {
		return 0, fmt.Errorf("error summing units sold: %w", err)
	}
	return total, nil
}

func (r *analyticsRepository) DailySalesHistory(ctx context.Context, productID, storeID string, days int) ([]domain.DailySales, error) {
	if err := r.db.Acquire(ctx); err != nil {
		return nil, err
	}
	defer r.db.Release()

	if days <= 0 {
		days = 180
	}

	query := `
        WITH dates AS (
            SELECT date_trunc('day', current_date - (n || ' days')::interval) AS date
            FROM generate_series(0, $1) n
        ),
        daily AS (
            SELECT date_trunc('day', sold_at) AS date, SUM(quantity) AS units
            FROM sale_events
            WHERE product_id = $2 AND store_id = $3
              AND sold_at >= (current_date - ($1 || ' days')::interval)
            GROUP BY date_trunc('day', sold_at)
        )
        SELECT
            to_char(d.date, 'YYYY-MM-DD') AS date,
            COALESCE(daily.units, 0) AS units
        FROM dates d
        LEFT JOIN daily ON d.date = daily.date
        ORDER BY d.date
    `

	series := []domain.DailySales{}
	if err := r.db.SelectContext(ctx, &series, query, days-1, productID, storeID); err != nil {
		return nil, fmt.Errorf("error getting daily sales history: %w", err)
	}
	return series, nil
}

func (r *analyticsRepository) AvgUnitsPerTransaction(ctx context.Context) (map[string]float64, error) {
	if err := r.db.Acquire(ctx); err != nil {
		return nil, err
	}
	defer r.db.Release()

	// Global per-product average of units per transaction, across all stores.
	query := `
        SELECT product_id, AVG(txn_units) AS avg_units
        FROM (
            SELECT product_id, transaction_id, SUM(quantity) AS txn_units
            FROM sale_events
            GROUP BY product_id, transaction_id
        ) t
        GROUP BY product_id
    `

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying transaction averages: %w", err)
	}
	defer rows.Close()

	result := make(map[string]float64)
	for rows.Next() {
		var productID string
		var avg float64
		if err := rows.Scan(&productID, &avg); err != nil {
			return nil, fmt.Errorf("error scanning transaction average: %w", err)
		}
		result[productID] = avg
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction averages: %w", err)
	}

	return result, nil
}
