// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductCategory classifies what kind of vehicle a tire fits.
type ProductCategory string

const (
	CategoryPassenger  ProductCategory = "PASSENGER"
	CategoryLightTruck ProductCategory = "LIGHT_TRUCK"
	CategoryOther      ProductCategory = "OTHER"
)

// Product is immutable reference data owned by the catalog sync.
type Product struct {
	ID        string          `json:"id" db:"id"`
	Brand     string          `json:"brand" db:"brand"`
	Pattern   string          `json:"pattern" db:"pattern"`
	Size      string          `json:"size" db:"size"`
	Category  ProductCategory `json:"category" db:"category"`
	Tier      string          `json:"tier" db:"tier"`
	ListPrice decimal.Decimal `json:"list_price" db:"list_price"`
	UnitCost  decimal.Decimal `json:"unit_cost" db:"unit_cost"`
}

// Store represents a store location.
type Store struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// InventoryLevel is the current on-hand quantity for a (product, store) pair.
// It is mutated by the inventory sync and read-only to the analytics engine.
type InventoryLevel struct {
	ProductID string `json:"product_id" db:"product_id"`
	StoreID   string `json:"store_id" db:"store_id"`
	Quantity  int    `json:"quantity" db:"quantity"`
}

// SaleEvent is a single historical transaction line. Append-only.
type SaleEvent struct {
	ProductID     string          `json:"product_id" db:"product_id"`
	StoreID       string          `json:"store_id" db:"store_id"`
	TransactionID string          `json:"transaction_id" db:"transaction_id"`
	SoldAt        time.Time       `json:"sold_at" db:"sold_at"`
	Quantity      int             `json:"quantity" db:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price" db:"unit_price"`
}

// ProductStoreKey keys per-pair aggregates without shared mutable map state.
type ProductStoreKey struct {
	ProductID string
	StoreID   string
}

// VelocityProfile holds per-(product, store) sales velocity signals derived for
// one analysis run. Never persisted.
type VelocityProfile struct {
	ProductID            string    `json:"product_id"`
	StoreID              string    `json:"store_id"`
	DailyVelocity        float64   `json:"daily_velocity"`
	UnitsSoldInWindow    int       `json:"units_sold_in_window"`
	LastSaleDate         time.Time `json:"last_sale_date"`
	UnitsSoldPriorWindow int       `json:"units_sold_prior_window"`
}

// RiskAssessment combines on-hand quantity, velocity and the minimum-stock
// floor for one (product, store) pair. Pure function of the snapshot.
type RiskAssessment struct {
	ProductID         string          `json:"product_id"`
	Brand             string          `json:"brand"`
	Pattern           string          `json:"pattern"`
	Size              string          `json:"size"`
	Category          ProductCategory `json:"category"`
	StoreID           string          `json:"store_id"`
	StoreName         string          `json:"store_name"`
	Quantity          int             `json:"quantity"`
	DailyVelocity     float64         `json:"daily_velocity"`
	DaysOfSupply      float64         `json:"days_of_supply"`
	DaysOutOfStock    int             `json:"days_out_of_stock"`
	MinStockLevel     int             `json:"min_stock_level"`
	SuggestedOrderQty int             `json:"suggested_order_qty"`
	Status            StockStatus     `json:"status"`
}

// DailySales is one bucket of a day-bucketed sales history series.
type DailySales struct {
	Date  string `json:"date" db:"date"`
	Units int    `json:"units" db:"units"`
}

// StoreStock annotates a transfer candidate with the on-hand picture at every
// store carrying the product.
type StoreStock struct {
	StoreID   string `json:"store_id"`
	StoreName string `json:"store_name"`
	Quantity  int    `json:"quantity"`
}

// TransferCandidate is a proposed movement of units from a surplus store to a
// shortage store, scored 0-100.
type TransferCandidate struct {
	ProductID       string          `json:"product_id"`
	Brand           string          `json:"brand"`
	Pattern         string          `json:"pattern"`
	Size            string          `json:"size"`
	SourceStoreID   string          `json:"source_store_id"`
	SourceStoreName string          `json:"source_store_name"`
	TargetStoreID   string          `json:"target_store_id"`
	TargetStoreName string          `json:"target_store_name"`
	ProposedQty     int             `json:"proposed_qty"`
	SourceRisk      RiskAssessment  `json:"source_risk"`
	TargetRisk      RiskAssessment  `json:"target_risk"`
	ConfidenceScore float64         `json:"confidence_score"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level"`
	StoreInventory  []StoreStock    `json:"store_inventory"`
	SourceHistory   []DailySales    `json:"source_history"`
	TargetHistory   []DailySales    `json:"target_history"`
}

// AnalysisMeta describes one analysis run. Partial is set when a timeout cut
// the run short instead of silently truncating the list.
type AnalysisMeta struct {
	RunID            string    `json:"run_id"`
	AsOf             time.Time `json:"as_of"`
	WindowDays       int       `json:"window_days"`
	ProductsAnalyzed int       `json:"products_analyzed"`
	Partial          bool      `json:"partial"`
}

// RiskReport is the result of a risk analysis run.
type RiskReport struct {
	Meta  AnalysisMeta     `json:"meta"`
	Items []RiskAssessment `json:"items"`
}

// TransferReport is the result of a transfer opportunity run.
type TransferReport struct {
	Meta       AnalysisMeta        `json:"meta"`
	Candidates []TransferCandidate `json:"candidates"`
}

// DeadStockItem is an on-hand item with no recorded sale inside the lookback.
type DeadStockItem struct {
	ProductID         string          `json:"product_id"`
	Brand             string          `json:"brand"`
	Pattern           string          `json:"pattern"`
	Size              string          `json:"size"`
	StoreID           string          `json:"store_id"`
	StoreName         string          `json:"store_name"`
	Quantity          int             `json:"quantity"`
	LastSaleDate      *time.Time      `json:"last_sale_date,omitempty"`
	DaysSinceLastSale int             `json:"days_since_last_sale"`
	TiedUpValue       decimal.Decimal `json:"tied_up_value"`
}

// MarginLeakageItem measures discounting on one product.
type MarginLeakageItem struct {
	ProductID       string          `json:"product_id"`
	Brand           string          `json:"brand"`
	Pattern         string          `json:"pattern"`
	UnitsSold       int             `json:"units_sold"`
	ListPrice       decimal.Decimal `json:"list_price"`
	AvgSellingPrice decimal.Decimal `json:"avg_selling_price"`
	Leakage         decimal.Decimal `json:"leakage"`
}

// MarginLeakageReport totals discount leakage for a scope.
type MarginLeakageReport struct {
	StoreID      string              `json:"store_id,omitempty"`
	TotalLeakage decimal.Decimal     `json:"total_leakage"`
	Items        []MarginLeakageItem `json:"items"`
	Message      string              `json:"message,omitempty"`
}

// AttachmentRateReport measures how often tire transactions also carry a
// service or accessory line.
type AttachmentRateReport struct {
	StoreID              string  `json:"store_id,omitempty"`
	TireTransactions     int     `json:"tire_transactions"`
	AttachedTransactions int     `json:"attached_transactions"`
	AttachmentRate       float64 `json:"attachment_rate"`
	Message              string  `json:"message,omitempty"`
}
