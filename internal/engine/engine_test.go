package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treadlinehq/treadline-backend/internal/domain"
)

// stubReader serves a fixed snapshot. Sold quantities for arbitrary ranges are
// derived from the same event list the velocity fold sees, so short-window and
// long-window figures stay consistent.
type stubReader struct {
	products []domain.Product
	stores   []domain.Store
	levels   []domain.InventoryLevel
	events   []domain.SaleEvent
	avgUnits map[string]float64

	productsErr error
	eventsErr   error
}

func (r *stubReader) Products(ctx context.Context) ([]domain.Product, error) {
	if r.productsErr != nil {
		return nil, r.productsErr
	}
	return r.products, nil
}

func (r *stubReader) Stores(ctx context.Context) ([]domain.Store, error) {
	return r.stores, nil
}

func (r *stubReader) InventoryLevels(ctx context.Context, storeID string) ([]domain.InventoryLevel, error) {
	if storeID == "" {
		return r.levels, nil
	}
	var out []domain.InventoryLevel
	for _, lv := range r.levels {
		if lv.StoreID == storeID {
			out = append(out, lv)
		}
	}
	return out, nil
}

func (r *stubReader) SaleEvents(ctx context.Context, from, to time.Time, storeID string) ([]domain.SaleEvent, error) {
	if r.eventsErr != nil {
		return nil, r.eventsErr
	}
	var out []domain.SaleEvent
	for _, ev := range r.events {
		if ev.SoldAt.After(from) && !ev.SoldAt.After(to) && (storeID == "" || ev.StoreID == storeID) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *stubReader) UnitsSoldBetween(ctx context.Context, productID, storeID string, from, to time.Time) (int, error) {
	total := 0
	for _, ev := range r.events {
		if ev.ProductID == productID && ev.StoreID == storeID && ev.SoldAt.After(from) && !ev.SoldAt.After(to) {
			total += ev.Quantity
		}
	}
	return total, nil
}

func (r *stubReader) DailySalesHistory(ctx context.Context, productID, storeID string, days int) ([]domain.DailySales, error) {
	return []domain.DailySales{{Date: "2026-05-31", Units: 1}}, nil
}

func (r *stubReader) AvgUnitsPerTransaction(ctx context.Context) (map[string]float64, error) {
	return r.avgUnits, nil
}

// newTestReader builds a two-store network with one product in shortage at A
// and surplus at B, plus a dormant product only B holds.
func newTestReader(asOf time.Time) *stubReader {
	return &stubReader{
		products: []domain.Product{
			{ID: "P1", Brand: "Avalon", Pattern: "TrailGrip", Size: "225/65R17", Category: domain.CategoryPassenger},
			{ID: "P2", Brand: "Borealis", Pattern: "IceField", Size: "195/65R15", Category: domain.CategoryOther},
		},
		stores: []domain.Store{
			{ID: "A", Name: "Northside"},
			{ID: "B", Name: "Riverside"},
		},
		levels: []domain.InventoryLevel{
			{ProductID: "P1", StoreID: "A", Quantity: 2},
			{ProductID: "P1", StoreID: "B", Quantity: 20},
			{ProductID: "P2", StoreID: "B", Quantity: 5},
		},
		events: []domain.SaleEvent{
			// A: 54 units over 180 days (0.3/day), 24 of them in the last 60.
			{ProductID: "P1", StoreID: "A", TransactionID: "t1", SoldAt: asOf.AddDate(0, 0, -100), Quantity: 30},
			{ProductID: "P1", StoreID: "A", TransactionID: "t2", SoldAt: asOf.AddDate(0, 0, -30), Quantity: 24},
			// B: 9 units over 180 days (0.05/day), 3 of them in the last 60.
			{ProductID: "P1", StoreID: "B", TransactionID: "t3", SoldAt: asOf.AddDate(0, 0, -100), Quantity: 6},
			{ProductID: "P1", StoreID: "B", TransactionID: "t4", SoldAt: asOf.AddDate(0, 0, -50), Quantity: 3},
		},
		avgUnits: map[string]float64{"P1": 4},
	}
}

func TestAnalyzeInventoryRiskAllStores(t *testing.T) {
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	e := New(newTestReader(asOf), DefaultConfig())

	report, err := e.analyzeRiskAt(context.Background(), RiskOptions{}, asOf)
	require.NoError(t, err)

	assert.False(t, report.Meta.Partial)
	assert.Equal(t, 2, report.Meta.ProductsAnalyzed)
	assert.NotEmpty(t, report.Meta.RunID)
	require.Len(t, report.Items, 3)

	// Shortage at A leads: ceil(0.3*30)=9 needed against 2 on hand.
	first := report.Items[0]
	assert.Equal(t, "P1", first.ProductID)
	assert.Equal(t, "A", first.StoreID)
	assert.Equal(t, 7, first.SuggestedOrderQty)
	assert.Equal(t, domain.StatusLowStock, first.Status)
	assert.Equal(t, "Northside", first.StoreName)

	// Surplus at B: 400 days of supply.
	second := report.Items[1]
	assert.Equal(t, "B", second.StoreID)
	assert.Equal(t, domain.StatusOverstock, second.Status)
	assert.InDelta(t, 400, second.DaysOfSupply, 1e-9)

	// Dormant P2 never sold: indefinite supply, enough on hand to flag.
	third := report.Items[2]
	assert.Equal(t, "P2", third.ProductID)
	assert.Equal(t, domain.StatusOverstock, third.Status)
	assert.Equal(t, DefaultConfig().IndefiniteSupplyDays, third.DaysOfSupply)
}

func TestAnalyzeInventoryRiskStoreFilter(t *testing.T) {
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	e := New(newTestReader(asOf), DefaultConfig())

	report, err := e.analyzeRiskAt(context.Background(), RiskOptions{StoreID: "A"}, asOf)
	require.NoError(t, err)

	require.Len(t, report.Items, 1)
	assert.Equal(t, "A", report.Items[0].StoreID)
}

func TestAnalyzeInventoryRiskIdempotent(t *testing.T) {
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	e := New(newTestReader(asOf), DefaultConfig())

	first, err := e.analyzeRiskAt(context.Background(), RiskOptions{}, asOf)
	require.NoError(t, err)
	second, err := e.analyzeRiskAt(context.Background(), RiskOptions{}, asOf)
	require.NoError(t, err)

	assert.Equal(t, first.Items, second.Items)
}

func TestAnalyzeInventoryRiskUnavailable(t *testing.T) {
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	reader := newTestReader(asOf)
	reader.productsErr = errors.New("connection refused")
	e := New(reader, DefaultConfig())

	_, err := e.analyzeRiskAt(context.Background(), RiskOptions{}, asOf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAnalysisUnavailable))

	reader = newTestReader(asOf)
	reader.eventsErr = errors.New("timeout")
	e = New(reader, DefaultConfig())

	_, err = e.findTransfersAt(context.Background(), "", asOf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAnalysisUnavailable))
}

func TestAnalyzeInventoryRiskPartialOnCancel(t *testing.T) {
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	e := New(newTestReader(asOf), DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := e.analyzeRiskAt(ctx, RiskOptions{}, asOf)
	require.NoError(t, err)
	assert.True(t, report.Meta.Partial)
}

func TestFindTransferOpportunities(t *testing.T) {
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	e := New(newTestReader(asOf), DefaultConfig())

	report, err := e.findTransfersAt(context.Background(), "", asOf)
	require.NoError(t, err)

	assert.False(t, report.Meta.Partial)
	require.Len(t, report.Candidates, 1)

	c := report.Candidates[0]
	assert.Equal(t, "P1", c.ProductID)
	assert.Equal(t, "B", c.SourceStoreID)
	assert.Equal(t, "A", c.TargetStoreID)
	// excess = 20 - max(ceil(0.05*60), 4) = 16, capped by suggested 7, then
	// rounded down to even.
	assert.Equal(t, 6, c.ProposedQty)

	// Short-window velocities: 24/60 vs 3/60.
	assert.InDelta(t, (21.0/60)/0.6*100, c.ConfidenceScore, 1e-9)
	assert.Equal(t, domain.ConfidenceMedium, c.ConfidenceLevel)

	require.Len(t, c.StoreInventory, 2)
	assert.Equal(t, "A", c.StoreInventory[0].StoreID)
	assert.Equal(t, "B", c.StoreInventory[1].StoreID)
	assert.NotEmpty(t, c.SourceHistory)
	assert.NotEmpty(t, c.TargetHistory)
}

func TestFindTransferOpportunitiesTargetFilter(t *testing.T) {
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	e := New(newTestReader(asOf), DefaultConfig())

	report, err := e.findTransfersAt(context.Background(), "A", asOf)
	require.NoError(t, err)
	require.Len(t, report.Candidates, 1)
	assert.Equal(t, "A", report.Candidates[0].TargetStoreID)

	report, err = e.findTransfersAt(context.Background(), "B", asOf)
	require.NoError(t, err)
	assert.Empty(t, report.Candidates)
}
