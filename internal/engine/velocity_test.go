package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/treadlinehq/treadline-backend/internal/domain"
)

func day(asOf time.Time, daysAgo int) time.Time {
	return asOf.AddDate(0, 0, -daysAgo)
}

func TestBuildVelocityProfiles(t *testing.T) {
	asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	levels := []domain.InventoryLevel{
		{ProductID: "P1", StoreID: "A", Quantity: 10},
		{ProductID: "P1", StoreID: "B", Quantity: 5},
		{ProductID: "P2", StoreID: "A", Quantity: 3},
	}
	events := []domain.SaleEvent{
		{ProductID: "P1", StoreID: "A", SoldAt: day(asOf, 10), Quantity: 12},
		{ProductID: "P1", StoreID: "A", SoldAt: day(asOf, 100), Quantity: 6},
		// Outside the 180-day window but inside the prior comparable window
		// does not apply here; this one is simply too old for everything.
		{ProductID: "P1", StoreID: "A", SoldAt: day(asOf, 400), Quantity: 9},
		{ProductID: "P1", StoreID: "B", SoldAt: day(asOf, 30), Quantity: 4},
		// No inventory row for this pair, so no profile is fabricated.
		{ProductID: "P9", StoreID: "A", SoldAt: day(asOf, 5), Quantity: 2},
	}

	profiles := BuildVelocityProfiles(levels, events, asOf, 180, 90)

	assert.Len(t, profiles, 3)

	p1a := profiles[domain.ProductStoreKey{ProductID: "P1", StoreID: "A"}]
	assert.Equal(t, 18, p1a.UnitsSoldInWindow)
	assert.InDelta(t, 0.1, p1a.DailyVelocity, 1e-9)
	assert.Equal(t, day(asOf, 10), p1a.LastSaleDate)
	// Prior window is the 90 days ending at the last sale: only the sale at
	// the last sale date itself falls inside it.
	assert.Equal(t, 12, p1a.UnitsSoldPriorWindow)

	p1b := profiles[domain.ProductStoreKey{ProductID: "P1", StoreID: "B"}]
	assert.Equal(t, 4, p1b.UnitsSoldInWindow)
	assert.InDelta(t, 4.0/180, p1b.DailyVelocity, 1e-9)

	// Pair with inventory but no sales gets an explicit zero profile.
	p2a := profiles[domain.ProductStoreKey{ProductID: "P2", StoreID: "A"}]
	assert.Zero(t, p2a.UnitsSoldInWindow)
	assert.Zero(t, p2a.DailyVelocity)
	assert.True(t, p2a.LastSaleDate.IsZero())

	_, fabricated := profiles[domain.ProductStoreKey{ProductID: "P9", StoreID: "A"}]
	assert.False(t, fabricated)
}

func TestBuildVelocityProfilesPriorWindow(t *testing.T) {
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	levels := []domain.InventoryLevel{{ProductID: "P1", StoreID: "A", Quantity: 8}}
	events := []domain.SaleEvent{
		{ProductID: "P1", StoreID: "A", SoldAt: day(asOf, 20), Quantity: 3},
		{ProductID: "P1", StoreID: "A", SoldAt: day(asOf, 60), Quantity: 5},
		// 140 days before asOf is 120 days before the last sale, outside the
		// 90-day prior window.
		{ProductID: "P1", StoreID: "A", SoldAt: day(asOf, 140), Quantity: 7},
	}

	profiles := BuildVelocityProfiles(levels, events, asOf, 180, 90)

	p := profiles[domain.ProductStoreKey{ProductID: "P1", StoreID: "A"}]
	assert.Equal(t, 15, p.UnitsSoldInWindow)
	assert.Equal(t, day(asOf, 20), p.LastSaleDate)
	assert.Equal(t, 8, p.UnitsSoldPriorWindow)
}

func TestBuildVelocityProfilesZeroWindow(t *testing.T) {
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	levels := []domain.InventoryLevel{{ProductID: "P1", StoreID: "A", Quantity: 8}}

	profiles := BuildVelocityProfiles(levels, nil, asOf, 0, 0)

	p := profiles[domain.ProductStoreKey{ProductID: "P1", StoreID: "A"}]
	assert.Zero(t, p.DailyVelocity)
}
