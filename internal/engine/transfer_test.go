package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treadlinehq/treadline-backend/internal/domain"
)

func sourceRA(storeID string, qty int, velocity, daysOfSupply float64) domain.RiskAssessment {
	return domain.RiskAssessment{
		ProductID:     "P1",
		StoreID:       storeID,
		Quantity:      qty,
		DailyVelocity: velocity,
		DaysOfSupply:  daysOfSupply,
		Status:        domain.StatusOK,
	}
}

func targetRA(storeID string, qty, suggested int, velocity float64) domain.RiskAssessment {
	return domain.RiskAssessment{
		ProductID:         "P1",
		StoreID:           storeID,
		Quantity:          qty,
		DailyVelocity:     velocity,
		SuggestedOrderQty: suggested,
		Status:            domain.StatusLowStock,
	}
}

func TestMatchTransfersEmitsCandidate(t *testing.T) {
	// Shortage at A (suggested 4), surplus at B (20 on hand, 0.05/day).
	// sourceNeeds = max(ceil(0.05*60), 4) = 4, excess 16, proposed min(16,4)=4.
	target := targetRA("A", 0, 4, 0.1)
	target.Status = domain.StatusLowStock
	source := sourceRA("B", 20, 0.05, 400)

	candidates := MatchTransfers([]domain.RiskAssessment{target, source}, 4, DefaultConfig())

	require.Len(t, candidates, 1)
	c := candidates[0]
	assert.Equal(t, "B", c.SourceStoreID)
	assert.Equal(t, "A", c.TargetStoreID)
	assert.Equal(t, 4, c.ProposedQty)
}

func TestMatchTransfersSourceTooSmall(t *testing.T) {
	target := targetRA("A", 0, 4, 0.1)
	source := sourceRA("B", 7, 0.05, 140)

	candidates := MatchTransfers([]domain.RiskAssessment{target, source}, 4, DefaultConfig())
	assert.Empty(t, candidates)
}

func TestMatchTransfersTargetMustBeLowStock(t *testing.T) {
	target := targetRA("A", 0, 4, 0.1)
	target.Status = domain.StatusOutOfStock
	source := sourceRA("B", 20, 0.05, 400)

	candidates := MatchTransfers([]domain.RiskAssessment{target, source}, 4, DefaultConfig())
	assert.Empty(t, candidates)
}

func TestMatchTransfersVelocityDirectionGuard(t *testing.T) {
	cfg := DefaultConfig()

	// Source sells faster and holds only 80 days of supply: no move.
	target := targetRA("A", 2, 6, 0.05)
	source := sourceRA("B", 20, 0.25, 80)
	assert.Empty(t, MatchTransfers([]domain.RiskAssessment{target, source}, 4, cfg))

	// Same source with an ample cushion may still donate.
	source = sourceRA("B", 40, 0.25, 160)
	candidates := MatchTransfers([]domain.RiskAssessment{target, source}, 4, cfg)
	require.Len(t, candidates, 1)
	// needs = max(ceil(0.25*60), 4) = 15, excess 25, proposed min(25,6)=6.
	assert.Equal(t, 6, candidates[0].ProposedQty)
}

func TestMatchTransfersProtectedReserve(t *testing.T) {
	// needs = max(ceil(0.2*60), 4) = 12, on hand 12: nothing to give.
	target := targetRA("A", 0, 6, 0.3)
	source := sourceRA("B", 12, 0.2, 60)

	assert.Empty(t, MatchTransfers([]domain.RiskAssessment{target, source}, 4, DefaultConfig()))
}

func TestMatchTransfersFloor(t *testing.T) {
	// Proposed quantity lands at 2 after capping by the target's order: below
	// the 4-unit floor.
	target := targetRA("A", 0, 2, 0.1)
	source := sourceRA("B", 20, 0.05, 400)

	assert.Empty(t, MatchTransfers([]domain.RiskAssessment{target, source}, 4, DefaultConfig()))
}

func TestMatchTransfersConservation(t *testing.T) {
	cfg := DefaultConfig()
	target := targetRA("A", 2, 9, 0.3)
	source := sourceRA("B", 21, 0.05, 420)

	candidates := MatchTransfers([]domain.RiskAssessment{target, source}, 4, cfg)
	require.Len(t, candidates, 1)
	c := candidates[0]
	excess := sourceExcess(source, 4, cfg)
	assert.LessOrEqual(t, c.ProposedQty, excess)
	assert.LessOrEqual(t, c.ProposedQty, target.SuggestedOrderQty)
	assert.GreaterOrEqual(t, c.ProposedQty, cfg.MinTransferQty)
}

func TestAdjustTransferParity(t *testing.T) {
	tests := []struct {
		name      string
		qty       int
		sourceQty int
		targetQty int
		want      int
	}{
		{"both even, even qty", 4, 20, 0, 4},
		{"both even, odd qty rounds down", 5, 20, 2, 4},
		{"mixed parity rounds down to even", 7, 21, 2, 6},
		{"both odd keeps odd", 5, 21, 3, 5},
		{"both odd rounds even down to odd", 6, 21, 3, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, adjustTransferParity(tt.qty, tt.sourceQty, tt.targetQty))
		})
	}
}
