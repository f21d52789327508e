package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/treadlinehq/treadline-backend/internal/domain"
)

func candidate(sourceQty int, sourceVelocity float64, targetVelocity float64, proposed int) domain.TransferCandidate {
	return domain.TransferCandidate{
		ProductID:   "P1",
		ProposedQty: proposed,
		SourceRisk:  domain.RiskAssessment{StoreID: "B", Quantity: sourceQty, DailyVelocity: sourceVelocity},
		TargetRisk:  domain.RiskAssessment{StoreID: "A", DailyVelocity: targetVelocity},
	}
}

func TestScoreTransferBase(t *testing.T) {
	cfg := DefaultConfig()

	// 0.08/day vs 0.02/day over 60 days: a 0.06 differential scores 10.
	c := candidate(20, 0.05, 0.1, 4)
	in := ScoreInputs{SourceUnitsShortWindow: 1, TargetUnitsShortWindow: 5}
	// 1/60 and 5/60: differential 4/60 = 0.0667 -> 11.1
	score := ScoreTransfer(c, in, cfg)
	assert.InDelta(t, (4.0/60)/0.6*100, score, 1e-9)
	assert.Equal(t, domain.ConfidenceLow, domain.ConfidenceLevelFor(score))
}

func TestScoreTransferBounds(t *testing.T) {
	cfg := DefaultConfig()

	// A huge differential clamps to 100.
	c := candidate(200, 0.05, 3, 4)
	score := ScoreTransfer(c, ScoreInputs{SourceUnitsShortWindow: 0, TargetUnitsShortWindow: 180}, cfg)
	assert.Equal(t, 100.0, score)
	assert.Equal(t, domain.ConfidenceHigh, domain.ConfidenceLevelFor(score))

	// A negative differential clamps to 0.
	c = candidate(200, 0.5, 0.1, 4)
	score = ScoreTransfer(c, ScoreInputs{SourceUnitsShortWindow: 30, TargetUnitsShortWindow: 3}, cfg)
	assert.Equal(t, 0.0, score)
}

func TestScoreTransferSourcePrecedence(t *testing.T) {
	cfg := DefaultConfig()

	// Post-transfer the source holds (10-4)/0.2 = 30 days (< 35) and sells
	// faster than the target: forced to zero no matter the short-window edge.
	c := candidate(10, 0.2, 0.1, 4)
	score := ScoreTransfer(c, ScoreInputs{SourceUnitsShortWindow: 0, TargetUnitsShortWindow: 60}, cfg)
	assert.Equal(t, 0.0, score)
}

func TestScoreTransferHardFloorHalves(t *testing.T) {
	cfg := DefaultConfig()

	// sourceDaysAfter = (10-4)/0.21 = 28.6 (< 30); the target sells faster so
	// precedence does not fire, but the caution penalty halves the score.
	c := candidate(10, 0.21, 0.5, 4)
	full := ScoreInputs{SourceUnitsShortWindow: 0, TargetUnitsShortWindow: 60}
	score := ScoreTransfer(c, full, cfg)
	assert.Equal(t, 50.0, score)
}

func TestScoreTransferComfortableSource(t *testing.T) {
	cfg := DefaultConfig()

	// (200-4)/0.05 = 3920 days of runway: no penalty applies.
	c := candidate(200, 0.05, 0.5, 4)
	score := ScoreTransfer(c, ScoreInputs{SourceUnitsShortWindow: 3, TargetUnitsShortWindow: 30}, cfg)
	assert.InDelta(t, (27.0/60)/0.6*100, score, 1e-9)
	assert.Equal(t, domain.ConfidenceMedium, domain.ConfidenceLevelFor(score))
}

func TestConfidenceLevelFor(t *testing.T) {
	assert.Equal(t, domain.ConfidenceHigh, domain.ConfidenceLevelFor(80))
	assert.Equal(t, domain.ConfidenceMedium, domain.ConfidenceLevelFor(79.9))
	assert.Equal(t, domain.ConfidenceMedium, domain.ConfidenceLevelFor(50))
	assert.Equal(t, domain.ConfidenceLow, domain.ConfidenceLevelFor(49.9))
	assert.Equal(t, domain.ConfidenceLow, domain.ConfidenceLevelFor(0))
}
