// internal/engine/confidence.go
package engine

import "github.com/treadlinehq/treadline-backend/internal/domain"

// ScoreInputs carries the short-window sold quantities fetched for one
// candidate's source and target stores.
type ScoreInputs struct {
	SourceUnitsShortWindow int
	TargetUnitsShortWindow int
}

// ScoreTransfer rates a candidate 0-100. The base score comes from the
// short-window velocity differential; post-transfer supply projections use the
// long-window velocity so short-term noise cannot drive a structural decision.
func ScoreTransfer(c domain.TransferCandidate, in ScoreInputs, cfg Config) float64 {
	sourceShortV := float64(in.SourceUnitsShortWindow) / float64(cfg.ShortWindowDays)
	targetShortV := float64(in.TargetUnitsShortWindow) / float64(cfg.ShortWindowDays)

	score := (targetShortV - sourceShortV) / cfg.ConfidenceScale * 100
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	sourceDaysAfter := daysOfSupply(c.SourceRisk.Quantity-c.ProposedQty, c.SourceRisk.DailyVelocity, cfg)

	if sourceKeepsPrecedence(sourceDaysAfter, c.SourceRisk.DailyVelocity, c.TargetRisk.DailyVelocity, cfg) {
		return 0
	}
	if sourceDaysAfter < cfg.HardFloorDays {
		score /= 2
	}

	return score
}

// sourceKeepsPrecedence holds when the transfer would strip a faster-selling
// store down to near-critical runway to feed a slower one.
func sourceKeepsPrecedence(sourceDaysAfter, sourceVelocity, targetVelocity float64, cfg Config) bool {
	return sourceDaysAfter < cfg.PrecedenceFloorDays && sourceVelocity > targetVelocity
}
