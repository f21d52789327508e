// internal/engine/transfer.go
package engine

import (
	"math"

	"github.com/treadlinehq/treadline-backend/internal/domain"
)

// MatchTransfers pairs surplus stores against shortage stores for a single
// product. Candidates come back unscored; the confidence scorer rates them.
func MatchTransfers(assessments []domain.RiskAssessment, minStock int, cfg Config) []domain.TransferCandidate {
	var candidates []domain.TransferCandidate

	for _, source := range assessments {
		if source.Quantity < cfg.MinSourceUnits {
			continue
		}
		for _, target := range assessments {
			if target.StoreID == source.StoreID {
				continue
			}
			if target.Status != domain.StatusLowStock || target.DailyVelocity <= 0 {
				continue
			}
			if !velocityDirectionOK(source, target, cfg) {
				continue
			}

			excess := sourceExcess(source, minStock, cfg)
			if excess <= 0 {
				continue
			}

			qty := excess
			if target.SuggestedOrderQty < qty {
				qty = target.SuggestedOrderQty
			}
			qty = adjustTransferParity(qty, source.Quantity, target.Quantity)
			if qty < cfg.MinTransferQty {
				continue
			}

			candidates = append(candidates, domain.TransferCandidate{
				ProductID:       source.ProductID,
				Brand:           source.Brand,
				Pattern:         source.Pattern,
				Size:            source.Size,
				SourceStoreID:   source.StoreID,
				SourceStoreName: source.StoreName,
				TargetStoreID:   target.StoreID,
				TargetStoreName: target.StoreName,
				ProposedQty:     qty,
				SourceRisk:      source,
				TargetRisk:      target,
			})
		}
	}

	return candidates
}

// velocityDirectionOK rejects moving stock away from a faster-selling store
// unless that store holds an ample days-of-supply cushion.
func velocityDirectionOK(source, target domain.RiskAssessment, cfg Config) bool {
	if target.DailyVelocity >= source.DailyVelocity {
		return true
	}
	return source.DaysOfSupply > cfg.CushionDays
}

// sourceExcess is the donor's on-hand quantity above its protected reserve:
// the stock needed to cover the reserve window, floored at the minimum-stock
// install quantity.
func sourceExcess(source domain.RiskAssessment, minStock int, cfg Config) int {
	needs := int(math.Ceil(source.DailyVelocity * float64(cfg.ReserveWindowDays)))
	if minStock > needs {
		needs = minStock
	}
	return source.Quantity - needs
}

// adjustTransferParity rounds a proposed quantity so both stores end on even
// counts where possible: when both on-hand quantities are odd the transfer is
// rounded to odd, otherwise down to even.
func adjustTransferParity(qty, sourceQty, targetQty int) int {
	bothOdd := sourceQty%2 != 0 && targetQty%2 != 0
	if bothOdd {
		if qty%2 == 0 {
			return qty - 1
		}
		return qty
	}
	if qty%2 != 0 {
		return qty - 1
	}
	return qty
}
