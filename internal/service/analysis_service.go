package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/treadlinehq/treadline-backend/internal/analyzers"
	"github.com/treadlinehq/treadline-backend/internal/cache"
	"github.com/treadlinehq/treadline-backend/internal/domain"
	"github.com/treadlinehq/treadline-backend/internal/engine"
)

// AnalysisService fronts the recommendation engine and the retail analyzers.
// It validates request parameters and serves recent results from cache so a
// dashboard refresh does not recompute the full report.
type AnalysisService struct {
	engine   *engine.Engine
	analyzer *analyzers.Analyzer
	cache    cache.RecommendationCache
}

func NewAnalysisService(eng *engine.Engine, analyzer *analyzers.Analyzer, cacheImpl cache.RecommendationCache) *AnalysisService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopRecommendationCache()
	}
	return &AnalysisService{engine: eng, analyzer: analyzer, cache: cacheImpl}
}

func (s *AnalysisService) InventoryRisk(ctx context.Context, opts engine.RiskOptions) (*domain.RiskReport, error) {
	if opts.OutlookDays < 0 {
		return nil, fmt.Errorf("outlook days must not be negative, got %d", opts.OutlookDays)
	}
	if opts.OOSThreshold < 0 {
		return nil, fmt.Errorf("out-of-stock threshold must not be negative, got %d", opts.OOSThreshold)
	}

	key := cache.RiskCacheKey{
		StoreID:      opts.StoreID,
		OutlookDays:  opts.OutlookDays,
		OOSThreshold: opts.OOSThreshold,
	}
	if report, ok, err := s.cache.GetRiskReport(ctx, key); err == nil && ok {
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analysis: cache get risk report failed")
	}

	report, err := s.engine.AnalyzeInventoryRisk(ctx, opts)
	if err != nil {
		return nil, err
	}

	// Partial reports are served but not cached; a retry may do better.
	if !report.Meta.Partial {
		if err := s.cache.SetRiskReport(ctx, key, report); err != nil {
			log.Warn().Err(err).Msg("analysis: cache set risk report failed")
		}
	}

	return report, nil
}

func (s *AnalysisService) TransferOpportunities(ctx context.Context, storeID string) (*domain.TransferReport, error) {
	if report, ok, err := s.cache.GetTransferReport(ctx, storeID); err == nil && ok {
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analysis: cache get transfer report failed")
	}

	report, err := s.engine.FindTransferOpportunities(ctx, storeID)
	if err != nil {
		return nil, err
	}

	if !report.Meta.Partial {
		if err := s.cache.SetTransferReport(ctx, storeID, report); err != nil {
			log.Warn().Err(err).Msg("analysis: cache set transfer report failed")
		}
	}

	return report, nil
}

func (s *AnalysisService) DeadStock(ctx context.Context, storeID string) ([]domain.DeadStockItem, error) {
	items, err := s.analyzer.DetectDeadStock(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = make([]domain.DeadStockItem, 0)
	}
	return items, nil
}

func (s *AnalysisService) MarginLeakage(ctx context.Context, storeID string) (*domain.MarginLeakageReport, error) {
	return s.analyzer.ComputeMarginLeakage(ctx, storeID)
}

func (s *AnalysisService) AttachmentRate(ctx context.Context, storeID string) (*domain.AttachmentRateReport, error) {
	return s.analyzer.ComputeAttachmentRate(ctx, storeID)
}

func (s *AnalysisService) InvalidateCache(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}
