package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/treadlinehq/treadline-backend/internal/config"
	"github.com/treadlinehq/treadline-backend/internal/domain"
)

const (
	riskReportKeyPrefix     = "recommendations:risk"
	transferReportKeyPrefix = "recommendations:transfers"
	recommendationScanBatch = 100
)

// RiskCacheKey captures the request parameters that change a risk report.
type RiskCacheKey struct {
	StoreID      string
	OutlookDays  int
	OOSThreshold int
}

// RecommendationCache stores computed risk and transfer reports. Cached
// entries expire quickly; the engine recomputes from live inventory.
type RecommendationCache interface {
	GetRiskReport(ctx context.Context, key RiskCacheKey) (*domain.RiskReport, bool, error)
	SetRiskReport(ctx context.Context, key RiskCacheKey, report *domain.RiskReport) error
	GetTransferReport(ctx context.Context, storeID string) (*domain.TransferReport, bool, error)
	SetTransferReport(ctx context.Context, storeID string, report *domain.TransferReport) error
	InvalidateAll(ctx context.Context) error
}

type redisRecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopRecommendationCache struct{}

func NewRecommendationCache(cfg config.CacheConfig) (RecommendationCache, error) {
	if !cfg.Enabled {
		return &noopRecommendationCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisRecommendationCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopRecommendationCache() RecommendationCache {
	return &noopRecommendationCache{}
}

func (c *redisRecommendationCache) GetRiskReport(ctx context.Context, key RiskCacheKey) (*domain.RiskReport, bool, error) {
	payload, err := c.client.Get(ctx, buildRiskReportKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.RiskReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode risk report cache: %w", err)
	}

	return &report, true, nil
}

func (c *redisRecommendationCache) SetRiskReport(ctx context.Context, key RiskCacheKey, report *domain.RiskReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode risk report cache: %w", err)
	}

	if err := c.client.Set(ctx, buildRiskReportKey(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisRecommendationCache) GetTransferReport(ctx context.Context, storeID string) (*domain.TransferReport, bool, error) {
	payload, err := c.client.Get(ctx, buildTransferReportKey(storeID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.TransferReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode transfer report cache: %w", err)
	}

	return &report, true, nil
}

func (c *redisRecommendationCache) SetTransferReport(ctx context.Context, storeID string, report *domain.TransferReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode transfer report cache: %w", err)
	}

	if err := c.client.Set(ctx, buildTransferReportKey(storeID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisRecommendationCache) InvalidateAll(ctx context.Context) error {
	if err := deleteKeysWithPrefix(ctx, c.client, riskReportKeyPrefix, recommendationScanBatch); err != nil {
		return err
	}
	return deleteKeysWithPrefix(ctx, c.client, transferReportKeyPrefix, recommendationScanBatch)
}

func (n *noopRecommendationCache) GetRiskReport(ctx context.Context, key RiskCacheKey) (*domain.RiskReport, bool, error) {
	return nil, false, nil
}

func (n *noopRecommendationCache) SetRiskReport(ctx context.Context, key RiskCacheKey, report *domain.RiskReport) error {
	return nil
}

func (n *noopRecommendationCache) GetTransferReport(ctx context.Context, storeID string) (*domain.TransferReport, bool, error) {
	return nil, false, nil
}

func (n *noopRecommendationCache) SetTransferReport(ctx context.Context, storeID string, report *domain.TransferReport) error {
	return nil
}

func (n *noopRecommendationCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildRiskReportKey(key RiskCacheKey) string {
	return fmt.Sprintf("%s:%s", riskReportKeyPrefix, riskKeyHash(key))
}

func buildTransferReportKey(storeID string) string {
	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return transferReportKeyPrefix + ":all"
	}
	sum := sha1.Sum([]byte("store_id=" + storeID))
	return fmt.Sprintf("%s:%s", transferReportKeyPrefix, hex.EncodeToString(sum[:]))
}

func riskKeyHash(key RiskCacheKey) string {
	parts := []string{}

	if v := strings.TrimSpace(key.StoreID); v != "" {
		parts = append(parts, "store_id="+v)
	}
	if key.OutlookDays > 0 {
		parts = append(parts, fmt.Sprintf("outlook_days=%d", key.OutlookDays))
	}
	if key.OOSThreshold > 0 {
		parts = append(parts, fmt.Sprintf("oos_threshold=%d", key.OOSThreshold))
	}

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
