// internal/engine/engine.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/treadlinehq/treadline-backend/internal/domain"
	"github.com/treadlinehq/treadline-backend/internal/repository"
)

// ErrAnalysisUnavailable is returned when the storage layer fails and the
// analysis cannot produce a trustworthy result for the requested scope.
var ErrAnalysisUnavailable = errors.New("analysis unavailable")

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrAnalysisUnavailable, op, err)
}

// Engine runs the inventory risk and cross-store transfer analysis over a
// best-effort snapshot of inventory and sales history. It performs no writes.
type Engine struct {
	reader repository.AnalyticsReader
	cfg    Config
}

func New(reader repository.AnalyticsReader, cfg Config) *Engine {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Engine{reader: reader, cfg: cfg}
}

// RiskOptions are the validated parameters for a risk analysis run.
type RiskOptions struct {
	StoreID      string
	OutlookDays  int
	OOSThreshold int
}

// snapshot is the ephemeral, read-only view of inventory and sales state for
// one analysis run. Nothing in it outlives the run.
type snapshot struct {
	asOf         time.Time
	products     map[string]domain.Product
	stores       map[string]domain.Store
	levels       []domain.InventoryLevel
	profiles     map[domain.ProductStoreKey]domain.VelocityProfile
	minStock     map[string]int
	productCount int
}

// AnalyzeInventoryRisk classifies stock risk per (product, store) pair. An
// empty StoreID analyzes all stores.
func (e *Engine) AnalyzeInventoryRisk(ctx context.Context, opts RiskOptions) (*domain.RiskReport, error) {
	return e.analyzeRiskAt(ctx, opts, time.Now().UTC())
}

func (e *Engine) analyzeRiskAt(ctx context.Context, opts RiskOptions, asOf time.Time) (*domain.RiskReport, error) {
	outlookDays := opts.OutlookDays
	if outlookDays <= 0 {
		outlookDays = e.cfg.DefaultOutlookDays
	}

	snap, err := e.loadSnapshot(ctx, opts.StoreID, asOf)
	if err != nil {
		return nil, err
	}

	assessments, partial := e.assessAll(ctx, snap, outlookDays)

	return &domain.RiskReport{
		Meta:  e.meta(snap, partial),
		Items: FilterRiskResults(assessments, opts.OOSThreshold),
	}, nil
}

// FindTransferOpportunities computes risk across all stores, matches surplus
// against shortage per product, and scores each candidate. A non-empty storeID
// restricts the output to candidates targeting that store.
func (e *Engine) FindTransferOpportunities(ctx context.Context, storeID string) (*domain.TransferReport, error) {
	return e.findTransfersAt(ctx, storeID, time.Now().UTC())
}

func (e *Engine) findTransfersAt(ctx context.Context, storeID string, asOf time.Time) (*domain.TransferReport, error) {
	// Matching needs the whole network, so the store filter applies to the
	// output only.
	snap, err := e.loadSnapshot(ctx, "", asOf)
	if err != nil {
		return nil, err
	}

	assessments, partial := e.assessAll(ctx, snap, e.cfg.DefaultOutlookDays)

	byProduct := make(map[string][]domain.RiskAssessment)
	for _, ra := range assessments {
		byProduct[ra.ProductID] = append(byProduct[ra.ProductID], ra)
	}

	var candidates []domain.TransferCandidate
	productIDs := sortedKeys(byProduct)
	for _, pid := range productIDs {
		candidates = append(candidates, MatchTransfers(byProduct[pid], snap.minStock[pid], e.cfg)...)
	}

	if storeID != "" {
		kept := candidates[:0]
		for _, c := range candidates {
			if c.TargetStoreID == storeID {
				kept = append(kept, c)
			}
		}
		candidates = kept
	}

	scored, scorePartial, err := e.scoreCandidates(ctx, snap, candidates)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].ConfidenceScore != scored[j].ConfidenceScore {
			return scored[i].ConfidenceScore > scored[j].ConfidenceScore
		}
		if scored[i].ProductID != scored[j].ProductID {
			return scored[i].ProductID < scored[j].ProductID
		}
		if scored[i].SourceStoreID != scored[j].SourceStoreID {
			return scored[i].SourceStoreID < scored[j].SourceStoreID
		}
		return scored[i].TargetStoreID < scored[j].TargetStoreID
	})

	return &domain.TransferReport{
		Meta:       e.meta(snap, partial || scorePartial),
		Candidates: scored,
	}, nil
}

// loadSnapshot reads everything one run needs from the storage layer. Any
// failure here fails the analysis as a whole.
func (e *Engine) loadSnapshot(ctx context.Context, storeID string, asOf time.Time) (*snapshot, error) {
	products, err := e.reader.Products(ctx)
	if err != nil {
		return nil, unavailable("loading products", err)
	}
	stores, err := e.reader.Stores(ctx)
	if err != nil {
		return nil, unavailable("loading stores", err)
	}
	levels, err := e.reader.InventoryLevels(ctx, storeID)
	if err != nil {
		return nil, unavailable("loading inventory levels", err)
	}

	// Fetch past the velocity window so the prior comparable window has data.
	from := asOf.AddDate(0, 0, -(e.cfg.RiskWindowDays + e.cfg.PriorWindowDays))
	events, err := e.reader.SaleEvents(ctx, from, asOf, storeID)
	if err != nil {
		return nil, unavailable("loading sale events", err)
	}

	avgUnits, err := e.reader.AvgUnitsPerTransaction(ctx)
	if err != nil {
		return nil, unavailable("loading transaction averages", err)
	}

	snap := &snapshot{
		asOf:     asOf,
		products: make(map[string]domain.Product, len(products)),
		stores:   make(map[string]domain.Store, len(stores)),
		levels:   levels,
		minStock: make(map[string]int),
	}
	for _, p := range products {
		snap.products[p.ID] = p
	}
	for _, s := range stores {
		snap.stores[s.ID] = s
	}

	snap.profiles = BuildVelocityProfiles(levels, events, asOf, e.cfg.RiskWindowDays, e.cfg.PriorWindowDays)

	seen := make(map[string]struct{})
	for _, lv := range levels {
		p, ok := snap.products[lv.ProductID]
		if !ok {
			continue
		}
		if _, done := seen[lv.ProductID]; done {
			continue
		}
		seen[lv.ProductID] = struct{}{}
		snap.minStock[lv.ProductID] = MinStockLevel(p, avgUnits)
	}
	snap.productCount = len(seen)

	return snap, nil
}

// assessAll fans the per-product risk computation out across a bounded worker
// pool. Workers share no mutable state; each reads its own product slice.
func (e *Engine) assessAll(ctx context.Context, snap *snapshot, outlookDays int) ([]domain.RiskAssessment, bool) {
	byProduct := make(map[string][]domain.InventoryLevel)
	for _, lv := range snap.levels {
		if _, ok := snap.products[lv.ProductID]; !ok {
			// Missing reference data is excluded, not an error.
			continue
		}
		if _, ok := snap.stores[lv.StoreID]; !ok {
			continue
		}
		byProduct[lv.ProductID] = append(byProduct[lv.ProductID], lv)
	}

	ids := sortedKeys(byProduct)

	jobs := make(chan string, len(ids))
	results := make(chan []domain.RiskAssessment, len(ids))

	var wg sync.WaitGroup
	for w := 0; w < e.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pid := range jobs {
				results <- e.assessProduct(snap, pid, byProduct[pid], outlookDays)
			}
		}()
	}

	// jobs is buffered to len(ids), so enqueueing never blocks; the check is
	// what stops a run once the caller's deadline has passed.
	partial := false
	for _, pid := range ids {
		if ctx.Err() != nil {
			partial = true
			break
		}
		jobs <- pid
	}
	close(jobs)
	wg.Wait()
	close(results)

	var all []domain.RiskAssessment
	for batch := range results {
		all = append(all, batch...)
	}

	if partial {
		log.Warn().Int("assessed", len(all)).Msg("risk analysis cut short by deadline; reporting partial result")
	}

	return all, partial
}

func (e *Engine) assessProduct(snap *snapshot, productID string, levels []domain.InventoryLevel, outlookDays int) []domain.RiskAssessment {
	p := snap.products[productID]
	minStock := snap.minStock[productID]
	out := make([]domain.RiskAssessment, 0, len(levels))
	for _, lv := range levels {
		s := snap.stores[lv.StoreID]
		vp := snap.profiles[domain.ProductStoreKey{ProductID: lv.ProductID, StoreID: lv.StoreID}]
		out = append(out, AssessRisk(p, s, lv, vp, minStock, outlookDays, snap.asOf, e.cfg))
	}
	return out
}

// scoreCandidates fetches each candidate's short-window quantities and history
// series concurrently, then scores it. Deadline expiry yields a partial result;
// any other storage failure fails the run.
func (e *Engine) scoreCandidates(ctx context.Context, snap *snapshot, candidates []domain.TransferCandidate) ([]domain.TransferCandidate, bool, error) {
	if len(candidates) == 0 {
		return []domain.TransferCandidate{}, false, nil
	}

	shortFrom := snap.asOf.AddDate(0, 0, -e.cfg.ShortWindowDays)
	scored := make([]bool, len(candidates))
	var partial atomic.Bool

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for i := range candidates {
		i := i
		g.Go(func() error {
			c := &candidates[i]
			var in ScoreInputs

			fg, fctx := errgroup.WithContext(gctx)
			fg.Go(func() error {
				units, err := e.reader.UnitsSoldBetween(fctx, c.ProductID, c.SourceStoreID, shortFrom, snap.asOf)
				if err != nil {
					return err
				}
				in.SourceUnitsShortWindow = units
				return nil
			})
			fg.Go(func() error {
				units, err := e.reader.UnitsSoldBetween(fctx, c.ProductID, c.TargetStoreID, shortFrom, snap.asOf)
				if err != nil {
					return err
				}
				in.TargetUnitsShortWindow = units
				return nil
			})
			fg.Go(func() error {
				hist, err := e.reader.DailySalesHistory(fctx, c.ProductID, c.SourceStoreID, e.cfg.RiskWindowDays)
				if err != nil {
					return err
				}
				c.SourceHistory = hist
				return nil
			})
			fg.Go(func() error {
				hist, err := e.reader.DailySalesHistory(fctx, c.ProductID, c.TargetStoreID, e.cfg.RiskWindowDays)
				if err != nil {
					return err
				}
				c.TargetHistory = hist
				return nil
			})

			if err := fg.Wait(); err != nil {
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
					partial.Store(true)
					return nil
				}
				return unavailable("loading transfer history", err)
			}

			c.ConfidenceScore = ScoreTransfer(*c, in, e.cfg)
			c.ConfidenceLevel = domain.ConfidenceLevelFor(c.ConfidenceScore)
			c.StoreInventory = snap.storeInventory(c.ProductID)
			scored[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	out := make([]domain.TransferCandidate, 0, len(candidates))
	for i, ok := range scored {
		if ok {
			out = append(out, candidates[i])
		}
	}

	if partial.Load() {
		log.Warn().Int("scored", len(out)).Int("matched", len(candidates)).
			Msg("transfer scoring cut short by deadline; reporting partial result")
	}

	return out, partial.Load(), nil
}

// storeInventory is the product's full per-store on-hand picture, for display.
func (s *snapshot) storeInventory(productID string) []domain.StoreStock {
	var stocks []domain.StoreStock
	for _, lv := range s.levels {
		if lv.ProductID != productID {
			continue
		}
		st, ok := s.stores[lv.StoreID]
		if !ok {
			continue
		}
		stocks = append(stocks, domain.StoreStock{StoreID: st.ID, StoreName: st.Name, Quantity: lv.Quantity})
	}
	sort.Slice(stocks, func(i, j int) bool { return stocks[i].StoreID < stocks[j].StoreID })
	return stocks
}

func (e *Engine) meta(snap *snapshot, partial bool) domain.AnalysisMeta {
	return domain.AnalysisMeta{
		RunID:            uuid.NewString(),
		AsOf:             snap.asOf,
		WindowDays:       e.cfg.RiskWindowDays,
		ProductsAnalyzed: snap.productCount,
		Partial:          partial,
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
