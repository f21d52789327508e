// internal/analyzers/analyzers.go
package analyzers

import (
	"fmt"

	"github.com/treadlinehq/treadline-backend/internal/engine"
	"github.com/treadlinehq/treadline-backend/internal/repository"
)

// Analyzer runs the auxiliary aggregations (dead stock, margin leakage,
// attachment rate). They share the engine's velocity aggregation and read
// interface but are independent of the risk/transfer pipeline.
type Analyzer struct {
	reader repository.AnalyticsReader
	cfg    Config
}

// Config bounds the auxiliary lookbacks.
type Config struct {
	// LookbackDays is the window an item must go unsold to count as dead
	// stock, and the window for margin and attachment aggregation.
	LookbackDays int
	// HorizonDays is how far back to look for a dead item's last sale date.
	HorizonDays int
}

func DefaultConfig() Config {
	return Config{
		LookbackDays: 180,
		HorizonDays:  365,
	}
}

func New(reader repository.AnalyticsReader, cfg Config) *Analyzer {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 180
	}
	if cfg.HorizonDays < cfg.LookbackDays {
		cfg.HorizonDays = cfg.LookbackDays
	}
	return &Analyzer{reader: reader, cfg: cfg}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", engine.ErrAnalysisUnavailable, op, err)
}
