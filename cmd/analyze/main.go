// cmd/analyze/main.go
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/treadlinehq/treadline-backend/internal/analyzers"
	"github.com/treadlinehq/treadline-backend/internal/engine"
	"github.com/treadlinehq/treadline-backend/internal/repository/postgres"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newStoreFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "store",
		Usage: "Restrict the analysis to one store",
	}
}

func newEngine(c *cli.Context) (*engine.Engine, *analyzers.Analyzer, error) {
	db, err := postgres.NewDBFromURL("pgx", c.String("db-url"), 10)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	reader := postgres.NewAnalyticsRepository(db)
	return engine.New(reader, engine.DefaultConfig()), analyzers.New(reader, analyzers.DefaultConfig()), nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "analyze",
		Usage: "Run inventory analyses from the command line",
		Commands: []*cli.Command{
			{
				Name:  "risk",
				Usage: "Print the restock risk report",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newStoreFlag(),
					&cli.IntFlag{
						Name:  "outlook-days",
						Usage: "Demand outlook used to size restock orders",
					},
					&cli.IntFlag{
						Name:  "oos-threshold",
						Usage: "Only report items out of stock at most this many days",
					},
				},
				Action: func(c *cli.Context) error {
					eng, _, err := newEngine(c)
					if err != nil {
						return err
					}
					report, err := eng.AnalyzeInventoryRisk(c.Context, engine.RiskOptions{
						StoreID:      c.String("store"),
						OutlookDays:  c.Int("outlook-days"),
						OOSThreshold: c.Int("oos-threshold"),
					})
					if err != nil {
						return err
					}
					return printJSON(report)
				},
			},
			{
				Name:  "transfers",
				Usage: "Print cross-store transfer recommendations",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newStoreFlag(),
				},
				Action: func(c *cli.Context) error {
					eng, _, err := newEngine(c)
					if err != nil {
						return err
					}
					report, err := eng.FindTransferOpportunities(c.Context, c.String("store"))
					if err != nil {
						return err
					}
					return printJSON(report)
				},
			},
			{
				Name:  "dead-stock",
				Usage: "Print items holding stock with no sales in the lookback window",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newStoreFlag(),
				},
				Action: func(c *cli.Context) error {
					_, analyzer, err := newEngine(c)
					if err != nil {
						return err
					}
					items, err := analyzer.DetectDeadStock(c.Context, c.String("store"))
					if err != nil {
						return err
					}
					return printJSON(items)
				},
			},
			{
				Name:  "margin-leakage",
				Usage: "Print realized revenue against list price",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newStoreFlag(),
				},
				Action: func(c *cli.Context) error {
					_, analyzer, err := newEngine(c)
					if err != nil {
						return err
					}
					report, err := analyzer.ComputeMarginLeakage(c.Context, c.String("store"))
					if err != nil {
						return err
					}
					return printJSON(report)
				},
			},
			{
				Name:  "attachment-rate",
				Usage: "Print the service and accessory attachment rate for tire transactions",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newStoreFlag(),
				},
				Action: func(c *cli.Context) error {
					_, analyzer, err := newEngine(c)
					if err != nil {
						return err
					}
					report, err := analyzer.ComputeAttachmentRate(c.Context, c.String("store"))
					if err != nil {
						return err
					}
					return printJSON(report)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
