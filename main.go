package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"inmobiliaria-analyzer/config"
	"inmobiliaria-analyzer/ml"
	"inmobiliaria-analyzer/models"
	"inmobiliaria-analyzer/scraper/infocasas"
	"inmobiliaria-analyzer/services"
	"inmobiliaria-analyzer/storage"
	"inmobiliaria-analyzer/utils"
)

func main() {
	scrape := flag.Bool("scrape", false, "scrape InfoCasas before analyzing")
	train := flag.Bool("train", false, "train and persist the price-per-m² model")
	budgetMin := flag.Float64("budget-min", 80000, "minimum budget in USD")
	budgetMax := flag.Float64("budget-max", 200000, "maximum budget in USD")
	risk := flag.String("risk", "medium", "risk tolerance: low, medium or high")
	location := flag.String("location", "", "optional neighborhood filter (substring match)")
	flag.Parse()

	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== Inmobiliaria Investment Analyzer starting ===")

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}

	tolerance, err := models.ParseRiskTolerance(*risk)
	if err != nil {
		logger.Error("Invalid -risk flag: %v", err)
		os.Exit(1)
	}
	if *budgetMin > *budgetMax {
		logger.Error("Invalid budget: -budget-min (%.0f) exceeds -budget-max (%.0f)", *budgetMin, *budgetMax)
		os.Exit(1)
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("Failed to open property store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	if *scrape {
		logger.Info("Scraping InfoCasas — %d pages per operation", cfg.PagesPerOp)
		scr := infocasas.New(cfg, logger)
		raw, err := scr.Scrape()
		if err != nil {
			logger.Error("Scrape failed: %v", err)
			os.Exit(1)
		}
		if err := store.SaveRaw(raw); err != nil {
			logger.Error("Failed to persist scraped properties: %v", err)
			os.Exit(1)
		}
		logger.Info("Persisted %d raw properties", len(raw))
	}

	raw, err := store.FetchAll()
	if err != nil {
		if errors.Is(err, storage.ErrDataUnavailable) {
			logger.Error("No property data found — run with -scrape first")
		} else {
			logger.Error("Failed to load properties: %v", err)
		}
		os.Exit(1)
	}

	cleaner := services.NewCleaner(cfg.Bounds, logger)
	cleaned := cleaner.Clean(raw)
	if len(cleaned) == 0 {
		logger.Error("All properties were dropped during cleaning. Exiting.")
		os.Exit(1)
	}

	if err := exportCSV(cfg.CSVOutputPath, cleaned); err != nil {
		logger.Warn("CSV export failed: %v", err)
	} else {
		logger.Info("Clean dataset exported to %s", cfg.CSVOutputPath)
	}

	analyzer := services.NewMarketAnalyzer(logger)
	saleStats, rentStats := analyzer.MarketMetrics(cleaned)
	logger.Info("Market metrics — %d sale neighborhoods, %d rent neighborhoods",
		len(saleStats), len(rentStats))

	reporter := services.NewReporter()
	reporter.PrintROI(analyzer.ComputeROI(cleaned), 10)

	model := prepareModel(cfg, cleaned, *train, logger)

	optimizer := services.NewOptimizer(cfg, analyzer, logger)
	rec, err := optimizer.Recommend(cleaned, *budgetMin, *budgetMax, tolerance, *location)
	if err != nil {
		if errors.Is(err, services.ErrNoCandidates) {
			logger.Warn("No properties match the requested budget/location — nothing to recommend")
			return
		}
		logger.Error("Recommendation failed: %v", err)
		os.Exit(1)
	}

	reporter.PrintRecommendation(rec)

	if model != nil {
		estimate := model.PredictProperty(rec.Best.Property)
		fmt.Printf("  Model estimate for best opportunity: $%.0f/m² (asking $%.0f/m²)\n\n",
			estimate, rec.Best.PricePerM2)
	}
}

// openStore selects the configured storage backend: Postgres when a host is
// set, the local SQLite file otherwise.
func openStore(cfg *config.Config, logger *utils.Logger) (storage.PropertyStore, error) {
	if cfg.UsePostgres() {
		logger.Info("Using PostgreSQL store at %s:%s", cfg.PostgresHost, cfg.PostgresPort)
		return storage.NewPostgresStore(cfg.DSN())
	}
	logger.Info("Using SQLite store at %s", cfg.SQLitePath)
	return storage.NewSQLiteStore(cfg.SQLitePath)
}

func exportCSV(path string, props []models.Property) error {
	w, err := storage.NewCSVWriter(path)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.WriteProperties(props)
}

// prepareModel trains a fresh model when requested, otherwise loads a
// previously persisted one. A missing model is not fatal — the ranking
// pipeline works without it.
func prepareModel(cfg *config.Config, cleaned []models.Property, train bool, logger *utils.Logger) *ml.Model {
	if train {
		model, err := ml.NewRegressor().Fit(cleaned)
		if err != nil {
			logger.Error("Model training failed: %v", err)
			return nil
		}
		logger.Info("Model trained — MAE %.2f, RMSE %.2f, R² %.4f", model.MAE, model.RMSE, model.R2)
		if err := model.Save(cfg.ModelPath); err != nil {
			logger.Warn("Could not persist model: %v", err)
		} else {
			logger.Info("Model saved to %s", cfg.ModelPath)
		}
		return model
	}

	model, err := ml.LoadModel(cfg.ModelPath)
	if err != nil {
		logger.Warn("No usable model at %s (%v) — run with -train to fit one", cfg.ModelPath, err)
		return nil
	}
	logger.Info("Loaded model trained at %s (R² %.4f)", model.TrainedAt.Format("2006-01-02 15:04"), model.R2)
	return model
}
