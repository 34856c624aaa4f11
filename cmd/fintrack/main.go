// Command fintrack builds and queries dated portfolio valuation snapshots.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/pricing"
	"fintrack/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("fintrack error: %v", err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: fintrack <build|total|breakdown|history|delete> [args]")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	manager, err := database.NewManager(dbConfig)
	if err != nil {
		return err
	}
	if err := manager.RunMigrations(); err != nil {
		return err
	}
	db := manager.DB()

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	resolver := pricing.NewResolver(db,
		pricing.NewYahooSource(httpClient, cfg.QuoteBaseURL),
		pricing.NewInvestingSource(httpClient),
	)

	accounts := services.NewAccountService(db)
	history := services.NewHistoryService(db)
	summaries := services.NewSummaryService(db, resolver, accounts, history, logger.Get())
	portfolio := services.NewPortfolioService(db, history)

	command := os.Args[1]

	switch command {
	case "build":
		date, err := dateArg(2)
		if err != nil {
			return err
		}
		if err := summaries.BuildSummaries(context.Background(), date); err != nil {
			return err
		}
		logger.Get().Infow("summaries built", "date", date.Format("2006-01-02"))

	case "total":
		date, err := dateArg(2)
		if err != nil {
			return err
		}
		total, err := portfolio.TotalMarketValue(date)
		if err != nil {
			return err
		}
		fmt.Printf("%s total market value: %.2f\n", date.Format("2006-01-02"), total)

	case "breakdown":
		date, err := dateArg(2)
		if err != nil {
			return err
		}
		shares, err := portfolio.PercentageByAssetClass(date)
		if err != nil {
			return err
		}
		for _, share := range shares {
			fmt.Printf("%-16s %12.2f %6.2f%%\n", share.AssetClass, share.Total, share.Percentage)
		}

	case "history":
		if len(os.Args) < 3 {
			return fmt.Errorf("usage: fintrack history <days>")
		}
		days, err := strconv.Atoi(os.Args[2])
		if err != nil {
			return fmt.Errorf("invalid day count: %w", err)
		}
		rows, err := history.HistoricalTotals(days)
		if err != nil {
			return err
		}
		for _, row := range rows {
			fmt.Printf("%s %12.2f\n", row.AsOf.Format("2006-01-02"), row.MarketValue)
		}

	case "delete":
		if len(os.Args) < 3 {
			return fmt.Errorf("usage: fintrack delete <YYYY-MM-DD>")
		}
		date, err := dateArg(2)
		if err != nil {
			return err
		}
		count, err := summaries.DeleteSummaries(date)
		if err != nil {
			return err
		}
		logger.Get().Infow("summaries deleted", "date", date.Format("2006-01-02"), "rows", count)

	default:
		return fmt.Errorf("unknown command: %s (use build, total, breakdown, history, or delete)", command)
	}

	return nil
}

// dateArg parses os.Args[i] as a calendar date, defaulting to today when the
// argument is absent.
func dateArg(i int) (time.Time, error) {
	if len(os.Args) <= i {
		return models.Today(), nil
	}
	date, err := time.Parse("2006-01-02", os.Args[i])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", os.Args[i], err)
	}
	return models.DateOnly(date), nil
}
