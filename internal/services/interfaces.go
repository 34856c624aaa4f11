package services

import (
	"context"
	"time"

	"fintrack/internal/models"
)

// PriceResolver supplies a full per-symbol price snapshot for a date.
// Satisfied by pricing.Resolver.
type PriceResolver interface {
	ResolveAll(ctx context.Context, date time.Time) (map[models.Symbol]float64, error)
}

// AccountServicer defines the contract for account and holding access.
type AccountServicer interface {
	AllAccountsWithHoldings() ([]models.Account, error)
	AccountByName(name string) (*models.Account, error)
	AccountNames() ([]string, error)
	CreateAccount(account *models.Account) error
	UpsertHolding(accountName string, symbol models.Symbol, quantity float64) (*models.Holding, error)
}

// SummaryServicer defines the contract for building and maintaining dated
// valuation snapshots.
type SummaryServicer interface {
	// BuildSummaries computes and upserts asset-class summary rows for every
	// account on date, atomically for the whole date.
	BuildSummaries(ctx context.Context, date time.Time) error

	// DeleteSummaries removes all summary rows and the rollup row for date,
	// returning the number of summary rows removed.
	DeleteSummaries(date time.Time) (int, error)

	SummariesByDate(date time.Time) ([]models.AccountSummary, error)
	SummariesForAccount(name string, date time.Time) ([]models.AccountSummary, error)

	// AccountWithValue returns the account with MarketValue set to the sum of
	// its summary rows for date. A zero date means the latest available date.
	AccountWithValue(name string, date time.Time) (*models.Account, error)

	// LastAvailableDates returns up to n distinct summary dates, newest first.
	LastAvailableDates(n int) ([]time.Time, error)
}

// MarketValueGroup is a grouped total along with the distinct accounts that
// contributed to it.
type MarketValueGroup struct {
	Total        float64  `json:"total"`
	AccountNames []string `json:"account_names"`
}

// AssetClassShare is one bucket of a percentage breakdown.
type AssetClassShare struct {
	AssetClass models.AssetClass `json:"asset_class"`
	Total      float64           `json:"total"`
	Percentage float64           `json:"percentage"`
}

// OwnerAssetClassShare is one bucket of a per-owner percentage breakdown.
// Percentages normalize to 100 within each owner, not across owners.
type OwnerAssetClassShare struct {
	Owner      string            `json:"owner"`
	AssetClass models.AssetClass `json:"asset_class"`
	Total      float64           `json:"total"`
	Percentage float64           `json:"percentage"`
}

// PortfolioServicer answers aggregate queries over persisted summary rows.
// It never recomputes valuations or calls external sources.
type PortfolioServicer interface {
	// TotalMarketValue sums all summary rows for date and upserts the
	// corresponding rollup row as a side effect.
	TotalMarketValue(date time.Time) (float64, error)

	// TotalMarketValueWhere sums the rows for date matching pred.
	TotalMarketValueWhere(pred func(models.AccountSummary) bool, date time.Time) (float64, error)

	GroupBy(key GroupKey, date time.Time) (map[GroupValue]float64, error)
	GroupByWithNames(key GroupKey, date time.Time) (map[GroupValue]MarketValueGroup, error)

	PercentageByAssetClass(date time.Time) ([]AssetClassShare, error)
	PercentageByOwnerAndAssetClass(date time.Time) ([]OwnerAssetClassShare, error)
}

// HistoryServicer maintains the historical total-market-value rollup series.
type HistoryServicer interface {
	SaveTotal(date time.Time, value float64) error

	// HistoricalTotals returns rollup rows from daysBack days ago through
	// today, oldest first. daysBack outside 1..30 is rejected.
	HistoricalTotals(daysBack int) ([]models.TotalMarketValue, error)

	DeleteTotal(date time.Time) (int, error)
}
