package integration

import (
	"context"
	"testing"
	"time"

	"fintrack/internal/pricing"
	"fintrack/internal/services"
	"fintrack/internal/testutil"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testApp wires the real service stack over an in-memory store. External
// price sources fail the test if reached: flows seed the cache up front.
type testApp struct {
	db        *gorm.DB
	accounts  services.AccountServicer
	history   services.HistoryServicer
	summaries services.SummaryServicer
	portfolio services.PortfolioServicer
}

func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	resolver := pricing.NewResolver(db, noFetchQuote{t}, noFetchScrape{t})
	accounts := services.NewAccountService(db)
	history := services.NewHistoryService(db)
	summaries := services.NewSummaryService(db, resolver, accounts, history, zap.NewNop().Sugar())
	portfolio := services.NewPortfolioService(db, history)

	return &testApp{
		db:        db,
		accounts:  accounts,
		history:   history,
		summaries: summaries,
		portfolio: portfolio,
	}
}

type noFetchQuote struct{ t *testing.T }

func (s noFetchQuote) Price(ctx context.Context, ticker string, asOf time.Time) (float64, error) {
	s.t.Fatalf("unexpected quote fetch for %s", ticker)
	return 0, nil
}

type noFetchScrape struct{ t *testing.T }

func (s noFetchScrape) Price(ctx context.Context, url string) (float64, error) {
	s.t.Fatalf("unexpected scrape fetch for %s", url)
	return 0, nil
}
