package integration

import (
	"context"
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/testutil"
)

func TestBuildFlow_SummariesTotalsAndHistory(t *testing.T) {
	app := setupApp(t)
	date := models.Today().AddDate(0, 0, -1)

	// Two accounts: a mixed TFSA and a cash-only RRSP.
	alice := &models.Account{Name: "Alice TFSA", Owner: "alice", Type: models.AccountTypeTFSA, Bank: "Big Bank"}
	testutil.AssertNoError(t, app.accounts.CreateAccount(alice))
	bob := &models.Account{Name: "Bob RRSP", Owner: "bob", Type: models.AccountTypeRRSP, Bank: "Other Bank"}
	testutil.AssertNoError(t, app.accounts.CreateAccount(bob))

	for _, h := range []struct {
		account  string
		symbol   models.Symbol
		quantity float64
	}{
		{alice.Name, models.SymbolCash, 1000},
		{alice.Name, models.SymbolVFV, 5},
		{alice.Name, models.SymbolVCE, 2},
		{bob.Name, models.SymbolCash, 5000},
	} {
		_, err := app.accounts.UpsertHolding(h.account, h.symbol, h.quantity)
		testutil.AssertNoError(t, err)
	}

	// Prices come from the cache; the no-fetch sources prove no network call
	// happens once every tracked symbol is present.
	testutil.SeedAllTrackedPrices(t, app.db, date, map[models.Symbol]float64{
		models.SymbolVFV: 150.00,
		models.SymbolVCE: 300.00,
	})

	testutil.AssertNoError(t, app.summaries.BuildSummaries(context.Background(), date))

	// Alice: Cash 1000, USStock 5*150, CanadianStock 2*300.
	rows, err := app.summaries.SummariesForAccount(alice.Name, date)
	testutil.AssertNoError(t, err)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows for %s, got %d", alice.Name, len(rows))
	}
	byClass := make(map[models.AssetClass]float64)
	for _, row := range rows {
		byClass[row.AssetClass] = row.MarketValue
	}
	if byClass[models.AssetClassCash] != 1000 || byClass[models.AssetClassUSStock] != 750 || byClass[models.AssetClassCanadianStock] != 600 {
		t.Errorf("unexpected breakdown for %s: %v", alice.Name, byClass)
	}

	// Bob: a single cash row.
	rows, err = app.summaries.SummariesForAccount(bob.Name, date)
	testutil.AssertNoError(t, err)
	if len(rows) != 1 || rows[0].AssetClass != models.AssetClassCash || rows[0].MarketValue != 5000 {
		t.Fatalf("expected a single Cash 5000 row for %s, got %+v", bob.Name, rows)
	}

	total, err := app.portfolio.TotalMarketValue(date)
	testutil.AssertNoError(t, err)
	if total != 7350 {
		t.Errorf("expected portfolio total 7350, got %v", total)
	}

	// The total query records the rollup, so history serves it.
	history, err := app.history.HistoricalTotals(7)
	testutil.AssertNoError(t, err)
	if len(history) != 1 || history[0].MarketValue != 7350 {
		t.Fatalf("expected one rollup row worth 7350, got %+v", history)
	}

	// Owner grouping spans both accounts.
	groups, err := app.portfolio.GroupBy(services.GroupByOwner, date)
	testutil.AssertNoError(t, err)
	if groups[services.GroupValue{Primary: "alice"}] != 2350 || groups[services.GroupValue{Primary: "bob"}] != 5000 {
		t.Errorf("unexpected owner grouping: %v", groups)
	}

	// The account lookup derives its value from the same rows.
	withValue, err := app.summaries.AccountWithValue(alice.Name, date)
	testutil.AssertNoError(t, err)
	if withValue.MarketValue != 2350 {
		t.Errorf("expected account value 2350, got %v", withValue.MarketValue)
	}
}

func TestBuildFlow_DeleteIsolatesDates(t *testing.T) {
	app := setupApp(t)
	d1 := models.Today().AddDate(0, 0, -2)
	d2 := models.Today().AddDate(0, 0, -1)

	alice := &models.Account{Name: "Alice TFSA", Owner: "alice", Type: models.AccountTypeTFSA}
	testutil.AssertNoError(t, app.accounts.CreateAccount(alice))
	_, err := app.accounts.UpsertHolding(alice.Name, models.SymbolCash, 1000)
	testutil.AssertNoError(t, err)

	testutil.SeedAllTrackedPrices(t, app.db, d1, nil)
	testutil.SeedAllTrackedPrices(t, app.db, d2, nil)
	testutil.AssertNoError(t, app.summaries.BuildSummaries(context.Background(), d1))
	testutil.AssertNoError(t, app.summaries.BuildSummaries(context.Background(), d2))

	if _, err := app.portfolio.TotalMarketValue(d1); err != nil {
		t.Fatal(err)
	}
	if _, err := app.portfolio.TotalMarketValue(d2); err != nil {
		t.Fatal(err)
	}

	count, err := app.summaries.DeleteSummaries(d1)
	testutil.AssertNoError(t, err)
	if count != 1 {
		t.Errorf("expected 1 summary row removed, got %d", count)
	}

	remaining, err := app.summaries.SummariesByDate(d1)
	testutil.AssertNoError(t, err)
	if len(remaining) != 0 {
		t.Errorf("expected deleted date empty, got %d rows", len(remaining))
	}

	kept, err := app.summaries.SummariesByDate(d2)
	testutil.AssertNoError(t, err)
	if len(kept) != 1 {
		t.Errorf("expected the other date untouched, got %d rows", len(kept))
	}

	history, err := app.history.HistoricalTotals(7)
	testutil.AssertNoError(t, err)
	if len(history) != 1 || !models.DateOnly(history[0].AsOf).Equal(d2) {
		t.Errorf("expected only the surviving date's rollup, got %+v", history)
	}
}
