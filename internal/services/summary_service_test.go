package services

import (
	"context"
	"testing"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/testutil"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

// stubResolver returns a fixed price snapshot, or a fixed error.
type stubResolver struct {
	prices map[models.Symbol]float64
	err    error
}

func (r *stubResolver) ResolveAll(ctx context.Context, date time.Time) (map[models.Symbol]float64, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.prices, nil
}

func newSummaryService(db *gorm.DB, resolver PriceResolver) (SummaryServicer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return NewSummaryService(db, resolver, NewAccountService(db), NewHistoryService(db), zap.New(core).Sugar()), logs
}

func TestSummaryService_BuildSummaries(t *testing.T) {
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	prices := map[models.Symbol]float64{
		models.SymbolVFV: 150.00,
		models.SymbolVCE: 300.00,
	}

	t.Run("emits_one_row_per_asset_class", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		account := testutil.CreateTestAccount(t, db, "alice", models.AccountTypeTFSA)
		testutil.AddHolding(t, db, account, models.SymbolCash, 1000)
		testutil.AddHolding(t, db, account, models.SymbolVFV, 5)
		testutil.AddHolding(t, db, account, models.SymbolVCE, 2)

		svc, _ := newSummaryService(db, &stubResolver{prices: prices})
		testutil.AssertNoError(t, svc.BuildSummaries(context.Background(), date))

		rows, err := svc.SummariesForAccount(account.Name, date)
		testutil.AssertNoError(t, err)
		if len(rows) != 3 {
			t.Fatalf("expected 3 summary rows, got %d", len(rows))
		}

		byClass := make(map[models.AssetClass]float64)
		for _, row := range rows {
			byClass[row.AssetClass] = row.MarketValue
			if row.Owner != "alice" || row.Type != models.AccountTypeTFSA || row.Filter != models.AccountFilterTFSA {
				t.Errorf("expected denormalized account fields on row, got %+v", row)
			}
		}
		if byClass[models.AssetClassCash] != 1000 {
			t.Errorf("expected Cash 1000, got %v", byClass[models.AssetClassCash])
		}
		if byClass[models.AssetClassUSStock] != 750 {
			t.Errorf("expected USStock 750, got %v", byClass[models.AssetClassUSStock])
		}
		if byClass[models.AssetClassCanadianStock] != 600 {
			t.Errorf("expected CanadianStock 600, got %v", byClass[models.AssetClassCanadianStock])
		}
	})

	t.Run("same_class_holdings_collapse_into_one_row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		account := testutil.CreateTestAccount(t, db, "alice", models.AccountTypeRRSP)
		testutil.AddHolding(t, db, account, models.SymbolVFV, 5)
		testutil.AddHolding(t, db, account, models.SymbolHXQ, 10)

		svc, _ := newSummaryService(db, &stubResolver{prices: map[models.Symbol]float64{
			models.SymbolVFV: 150.00,
			models.SymbolHXQ: 60.00,
		}})
		testutil.AssertNoError(t, svc.BuildSummaries(context.Background(), date))

		rows, err := svc.SummariesForAccount(account.Name, date)
		testutil.AssertNoError(t, err)
		if len(rows) != 1 {
			t.Fatalf("expected 1 summary row, got %d", len(rows))
		}
		if rows[0].AssetClass != models.AssetClassUSStock || rows[0].MarketValue != 1350.00 {
			t.Errorf("expected USStock 1350.00, got %s %v", rows[0].AssetClass, rows[0].MarketValue)
		}
	})

	t.Run("nonpositive_cash_emits_no_cash_row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		account := testutil.CreateTestAccount(t, db, "alice", models.AccountTypeTFSA)
		testutil.AddHolding(t, db, account, models.SymbolCash, 0)
		testutil.AddHolding(t, db, account, models.SymbolVFV, 5)

		svc, _ := newSummaryService(db, &stubResolver{prices: prices})
		testutil.AssertNoError(t, svc.BuildSummaries(context.Background(), date))

		rows, err := svc.SummariesForAccount(account.Name, date)
		testutil.AssertNoError(t, err)
		if len(rows) != 1 {
			t.Fatalf("expected 1 summary row, got %d", len(rows))
		}
		if rows[0].AssetClass != models.AssetClassUSStock {
			t.Errorf("expected only a USStock row, got %s", rows[0].AssetClass)
		}
	})

	t.Run("rebuild_converges_without_duplicating_rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		account := testutil.CreateTestAccount(t, db, "alice", models.AccountTypeTFSA)
		testutil.AddHolding(t, db, account, models.SymbolVFV, 5)

		svc, _ := newSummaryService(db, &stubResolver{prices: prices})
		testutil.AssertNoError(t, svc.BuildSummaries(context.Background(), date))

		// Quantity changes, then the same date rebuilds.
		accounts := NewAccountService(db)
		_, err := accounts.UpsertHolding(account.Name, models.SymbolVFV, 8)
		testutil.AssertNoError(t, err)
		testutil.AssertNoError(t, svc.BuildSummaries(context.Background(), date))

		rows, err := svc.SummariesForAccount(account.Name, date)
		testutil.AssertNoError(t, err)
		if len(rows) != 1 {
			t.Fatalf("expected 1 summary row after rebuild, got %d", len(rows))
		}
		if rows[0].MarketValue != 1200.00 {
			t.Errorf("expected rebuilt value 1200.00, got %v", rows[0].MarketValue)
		}
	})

	t.Run("resolver_failure_aborts_before_any_write", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		account := testutil.CreateTestAccount(t, db, "alice", models.AccountTypeTFSA)
		testutil.AddHolding(t, db, account, models.SymbolVFV, 5)

		svc, _ := newSummaryService(db, &stubResolver{
			err: apperrors.WithMessage(apperrors.ErrSourceData, "quote API down"),
		})
		if err := svc.BuildSummaries(context.Background(), date); err == nil {
			t.Fatal("expected build to fail when price resolution fails")
		}

		rows, err := svc.SummariesByDate(date)
		testutil.AssertNoError(t, err)
		if len(rows) != 0 {
			t.Errorf("expected no summary rows after failed build, got %d", len(rows))
		}
	})

	t.Run("reconciliation_mismatch_is_logged_not_fatal", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		account := testutil.CreateTestAccount(t, db, "alice", models.AccountTypeTFSA)
		testutil.AddHolding(t, db, account, models.SymbolVFV, 5)
		// Stale row from a class the account no longer holds; the build leaves
		// it in place, so persisted and computed totals diverge.
		testutil.SeedSummary(t, db, account, date, models.AssetClassGold, 500)

		svc, logs := newSummaryService(db, &stubResolver{prices: prices})
		testutil.AssertNoError(t, svc.BuildSummaries(context.Background(), date))

		warnings := logs.FilterMessage("reconciliation mismatch").All()
		if len(warnings) != 1 {
			t.Fatalf("expected 1 reconciliation warning, got %d", len(warnings))
		}
		fields := warnings[0].ContextMap()
		if fields["account"] != account.Name {
			t.Errorf("expected warning for account %q, got %v", account.Name, fields["account"])
		}
	})

	t.Run("clean_build_logs_no_reconciliation_warning", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		account := testutil.CreateTestAccount(t, db, "alice", models.AccountTypeTFSA)
		testutil.AddHolding(t, db, account, models.SymbolCash, 1000)
		testutil.AddHolding(t, db, account, models.SymbolVFV, 5)

		svc, logs := newSummaryService(db, &stubResolver{prices: prices})
		testutil.AssertNoError(t, svc.BuildSummaries(context.Background(), date))

		if n := logs.FilterMessage("reconciliation mismatch").Len(); n != 0 {
			t.Errorf("expected no reconciliation warnings, got %d", n)
		}
	})
}

func TestSummaryService_DeleteSummaries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	d1 := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	account := testutil.CreateTestAccount(t, db, "alice", models.AccountTypeTFSA)
	testutil.SeedSummary(t, db, account, d1, models.AssetClassCash, 1000)
	testutil.SeedSummary(t, db, account, d1, models.AssetClassUSStock, 750)
	testutil.SeedSummary(t, db, account, d2, models.AssetClassCash, 1100)

	history := NewHistoryService(db)
	testutil.AssertNoError(t, history.SaveTotal(d1, 1750))
	testutil.AssertNoError(t, history.SaveTotal(d2, 1100))

	svc, _ := newSummaryService(db, &stubResolver{})
	count, err := svc.DeleteSummaries(d1)
	testutil.AssertNoError(t, err)
	if count != 2 {
		t.Errorf("expected 2 summary rows removed, got %d", count)
	}

	remaining, err := svc.SummariesByDate(d1)
	testutil.AssertNoError(t, err)
	if len(remaining) != 0 {
		t.Errorf("expected no rows left for deleted date, got %d", len(remaining))
	}

	kept, err := svc.SummariesByDate(d2)
	testutil.AssertNoError(t, err)
	if len(kept) != 1 {
		t.Errorf("expected the other date untouched, got %d rows", len(kept))
	}

	var rollups int64
	db.Model(&models.TotalMarketValue{}).Count(&rollups)
	if rollups != 1 {
		t.Errorf("expected only the other date's rollup row to survive, got %d", rollups)
	}
}

func TestSummaryService_AccountWithValue(t *testing.T) {
	d1 := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("sums_rows_for_explicit_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		account := testutil.CreateTestAccount(t, db, "alice", models.AccountTypeTFSA)
		testutil.SeedSummary(t, db, account, d1, models.AssetClassCash, 1000)
		testutil.SeedSummary(t, db, account, d1, models.AssetClassUSStock, 750)

		svc, _ := newSummaryService(db, &stubResolver{})
		got, err := svc.AccountWithValue(account.Name, d1)
		testutil.AssertNoError(t, err)
		if got.MarketValue != 1750 {
			t.Errorf("expected market value 1750, got %v", got.MarketValue)
		}
	})

	t.Run("zero_date_means_latest_built_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		account := testutil.CreateTestAccount(t, db, "alice", models.AccountTypeTFSA)
		testutil.SeedSummary(t, db, account, d1, models.AssetClassCash, 1000)
		testutil.SeedSummary(t, db, account, d2, models.AssetClassCash, 1100)

		svc, _ := newSummaryService(db, &stubResolver{})
		got, err := svc.AccountWithValue(account.Name, time.Time{})
		testutil.AssertNoError(t, err)
		if got.MarketValue != 1100 {
			t.Errorf("expected latest date's value 1100, got %v", got.MarketValue)
		}
	})

	t.Run("zero_date_with_no_summaries_is_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		testutil.CreateTestAccount(t, db, "alice", models.AccountTypeTFSA)

		svc, _ := newSummaryService(db, &stubResolver{})
		_, err := svc.AccountWithValue("anything", time.Time{})
		testutil.AssertAppError(t, err, "NOT_FOUND")
	})

	t.Run("unknown_account_is_account_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		account := testutil.CreateTestAccount(t, db, "alice", models.AccountTypeTFSA)
		testutil.SeedSummary(t, db, account, d1, models.AssetClassCash, 1000)

		svc, _ := newSummaryService(db, &stubResolver{})
		_, err := svc.AccountWithValue("No Such Account", d1)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestSummaryService_LastAvailableDates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	d1 := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)

	account := testutil.CreateTestAccount(t, db, "alice", models.AccountTypeTFSA)
	for _, d := range []time.Time{d1, d2, d3} {
		testutil.SeedSummary(t, db, account, d, models.AssetClassCash, 100)
		testutil.SeedSummary(t, db, account, d, models.AssetClassUSStock, 200)
	}

	svc, _ := newSummaryService(db, &stubResolver{})

	t.Run("returns_distinct_dates_newest_first", func(t *testing.T) {
		dates, err := svc.LastAvailableDates(2)
		testutil.AssertNoError(t, err)
		if len(dates) != 2 {
			t.Fatalf("expected 2 dates, got %d", len(dates))
		}
		if !models.DateOnly(dates[0]).Equal(d3) || !models.DateOnly(dates[1]).Equal(d2) {
			t.Errorf("expected [%v %v], got %v", d3, d2, dates)
		}
	})

	t.Run("nonpositive_count_is_rejected", func(t *testing.T) {
		_, err := svc.LastAvailableDates(0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}
