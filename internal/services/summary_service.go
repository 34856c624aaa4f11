package services

import (
	"context"
	"math"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// reconcileTolerance bounds the acceptable drift between an account's freshly
// computed total and the sum of its persisted summary rows.
const reconcileTolerance = 1e-4

// summaryKey addresses one summary row within a single date's build.
type summaryKey struct {
	Name       string
	AssetClass models.AssetClass
}

// summaryService builds and maintains per-(account, date, asset-class)
// valuation snapshots.
type summaryService struct {
	db       *gorm.DB
	resolver PriceResolver
	accounts AccountServicer
	history  HistoryServicer
	log      *zap.SugaredLogger
}

// NewSummaryService creates a new SummaryServicer.
func NewSummaryService(db *gorm.DB, resolver PriceResolver, accounts AccountServicer, history HistoryServicer, log *zap.SugaredLogger) SummaryServicer {
	return &summaryService{db: db, resolver: resolver, accounts: accounts, history: history, log: log}
}

// BuildSummaries resolves prices for date, values every account's holdings
// grouped by asset class, and upserts one summary row per (account, date,
// asset class). The whole date commits as one transaction: any persistence
// failure rolls back every account's rows and propagates. Re-running an
// unchanged date converges to the same rows.
//
// Two concurrent builds for the same date are not serialized here; upserts
// are last-write-wins and callers must serialize externally.
func (s *summaryService) BuildSummaries(ctx context.Context, date time.Time) error {
	date = models.DateOnly(date)

	prices, err := s.resolver.ResolveAll(ctx, date)
	if err != nil {
		return err
	}

	accounts, err := s.accounts.AllAccountsWithHoldings()
	if err != nil {
		return err
	}

	existingRows, err := s.SummariesByDate(date)
	if err != nil {
		return err
	}
	existing := make(map[summaryKey]models.AccountSummary, len(existingRows))
	for _, row := range existingRows {
		existing[summaryKey{row.Name, row.AssetClass}] = row
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range accounts {
			if err := s.buildAndPersistAccount(tx, &accounts[i], prices, date, existing); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Errorw("failed to build summaries", "date", date.Format("2006-01-02"), "error", err)
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// buildAndPersistAccount emits and upserts one account's summary rows, then
// reconciles the computed total against what the store now holds. A mismatch
// beyond tolerance is logged, not fatal.
func (s *summaryService) buildAndPersistAccount(
	tx *gorm.DB,
	account *models.Account,
	prices map[models.Symbol]float64,
	date time.Time,
	existing map[summaryKey]models.AccountSummary,
) error {
	rows := buildAccountSummaries(account, prices, date)

	for i := range rows {
		key := summaryKey{rows[i].Name, rows[i].AssetClass}
		if prev, ok := existing[key]; ok {
			if err := tx.Model(&models.AccountSummary{}).
				Where("id = ?", prev.ID).
				Update("market_value", rows[i].MarketValue).Error; err != nil {
				return err
			}
			prev.MarketValue = rows[i].MarketValue
			existing[key] = prev
		} else {
			if err := tx.Create(&rows[i]).Error; err != nil {
				return err
			}
			existing[key] = rows[i]
		}
	}

	computed := 0.0
	for _, row := range rows {
		computed += row.MarketValue
	}
	account.MarketValue = computed

	var persisted float64
	if err := tx.Model(&models.AccountSummary{}).
		Where("name = ? AND date = ?", account.Name, date).
		Select("COALESCE(SUM(market_value), 0)").
		Scan(&persisted).Error; err != nil {
		return err
	}

	if math.Abs(persisted-computed) > reconcileTolerance {
		s.log.Warnw("reconciliation mismatch",
			"account", account.Name,
			"date", date.Format("2006-01-02"),
			"computed", computed,
			"persisted", persisted,
		)
	}
	return nil
}

// buildAccountSummaries values one account's holdings as of date: non-cash
// holdings grouped by asset class, plus a Cash row when a positive cash
// position exists.
func buildAccountSummaries(account *models.Account, prices map[models.Symbol]float64, date time.Time) []models.AccountSummary {
	byClass := make(map[models.AssetClass]float64)
	classOrder := make([]models.AssetClass, 0, 4)
	var cash *models.Holding

	for i := range account.Holdings {
		h := account.Holdings[i]
		if h.IsCash() {
			cash = &account.Holdings[i]
			continue
		}
		class := h.AssetClass()
		if _, seen := byClass[class]; !seen {
			classOrder = append(classOrder, class)
		}
		byClass[class] += ComputeHoldingValue(h, prices)
	}

	rows := make([]models.AccountSummary, 0, len(classOrder)+1)
	for _, class := range classOrder {
		rows = append(rows, newSummaryRow(account, date, class, byClass[class]))
	}

	if cash != nil && cash.Quantity > 0 {
		rows = append(rows, newSummaryRow(account, date, models.AssetClassCash, ComputeHoldingValue(*cash, prices)))
	}
	return rows
}

func newSummaryRow(account *models.Account, date time.Time, class models.AssetClass, value float64) models.AccountSummary {
	return models.AccountSummary{
		Name:        account.Name,
		Owner:       account.Owner,
		Type:        account.Type,
		Filter:      account.Filter,
		Bank:        account.Bank,
		Currency:    account.Currency,
		Date:        date,
		AssetClass:  class,
		MarketValue: value,
	}
}

// DeleteSummaries removes all summary rows for date and the date's rollup
// row, returning the summary row count.
func (s *summaryService) DeleteSummaries(date time.Time) (int, error) {
	date = models.DateOnly(date)

	result := s.db.Where("date = ?", date).Delete(&models.AccountSummary{})
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}

	if _, err := s.history.DeleteTotal(date); err != nil {
		return int(result.RowsAffected), err
	}
	return int(result.RowsAffected), nil
}

// SummariesByDate returns all summary rows for date.
func (s *summaryService) SummariesByDate(date time.Time) ([]models.AccountSummary, error) {
	var summaries []models.AccountSummary
	if err := s.db.Where("date = ?", models.DateOnly(date)).Find(&summaries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return summaries, nil
}

// SummariesForAccount returns one account's summary rows for date.
func (s *summaryService) SummariesForAccount(name string, date time.Time) ([]models.AccountSummary, error) {
	var summaries []models.AccountSummary
	if err := s.db.Where("name = ? AND date = ?", name, models.DateOnly(date)).
		Find(&summaries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return summaries, nil
}

// AccountWithValue returns the account with MarketValue derived by summing
// its summary rows for date. A zero date means the latest built date.
func (s *summaryService) AccountWithValue(name string, date time.Time) (*models.Account, error) {
	if date.IsZero() {
		latest, err := s.LastAvailableDates(1)
		if err != nil {
			return nil, err
		}
		if len(latest) == 0 {
			return nil, apperrors.WithMessage(apperrors.ErrNotFound, "No summaries have been built yet")
		}
		date = latest[0]
	}

	account, err := s.accounts.AccountByName(name)
	if err != nil {
		return nil, err
	}

	summaries, err := s.SummariesForAccount(name, date)
	if err != nil {
		return nil, err
	}
	for _, row := range summaries {
		account.MarketValue += row.MarketValue
	}
	return account, nil
}

// LastAvailableDates returns up to n distinct summary dates, newest first.
func (s *summaryService) LastAvailableDates(n int) ([]time.Time, error) {
	if n <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Date count must be positive")
	}
	var dates []time.Time
	if err := s.db.Model(&models.AccountSummary{}).
		Distinct("date").
		Order("date DESC").
		Limit(n).
		Pluck("date", &dates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return dates, nil
}
