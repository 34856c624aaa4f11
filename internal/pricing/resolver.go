package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"

	"gorm.io/gorm"
)

// Resolver produces a price for every tracked symbol as of a date. Cached
// prices are read from the store; missing or zero entries are fetched from
// the routed external source and persisted before the snapshot is returned.
type Resolver struct {
	db     *gorm.DB
	quote  QuoteSource
	scrape ScrapeSource
}

// NewResolver creates a price resolver over the given store and sources.
func NewResolver(db *gorm.DB, quote QuoteSource, scrape ScrapeSource) *Resolver {
	return &Resolver{db: db, quote: quote, scrape: scrape}
}

// ResolveAll returns a price for every tracked symbol on date.
//
// Symbols cached at a nonzero value are served from the store without any
// network call. Each remaining symbol is fetched from its routed source; a
// single fetch failure aborts the whole call so no partial price set is ever
// returned or cached for a failed symbol. Newly fetched values are persisted
// as upserts in one transaction: a zero or stale row for the same (symbol,
// date) is updated in place, never duplicated.
func (r *Resolver) ResolveAll(ctx context.Context, date time.Time) (map[models.Symbol]float64, error) {
	date = models.DateOnly(date)

	var cached []models.Price
	if err := r.db.Where("date = ?", date).Find(&cached).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	snapshot := make(map[models.Symbol]float64, len(cached))
	for _, p := range cached {
		snapshot[p.Symbol] = p.Value
	}

	var missing []models.Symbol
	for _, sym := range models.TrackedSymbols() {
		if v, ok := snapshot[sym]; !ok || v == 0 {
			missing = append(missing, sym)
		}
	}

	if len(missing) == 0 {
		return snapshot, nil
	}

	fetched := make(map[models.Symbol]float64, len(missing))
	for _, sym := range missing {
		var price float64
		var err error
		if url, ok := scrapeURLs[sym]; ok {
			price, err = r.scrape.Price(ctx, url)
		} else {
			price, err = r.quote.Price(ctx, sym.Ticker(), date)
		}
		if err != nil {
			return nil, fmt.Errorf("resolving %s for %s: %w", sym, date.Format("2006-01-02"), err)
		}
		fetched[sym] = price
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, sym := range missing {
			if err := upsertPrice(tx, sym, date, fetched[sym]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for sym, value := range fetched {
		snapshot[sym] = value
	}
	return snapshot, nil
}

// SavePrices bulk-upserts caller-supplied price rows, e.g. backfilled
// historical quotes. Returns the number of rows written.
func (r *Resolver) SavePrices(prices []models.Price) (int, error) {
	if len(prices) == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Prices list is empty")
	}

	count := 0
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, p := range prices {
			if err := upsertPrice(tx, p.Symbol, models.DateOnly(p.Date), p.Value); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

// PricesByDate returns all cached price rows for a date, ordered by symbol.
func (r *Resolver) PricesByDate(date time.Time) ([]models.Price, error) {
	var prices []models.Price
	if err := r.db.Where("date = ?", models.DateOnly(date)).
		Order("symbol ASC").Find(&prices).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return prices, nil
}

// upsertPrice updates the existing (symbol, date) row in place or inserts a
// new one. Concurrent resolution of the same key can race; an upsert keeps
// that wasteful rather than corrupting.
func upsertPrice(tx *gorm.DB, symbol models.Symbol, date time.Time, value float64) error {
	var existing models.Price
	err := tx.Where("symbol = ? AND date = ?", symbol, date).First(&existing).Error
	switch {
	case err == nil:
		return tx.Model(&existing).Update("value", value).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return tx.Create(&models.Price{Symbol: symbol, Date: date, Value: value}).Error
	default:
		return err
	}
}
