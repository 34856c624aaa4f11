// Package pricing resolves market prices for tracked symbols as of a date,
// backed by a persisted per-date cache and two external sources: a quote API
// for exchange-listed symbols and an HTML scrape for fund symbols the quote
// API does not carry.
package pricing

import (
	"context"
	"time"

	"fintrack/internal/models"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

// QuoteSource fetches a closing price for a ticker as of a date from a
// time-series quote API.
type QuoteSource interface {
	Price(ctx context.Context, ticker string, asOf time.Time) (float64, error)
}

// ScrapeSource extracts a price from a fund's web page.
type ScrapeSource interface {
	Price(ctx context.Context, url string) (float64, error)
}

// scrapeURLs routes the fund symbols with no quote-API listing to their
// scrape pages. Every other non-cash symbol goes to the quote source.
var scrapeURLs = map[models.Symbol]string{
	models.SymbolTD900: "https://ca.investing.com/funds/td-indiciel-canadien-e",
	models.SymbolTD902: "https://ca.investing.com/funds/td-us-index-e-cad",
	models.SymbolTD911: "https://ca.investing.com/funds/td-international-index-e",
}
