package pricing

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	apperrors "fintrack/internal/errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// priceNodeSelector identifies the quote element on fund pages.
const priceNodeSelector = "span#last_last"

// InvestingSource scrapes fund prices from ca.investing.com pages.
type InvestingSource struct {
	httpClient *http.Client
}

// NewInvestingSource creates a scrape source for fund pages.
func NewInvestingSource(httpClient *http.Client) *InvestingSource {
	return &InvestingSource{httpClient: httpClient}
}

// Price fetches the page at url and extracts the quote element's text as a
// culture-invariant decimal. A missing element is a structural error, not a
// skip: it means the site layout changed and the build must stop.
func (s *InvestingSource) Price(ctx context.Context, url string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrSourceData, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrSourceData, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, apperrors.WithMessage(apperrors.ErrSourceData,
			fmt.Sprintf("scrape source returned status %d for %s", resp.StatusCode, url))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrSourceData, err)
	}

	node := doc.Find(priceNodeSelector)
	if node.Length() == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrSourceStructure,
			fmt.Sprintf("could not find price node at %s; site structure may have changed", url))
	}

	text := strings.TrimSpace(node.First().Text())
	// Thousands separators are display formatting, not part of the number.
	text = strings.ReplaceAll(text, ",", "")

	value, err := decimal.NewFromString(text)
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrSourceData,
			fmt.Sprintf("price node text %q at %s is not a decimal", text, url))
	}
	return value.InexactFloat64(), nil
}
