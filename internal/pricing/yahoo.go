package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

const yahooBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooSource fetches daily closing prices from the Yahoo Finance chart API.
type YahooSource struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	now        func() time.Time
}

// NewYahooSource creates a quote source backed by the Yahoo chart API.
func NewYahooSource(httpClient *http.Client, baseURL string) *YahooSource {
	if baseURL == "" {
		baseURL = yahooBaseURL
	}
	return &YahooSource{httpClient: httpClient, baseURL: baseURL, now: time.Now}
}

// chartResponse mirrors the subset of the chart payload the source consumes:
// parallel timestamp/close arrays for a single result.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					// Closes may carry nulls for days without a trade.
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Price fetches the close for ticker on asOf. The query range widens with the
// age of the target date so a single request always covers it. If the exact
// date carries no nonzero close, the latest nonzero close in the window is
// returned instead.
func (s *YahooSource) Price(ctx context.Context, ticker string, asOf time.Time) (float64, error) {
	target := models.DateOnly(asOf)
	url := fmt.Sprintf("%s/%s?interval=1d&range=%s", s.baseURL, ticker, s.pickRange(target))

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
			fmt.Sprintf("quote API returned status %d for %s", resp.StatusCode, ticker))
	}

	var data chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrSourceData, err)
	}

	if len(data.Chart.Result) == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrSourceData,
			fmt.Sprintf("quote API response for %s has no result", ticker))
	}

	result := data.Chart.Result[0]
	if result.Timestamp == nil || len(result.Indicators.Quote) == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrSourceData,
			fmt.Sprintf("incomplete quote API response for %s", ticker))
	}

	timestamps := result.Timestamp
	closes := roundedCloses(result.Indicators.Quote[0].Close)

	if len(timestamps) != len(closes) {
		return 0, apperrors.WithMessage(apperrors.ErrSourceData,
			fmt.Sprintf("mismatched timestamp and close data for %s", ticker))
	}
	if len(timestamps) == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrSourceData,
			fmt.Sprintf("no data points for %s", ticker))
	}
	if allZero(closes) {
		return 0, apperrors.WithMessage(apperrors.ErrSourceData,
			fmt.Sprintf("all close prices are zero for %s", ticker))
	}

	// Exact calendar-date match wins when it carries a real close.
	for i, ts := range timestamps {
		if models.DateOnly(time.Unix(ts, 0).UTC()).Equal(target) && closes[i] != 0 {
			return closes[i], nil
		}
	}

	// Otherwise fall back to the latest nonzero close in the window.
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != 0 {
			return closes[i], nil
		}
	}
	return 0, apperrors.WithMessage(apperrors.ErrSourceData,
		fmt.Sprintf("no usable close for %s", ticker))
}

// pickRange selects the coarse range token by how far back the target
// date lies from today.
func (s *YahooSource) pickRange(target time.Time) string {
	days := int(models.DateOnly(s.now()).Sub(models.DateOnly(target)).Hours() / 24)

	switch {
	case days <= 0:
		return "1d"
	case days <= 5:
		return "5d"
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	default:
		return "max"
	}
}

// roundedCloses rounds closes to two decimals, mapping nulls to zero so the
// zero-close fallback handles them.
func roundedCloses(closes []*float64) []float64 {
	out := make([]float64, len(closes))
	for i, c := range closes {
		if c != nil {
			out[i] = math.Round(*c*100) / 100
		}
	}
	return out
}

func allZero(values []float64) bool {
	for _, v := range values {
		if v != 0 {
			return false
		}
	}
	return true
}
