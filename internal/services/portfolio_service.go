package services

import (
	"math"
	"sort"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"

	"gorm.io/gorm"
)

// percentDriftTolerance is the threshold below which rounding drift in a
// percentage breakdown is left alone.
const percentDriftTolerance = 1e-4

// portfolioService answers aggregate queries over persisted summary rows.
type portfolioService struct {
	db      *gorm.DB
	history HistoryServicer
}

// NewPortfolioService creates a new PortfolioServicer.
func NewPortfolioService(db *gorm.DB, history HistoryServicer) PortfolioServicer {
	return &portfolioService{db: db, history: history}
}

// TotalMarketValue sums every summary row for date and records the result in
// the rollup series so historical queries can serve it later.
func (s *portfolioService) TotalMarketValue(date time.Time) (float64, error) {
	date = models.DateOnly(date)

	var total float64
	if err := s.db.Model(&models.AccountSummary{}).
		Where("date = ?", date).
		Select("COALESCE(SUM(market_value), 0)").
		Scan(&total).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.history.SaveTotal(date, total); err != nil {
		return 0, err
	}
	return total, nil
}

// TotalMarketValueWhere sums the date's rows matching pred. Rows load first
// and filter in memory, keeping arbitrary predicates off the store.
func (s *portfolioService) TotalMarketValueWhere(pred func(models.AccountSummary) bool, date time.Time) (float64, error) {
	rows, err := s.summariesByDate(date)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, row := range rows {
		if pred(row) {
			total += row.MarketValue
		}
	}
	return total, nil
}

// GroupBy partitions the date's rows by key and sums market value per partition.
func (s *portfolioService) GroupBy(key GroupKey, date time.Time) (map[GroupValue]float64, error) {
	if !key.valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown grouping key")
	}
	rows, err := s.summariesByDate(date)
	if err != nil {
		return nil, err
	}
	return groupAndSum(rows, key), nil
}

// GroupByWithNames is GroupBy plus the distinct contributing account names
// per partition.
func (s *portfolioService) GroupByWithNames(key GroupKey, date time.Time) (map[GroupValue]MarketValueGroup, error) {
	if !key.valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown grouping key")
	}
	rows, err := s.summariesByDate(date)
	if err != nil {
		return nil, err
	}

	groups := make(map[GroupValue]MarketValueGroup)
	seen := make(map[GroupValue]map[string]bool)
	for _, row := range rows {
		k := key.valueOf(row)
		g := groups[k]
		g.Total += row.MarketValue
		if seen[k] == nil {
			seen[k] = make(map[string]bool)
		}
		if !seen[k][row.Name] {
			seen[k][row.Name] = true
			g.AccountNames = append(g.AccountNames, row.Name)
		}
		groups[k] = g
	}
	for k, g := range groups {
		sort.Strings(g.AccountNames)
		groups[k] = g
	}
	return groups, nil
}

// PercentageByAssetClass converts per-asset-class totals into shares of the
// grand total. Rounding drift is folded into the largest bucket so the shares
// sum to exactly 100. A zero or negative grand total yields an empty result.
func (s *portfolioService) PercentageByAssetClass(date time.Time) ([]AssetClassShare, error) {
	totals, err := s.GroupBy(GroupByAssetClass, date)
	if err != nil {
		return nil, err
	}

	grandTotal := 0.0
	for _, v := range totals {
		grandTotal += v
	}
	if grandTotal <= 0 {
		return []AssetClassShare{}, nil
	}

	breakdown := make([]AssetClassShare, 0, len(totals))
	for k, v := range totals {
		breakdown = append(breakdown, AssetClassShare{
			AssetClass: models.AssetClass(k.Primary),
			Total:      v,
			Percentage: v / grandTotal * 100,
		})
	}
	sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].AssetClass < breakdown[j].AssetClass })

	correctAssetClassDrift(breakdown)
	return breakdown, nil
}

// PercentageByOwnerAndAssetClass breaks each owner's holdings into asset-class
// shares, normalizing to 100 independently within every owner subgroup.
func (s *portfolioService) PercentageByOwnerAndAssetClass(date time.Time) ([]OwnerAssetClassShare, error) {
	totals, err := s.GroupBy(GroupByOwnerAndAssetClass, date)
	if err != nil {
		return nil, err
	}

	perOwner := make(map[string]float64)
	owners := make([]string, 0, 4)
	for k, v := range totals {
		if _, seen := perOwner[k.Primary]; !seen {
			owners = append(owners, k.Primary)
		}
		perOwner[k.Primary] += v
	}
	sort.Strings(owners)

	var result []OwnerAssetClassShare
	for _, owner := range owners {
		ownerTotal := perOwner[owner]
		if ownerTotal <= 0 {
			continue
		}

		var subgroup []OwnerAssetClassShare
		for k, v := range totals {
			if k.Primary != owner {
				continue
			}
			subgroup = append(subgroup, OwnerAssetClassShare{
				Owner:      owner,
				AssetClass: models.AssetClass(k.Secondary),
				Total:      v,
				Percentage: v / ownerTotal * 100,
			})
		}
		sort.Slice(subgroup, func(i, j int) bool { return subgroup[i].AssetClass < subgroup[j].AssetClass })

		correctOwnerDrift(subgroup)
		result = append(result, subgroup...)
	}
	return result, nil
}

// correctAssetClassDrift adds the residual (100 − Σ percentages) to the
// largest bucket when it exceeds tolerance.
func correctAssetClassDrift(breakdown []AssetClassShare) {
	totalPct := 0.0
	for _, b := range breakdown {
		totalPct += b.Percentage
	}
	drift := 100 - totalPct
	if math.Abs(drift) <= percentDriftTolerance {
		return
	}
	largest := 0
	for i := 1; i < len(breakdown); i++ {
		if breakdown[i].Percentage > breakdown[largest].Percentage {
			largest = i
		}
	}
	breakdown[largest].Percentage += drift
}

func correctOwnerDrift(subgroup []OwnerAssetClassShare) {
	totalPct := 0.0
	for _, b := range subgroup {
		totalPct += b.Percentage
	}
	drift := 100 - totalPct
	if math.Abs(drift) <= percentDriftTolerance {
		return
	}
	largest := 0
	for i := 1; i < len(subgroup); i++ {
		if subgroup[i].Percentage > subgroup[largest].Percentage {
			largest = i
		}
	}
	subgroup[largest].Percentage += drift
}

func (s *portfolioService) summariesByDate(date time.Time) ([]models.AccountSummary, error) {
	var rows []models.AccountSummary
	if err := s.db.Where("date = ?", models.DateOnly(date)).Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}
