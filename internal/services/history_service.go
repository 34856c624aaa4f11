package services

import (
	"errors"
	"fmt"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"

	"gorm.io/gorm"
)

// maxHistoryDays caps how far back the rollup series can be queried.
const maxHistoryDays = 30

// historyService maintains the historical total-market-value rollup series.
type historyService struct {
	db *gorm.DB
}

// NewHistoryService creates a new HistoryServicer.
func NewHistoryService(db *gorm.DB) HistoryServicer {
	return &historyService{db: db}
}

// SaveTotal upserts the rollup row for (Total, date).
func (s *historyService) SaveTotal(date time.Time, value float64) error {
	date = models.DateOnly(date)

	var existing models.TotalMarketValue
	err := s.db.Where("kind = ? AND as_of = ?", models.RollupKindTotal, date).First(&existing).Error
	switch {
	case err == nil:
		if err := s.db.Model(&existing).Update("market_value", value).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := models.TotalMarketValue{Kind: models.RollupKindTotal, AsOf: date, MarketValue: value}
		if err := s.db.Create(&row).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	default:
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
}

// HistoricalTotals returns rollup rows from daysBack days ago through today,
// oldest first. Day counts outside 1..30 are rejected before any store
// access; there is no silent clamping.
func (s *historyService) HistoricalTotals(daysBack int) ([]models.TotalMarketValue, error) {
	if daysBack <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Days must be a positive integer")
	}
	if daysBack > maxHistoryDays {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("Days cannot exceed %d", maxHistoryDays))
	}

	cutoff := models.Today().AddDate(0, 0, -daysBack)

	var rows []models.TotalMarketValue
	if err := s.db.Where("kind = ? AND as_of >= ?", models.RollupKindTotal, cutoff).
		Order("as_of ASC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

// DeleteTotal removes the rollup row for date, returning the row count.
func (s *historyService) DeleteTotal(date time.Time) (int, error) {
	result := s.db.Where("kind = ? AND as_of = ?", models.RollupKindTotal, models.DateOnly(date)).
		Delete(&models.TotalMarketValue{})
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return int(result.RowsAffected), nil
}
