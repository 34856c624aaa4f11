package models

import (
	"time"

	"fintrack/internal/uuid"

	"gorm.io/gorm"
)

// AccountSummary is the aggregate value of one account's holdings in one
// asset class on one date. The (name, date, asset class) grain is canonical:
// coarser totals are always derived by summing these rows, never persisted
// separately. Account attributes are denormalized so aggregate queries don't
// need a join back to accounts.
type AccountSummary struct {
	ID          string        `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string        `gorm:"not null;uniqueIndex:uq_summaries_name_date_class" json:"name"`
	Owner       string        `gorm:"not null" json:"owner"`
	Type        AccountType   `gorm:"not null" json:"type"`
	Filter      AccountFilter `gorm:"not null" json:"filter"`
	Bank        string        `gorm:"not null" json:"bank"`
	Currency    string        `gorm:"not null" json:"currency"`
	Date        time.Time     `gorm:"type:date;not null;uniqueIndex:uq_summaries_name_date_class" json:"date"`
	AssetClass  AssetClass    `gorm:"not null;uniqueIndex:uq_summaries_name_date_class" json:"asset_class"`
	MarketValue float64       `gorm:"not null" json:"market_value"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records.
func (s *AccountSummary) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New()
	}
	return nil
}
