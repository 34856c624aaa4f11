package models

import (
	"time"

	"fintrack/internal/uuid"

	"gorm.io/gorm"
)

// RollupKind names a rollup series. Only the all-accounts total exists today.
type RollupKind string

const RollupKindTotal RollupKind = "Total"

// TotalMarketValue is a dated rollup of market value across all accounts,
// persisted independently of summary rows to serve historical queries.
type TotalMarketValue struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	Kind        RollupKind `gorm:"not null;uniqueIndex:uq_rollups_kind_asof" json:"kind"`
	AsOf        time.Time  `gorm:"type:date;not null;uniqueIndex:uq_rollups_kind_asof" json:"as_of"`
	MarketValue float64    `gorm:"not null" json:"market_value"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records.
func (t *TotalMarketValue) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New()
	}
	return nil
}
