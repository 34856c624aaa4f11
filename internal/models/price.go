package models

import (
	"time"

	"fintrack/internal/uuid"

	"gorm.io/gorm"
)

// Price is a cached market price keyed by (symbol, date).
// A Value of zero means "not yet successfully fetched", not a valid quote.
// Rows are inserted or updated by the resolver and never deleted.
type Price struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Symbol    Symbol    `gorm:"not null;uniqueIndex:uq_prices_symbol_date" json:"symbol"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:uq_prices_symbol_date" json:"date"`
	Value     float64   `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records.
func (p *Price) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New()
	}
	return nil
}
