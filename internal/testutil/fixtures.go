package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestAccount creates an account with a unique name for the given owner.
func CreateTestAccount(t *testing.T, db *gorm.DB, owner string, accountType models.AccountType) *models.Account {
	t.Helper()
	name := fmt.Sprintf("Test Account %d", nextID())
	return CreateTestAccountNamed(t, db, name, owner, accountType)
}

// CreateTestAccountNamed creates an account with an explicit name.
func CreateTestAccountNamed(t *testing.T, db *gorm.DB, name, owner string, accountType models.AccountType) *models.Account {
	t.Helper()

	account := &models.Account{
		Name:     name,
		Owner:    owner,
		Type:     accountType,
		Filter:   accountType.Filter(),
		Bank:     "Test Bank",
		Currency: "CAD",
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// AddHolding creates a holding on the account.
func AddHolding(t *testing.T, db *gorm.DB, account *models.Account, symbol models.Symbol, quantity float64) *models.Holding {
	t.Helper()

	holding := &models.Holding{
		AccountName: account.Name,
		Symbol:      symbol,
		Quantity:    quantity,
	}
	if err := db.Create(holding).Error; err != nil {
		t.Fatalf("failed to create test holding: %v", err)
	}
	return holding
}

// SeedPrice caches a price for (symbol, date).
func SeedPrice(t *testing.T, db *gorm.DB, symbol models.Symbol, date time.Time, value float64) *models.Price {
	t.Helper()

	price := &models.Price{
		Symbol: symbol,
		Date:   models.DateOnly(date),
		Value:  value,
	}
	if err := db.Create(price).Error; err != nil {
		t.Fatalf("failed to seed price: %v", err)
	}
	return price
}

// SeedAllTrackedPrices caches a nonzero price for every tracked symbol so a
// resolver run against date needs no external fetches. Explicit overrides win.
func SeedAllTrackedPrices(t *testing.T, db *gorm.DB, date time.Time, overrides map[models.Symbol]float64) {
	t.Helper()

	for _, sym := range models.TrackedSymbols() {
		value := 1.0
		if v, ok := overrides[sym]; ok {
			value = v
		}
		SeedPrice(t, db, sym, date, value)
	}
}

// SeedSummary persists a summary row directly, bypassing the builder.
func SeedSummary(t *testing.T, db *gorm.DB, account *models.Account, date time.Time, class models.AssetClass, value float64) *models.AccountSummary {
	t.Helper()

	summary := &models.AccountSummary{
		Name:        account.Name,
		Owner:       account.Owner,
		Type:        account.Type,
		Filter:      account.Filter,
		Bank:        account.Bank,
		Currency:    account.Currency,
		Date:        models.DateOnly(date),
		AssetClass:  class,
		MarketValue: value,
	}
	if err := db.Create(summary).Error; err != nil {
		t.Fatalf("failed to seed summary: %v", err)
	}
	return summary
}
