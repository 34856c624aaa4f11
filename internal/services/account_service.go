package services

import (
	"errors"
	"strings"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"

	"gorm.io/gorm"
)

// accountService handles account and holding persistence.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// AllAccountsWithHoldings returns every account with its live holdings.
// Holdings are not date-versioned; builds value the current set as of the
// target date's prices.
func (s *accountService) AllAccountsWithHoldings() ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.Preload("Holdings").Order("name ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return accounts, nil
}

// AccountByName returns one account with its holdings.
func (s *accountService) AccountByName(name string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Preload("Holdings").Where("name = ?", name).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// AccountNames returns all account names ordered alphabetically.
func (s *accountService) AccountNames() ([]string, error) {
	var names []string
	if err := s.db.Model(&models.Account{}).Order("name ASC").Pluck("name", &names).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return names, nil
}

// CreateAccount persists a new account. The reporting filter is always
// derived from the type so the two can't drift apart.
func (s *accountService) CreateAccount(account *models.Account) error {
	if strings.TrimSpace(account.Name) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Account name is required")
	}
	if strings.TrimSpace(account.Owner) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Account owner is required")
	}
	if account.Currency == "" {
		account.Currency = "CAD"
	}
	account.Filter = account.Type.Filter()

	if err := s.db.Create(account).Error; err != nil {
		if isUniqueConstraintError(err) {
			return apperrors.ErrDuplicateAccount
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// UpsertHolding sets the quantity for (account, symbol), creating the holding
// when absent. At most one holding per symbol per account.
func (s *accountService) UpsertHolding(accountName string, symbol models.Symbol, quantity float64) (*models.Holding, error) {
	if quantity < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Quantity cannot be negative")
	}

	var count int64
	if err := s.db.Model(&models.Account{}).Where("name = ?", accountName).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return nil, apperrors.ErrAccountNotFound
	}

	var holding models.Holding
	err := s.db.Where("account_name = ? AND symbol = ?", accountName, symbol).First(&holding).Error
	switch {
	case err == nil:
		if err := s.db.Model(&holding).Update("quantity", quantity).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		holding.Quantity = quantity
		return &holding, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		holding = models.Holding{AccountName: accountName, Symbol: symbol, Quantity: quantity}
		if err := s.db.Create(&holding).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &holding, nil
	default:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
}

// isUniqueConstraintError checks if a GORM error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}
