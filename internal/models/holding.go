package models

// Holding is a position in one instrument within one account.
// At most one holding exists per (account, symbol). For the CASH
// pseudo-symbol, Quantity is the cash amount itself.
type Holding struct {
	Base
	AccountName string  `gorm:"not null;uniqueIndex:uq_holdings_account_symbol" json:"account_name"`
	Symbol      Symbol  `gorm:"not null;uniqueIndex:uq_holdings_account_symbol" json:"symbol"`
	Quantity    float64 `gorm:"not null" json:"quantity"`
}

// AssetClass resolves the holding's asset class from its symbol.
// Derived, never stored.
func (h Holding) AssetClass() AssetClass {
	return h.Symbol.AssetClass()
}

// IsCash reports whether the holding is the cash pseudo-position.
func (h Holding) IsCash() bool { return h.Symbol == SymbolCash }
