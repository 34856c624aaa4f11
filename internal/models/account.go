package models

// AccountType is the registered-plan category of an account.
type AccountType string

const (
	AccountTypeRRSP           AccountType = "RRSP"
	AccountTypeRRSPSpousal    AccountType = "RRSPSpousal"
	AccountTypeTFSA           AccountType = "TFSA"
	AccountTypeLIRAFederal    AccountType = "LIRAFederal"
	AccountTypeLIRAProvincial AccountType = "LIRAProvincial"
	AccountTypeRESP           AccountType = "RESP"
	AccountTypeNonReg         AccountType = "NonReg"
)

// AccountFilter is the coarse reporting bucket derived from an account type.
// Spousal RRSPs fold into RRSP, both LIRA flavours into LIRA.
type AccountFilter string

const (
	AccountFilterRRSP   AccountFilter = "RRSP"
	AccountFilterTFSA   AccountFilter = "TFSA"
	AccountFilterLIRA   AccountFilter = "LIRA"
	AccountFilterRESP   AccountFilter = "RESP"
	AccountFilterNonReg AccountFilter = "NONREG"
)

// Filter maps an account type to its reporting bucket.
func (t AccountType) Filter() AccountFilter {
	switch t {
	case AccountTypeRRSP, AccountTypeRRSPSpousal:
		return AccountFilterRRSP
	case AccountTypeLIRAFederal, AccountTypeLIRAProvincial:
		return AccountFilterLIRA
	case AccountTypeRESP:
		return AccountFilterRESP
	case AccountTypeTFSA:
		return AccountFilterTFSA
	default:
		return AccountFilterNonReg
	}
}

// Account is an investment account holding a set of positions.
// Name is the natural key the rest of the system references.
type Account struct {
	Base
	Name     string        `gorm:"not null;uniqueIndex" json:"name"`
	Owner    string        `gorm:"not null" json:"owner"`
	Type     AccountType   `gorm:"not null" json:"type"`
	Filter   AccountFilter `gorm:"not null" json:"filter"`
	Bank     string        `gorm:"not null" json:"bank"`
	Currency string        `gorm:"not null;default:'CAD'" json:"currency"`
	Holdings []Holding     `gorm:"foreignKey:AccountName;references:Name" json:"holdings,omitempty"`

	// MarketValue is derived from summary rows, never persisted on the account.
	MarketValue float64 `gorm:"-" json:"market_value,omitempty"`
}
