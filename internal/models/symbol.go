package models

// Symbol identifies a tradable instrument, or the special CASH pseudo-symbol.
// Non-cash symbols double as their quote-API tickers.
type Symbol string

const (
	SymbolVFV   Symbol = "VFV.TO"
	SymbolVCE   Symbol = "VCE.TO"
	SymbolHXQ   Symbol = "HXQ.TO"
	SymbolVDY   Symbol = "VDY.TO"
	SymbolTRI   Symbol = "TRI"
	SymbolMFC   Symbol = "MFC.TO"
	SymbolBKCC  Symbol = "BKCC.TO"
	SymbolPREF  Symbol = "PREF.TO"
	SymbolVI    Symbol = "VI.TO"
	SymbolZGLD  Symbol = "ZGLD.TO"
	SymbolZGLH  Symbol = "ZGLH.TO"
	SymbolBTCC  Symbol = "BTCC.TO"
	SymbolTD900 Symbol = "TDB900"
	SymbolTD902 Symbol = "TDB902"
	SymbolTD911 Symbol = "TDB911"
	SymbolCash  Symbol = "CASH"
)

// AssetClass is the coarse category a symbol maps to.
type AssetClass string

const (
	AssetClassOther          AssetClass = "Other"
	AssetClassCash           AssetClass = "Cash"
	AssetClassUSStock        AssetClass = "USStock"
	AssetClassCanadianStock  AssetClass = "CanadianStock"
	AssetClassDevelopedStock AssetClass = "DevelopedStock"
	AssetClassBond10Yr       AssetClass = "Bond10Yr"
	AssetClassBond30Yr       AssetClass = "Bond30Yr"
	AssetClassGold           AssetClass = "Gold"
	AssetClassCryptocurrency AssetClass = "Cryptocurrency"
)

// assetClassBySymbol is the static symbol classification table.
// Any symbol absent from it resolves to Other.
var assetClassBySymbol = map[Symbol]AssetClass{
	// US stocks
	SymbolVFV:   AssetClassUSStock,
	SymbolTD900: AssetClassUSStock,
	SymbolHXQ:   AssetClassUSStock,

	// Canadian stocks
	SymbolVCE:   AssetClassCanadianStock,
	SymbolVDY:   AssetClassCanadianStock,
	SymbolTRI:   AssetClassCanadianStock,
	SymbolMFC:   AssetClassCanadianStock,
	SymbolBKCC:  AssetClassCanadianStock,
	SymbolPREF:  AssetClassCanadianStock,
	SymbolTD902: AssetClassCanadianStock,

	// Developed ex-North America
	SymbolTD911: AssetClassDevelopedStock,
	SymbolVI:    AssetClassDevelopedStock,

	// Commodities
	SymbolZGLD: AssetClassGold,
	SymbolZGLH: AssetClassGold,

	// Crypto
	SymbolBTCC: AssetClassCryptocurrency,

	// Cash
	SymbolCash: AssetClassCash,
}

// allSymbols lists every symbol the system tracks, cash included.
var allSymbols = []Symbol{
	SymbolVFV, SymbolVCE, SymbolHXQ, SymbolVDY, SymbolTRI, SymbolMFC,
	SymbolBKCC, SymbolPREF, SymbolVI, SymbolZGLD, SymbolZGLH, SymbolBTCC,
	SymbolTD900, SymbolTD902, SymbolTD911, SymbolCash,
}

// TrackedSymbols returns every symbol that carries a market price,
// i.e. everything except CASH.
func TrackedSymbols() []Symbol {
	out := make([]Symbol, 0, len(allSymbols)-1)
	for _, s := range allSymbols {
		if s != SymbolCash {
			out = append(out, s)
		}
	}
	return out
}

// AssetClass resolves the symbol's asset class from the static table.
func (s Symbol) AssetClass() AssetClass {
	if class, ok := assetClassBySymbol[s]; ok {
		return class
	}
	return AssetClassOther
}

// Ticker returns the quote-API ticker for the symbol.
func (s Symbol) Ticker() string { return string(s) }
