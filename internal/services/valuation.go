package services

import "fintrack/internal/models"

// ComputeHoldingValue returns the monetary value of a single holding given a
// price snapshot. Cash quantity IS the value, no price lookup involved. A
// symbol absent from the snapshot values at zero rather than failing, so a
// holding priced outside the tracked set under-reports instead of killing
// the build.
func ComputeHoldingValue(h models.Holding, prices map[models.Symbol]float64) float64 {
	if h.IsCash() {
		return h.Quantity
	}
	if price, ok := prices[h.Symbol]; ok {
		return h.Quantity * price
	}
	return 0.0
}

// ComputeMarketValue sums ComputeHoldingValue over a collection of holdings.
func ComputeMarketValue(holdings []models.Holding, prices map[models.Symbol]float64) float64 {
	total := 0.0
	for _, h := range holdings {
		total += ComputeHoldingValue(h, prices)
	}
	return total
}
