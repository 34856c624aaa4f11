package services

import (
	"fmt"

	"fintrack/internal/models"
)

// GroupKey selects how summary rows partition in aggregate queries. The set
// is closed on purpose: grouping happens in memory after rows load, so no
// caller-supplied key expressions reach the store.
type GroupKey int

const (
	GroupByOwner GroupKey = iota
	GroupByAssetClass
	GroupByBank
	GroupByFilter
	GroupByCurrency
	GroupByAccountName
	GroupByOwnerAndAssetClass
	GroupByOwnerAndType
	GroupByOwnerAndFilter
)

// String returns the key's name for logs and errors.
func (k GroupKey) String() string {
	switch k {
	case GroupByOwner:
		return "owner"
	case GroupByAssetClass:
		return "asset_class"
	case GroupByBank:
		return "bank"
	case GroupByFilter:
		return "filter"
	case GroupByCurrency:
		return "currency"
	case GroupByAccountName:
		return "account_name"
	case GroupByOwnerAndAssetClass:
		return "owner+asset_class"
	case GroupByOwnerAndType:
		return "owner+type"
	case GroupByOwnerAndFilter:
		return "owner+filter"
	default:
		return fmt.Sprintf("GroupKey(%d)", int(k))
	}
}

func (k GroupKey) valid() bool {
	return k >= GroupByOwner && k <= GroupByOwnerAndFilter
}

// GroupValue is the evaluated key of one partition. Secondary is empty for
// single-field keys.
type GroupValue struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary,omitempty"`
}

// valueOf evaluates the key against one summary row.
func (k GroupKey) valueOf(s models.AccountSummary) GroupValue {
	switch k {
	case GroupByOwner:
		return GroupValue{Primary: s.Owner}
	case GroupByAssetClass:
		return GroupValue{Primary: string(s.AssetClass)}
	case GroupByBank:
		return GroupValue{Primary: s.Bank}
	case GroupByFilter:
		return GroupValue{Primary: string(s.Filter)}
	case GroupByCurrency:
		return GroupValue{Primary: s.Currency}
	case GroupByAccountName:
		return GroupValue{Primary: s.Name}
	case GroupByOwnerAndAssetClass:
		return GroupValue{Primary: s.Owner, Secondary: string(s.AssetClass)}
	case GroupByOwnerAndType:
		return GroupValue{Primary: s.Owner, Secondary: string(s.Type)}
	case GroupByOwnerAndFilter:
		return GroupValue{Primary: s.Owner, Secondary: string(s.Filter)}
	default:
		return GroupValue{}
	}
}

// groupAndSum partitions rows by key and sums market value per partition.
func groupAndSum(rows []models.AccountSummary, key GroupKey) map[GroupValue]float64 {
	totals := make(map[GroupValue]float64)
	for _, row := range rows {
		totals[key.valueOf(row)] += row.MarketValue
	}
	return totals
}
