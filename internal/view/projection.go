// Package view projects the raw record list into the tabular view:
// threshold and asset filtering, wallet search, stable sorting, and
// pagination. It shares the profit calculation with the analytics engine
// so both surfaces always agree on a record's profit.
package view

import (
	"sort"
	"strings"

	"liquidation-radar/internal/domain"
	"liquidation-radar/internal/pricing"
)

// SortKey selects the column the table is ordered by.
type SortKey string

// Supported sort keys.
const (
	SortByTimestamp  SortKey = "block_timestamp"
	SortByProfit     SortKey = "profit"
	SortByCollateral SortKey = "collateral_usd"
	SortByDebt       SortKey = "debt_usd"
)

// Direction is the sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Filter holds the table filter controls. Zero values mean "not set".
type Filter struct {
	CollateralAsset string  // exact collateral symbol match
	DebtAsset       string  // exact debt symbol match
	WalletSubstring string  // case-insensitive substring of user OR liquidator
	MinProfitUsd    float64 // inclusive threshold, same semantics as the engine
}

// Page is one page of projected rows plus the match count across all pages.
type Page struct {
	Rows            []*domain.LiquidationRecord `json:"rows"`
	TotalMatchCount int                         `json:"total_match_count"`
}

// AssetOptions are the filter choices offered for the asset dropdowns.
// They derive from records passing the profit threshold, not the full set,
// so raising the threshold can shrink the offered options.
type AssetOptions struct {
	Collateral []string `json:"collateral"`
	Debt       []string `json:"debt"`
}

// Project filters, sorts, and paginates records for the tabular view.
// Filtering order: profit threshold, collateral symbol, debt symbol,
// wallet substring. Sorting is stable so equal keys keep input order.
// A pageIndex past the end yields empty rows and the unchanged count.
func Project(records []*domain.LiquidationRecord, f Filter, key SortKey, dir Direction, pageIndex, pageSize int) Page {
	matched := filter(records, f)

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := sortValue(matched[i], key), sortValue(matched[j], key)
		if dir == Descending {
			return b < a
		}
		return a < b
	})

	total := len(matched)
	if pageSize <= 0 || pageIndex < 0 {
		return Page{Rows: []*domain.LiquidationRecord{}, TotalMatchCount: total}
	}
	start := pageIndex * pageSize
	if start >= total {
		return Page{Rows: []*domain.LiquidationRecord{}, TotalMatchCount: total}
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return Page{Rows: matched[start:end], TotalMatchCount: total}
}

// Options lists the distinct, alphabetically sorted asset symbols among
// records passing the profit threshold. Records with nil symbols are
// counted in the view but offer no option.
func Options(records []*domain.LiquidationRecord, minProfitUsd float64) AssetOptions {
	collateral := make(map[string]struct{})
	debt := make(map[string]struct{})
	for _, r := range records {
		if pricing.ProfitUsd(r) < minProfitUsd {
			continue
		}
		if r.CollateralSymbol != nil {
			collateral[*r.CollateralSymbol] = struct{}{}
		}
		if r.DebtSymbol != nil {
			debt[*r.DebtSymbol] = struct{}{}
		}
	}
	return AssetOptions{
		Collateral: sortedKeys(collateral),
		Debt:       sortedKeys(debt),
	}
}

func filter(records []*domain.LiquidationRecord, f Filter) []*domain.LiquidationRecord {
	wallet := strings.ToLower(f.WalletSubstring)
	var matched []*domain.LiquidationRecord
	for _, r := range records {
		if pricing.ProfitUsd(r) < f.MinProfitUsd {
			continue
		}
		if f.CollateralAsset != "" && (r.CollateralSymbol == nil || *r.CollateralSymbol != f.CollateralAsset) {
			continue
		}
		if f.DebtAsset != "" && (r.DebtSymbol == nil || *r.DebtSymbol != f.DebtAsset) {
			continue
		}
		if wallet != "" &&
			!strings.Contains(strings.ToLower(r.User), wallet) &&
			!strings.Contains(strings.ToLower(r.Liquidator), wallet) {
			continue
		}
		matched = append(matched, r)
	}
	return matched
}

func sortValue(r *domain.LiquidationRecord, key SortKey) float64 {
	switch key {
	case SortByProfit:
		return pricing.ProfitUsd(r)
	case SortByCollateral:
		return pricing.CollateralUsd(r)
	case SortByDebt:
		return pricing.DebtUsd(r)
	default:
		return float64(r.BlockTimestamp)
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
