package balance

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/ledger"
)

// applyFilters keeps the items matching every filter, preserving order
func applyFilters(items []ListItem, f Filters) []ListItem {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]ListItem, 0, len(items))
	for _, item := range items {
		if !matchesAccountType(item, f.AccountType) {
			continue
		}
		if search != "" && !matchesSearch(item, search) {
			continue
		}
		if !f.ShowZeroBalances && item.FinalBalance.IsZero() {
			continue
		}
		if !matchesView(item, f.ViewFilter) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesAccountType(item ListItem, filter AccountTypeFilter) bool {
	switch filter {
	case AccountTypeFilterBank:
		return item.Account.Type == domain.AccountTypeBank
	case AccountTypeFilterWallet:
		return item.Account.Type == domain.AccountTypeWallet
	default:
		return true
	}
}

func matchesView(item ListItem, filter ViewFilter) bool {
	switch filter {
	case ViewFilterAssets:
		return !item.FinalBalance.IsNegative()
	case ViewFilterLiabilities:
		return item.FinalBalance.IsNegative()
	default:
		return true
	}
}

// matchesSearch does a case-insensitive substring match; search is lowercased
func matchesSearch(item ListItem, search string) bool {
	fields := []string{
		item.Account.Name,
		item.Account.AccountNumber,
		item.Currency,
	}
	if item.Company != nil {
		fields = append(fields, item.Company.TradingName)
	}

	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

// sortItems orders items in place; ties keep insertion order
func sortItems(items []ListItem, s Sort) {
	dir := s.Direction
	if dir == "" {
		dir = ledger.DirectionAsc
	}

	switch s.Field {
	case SortFieldFinalBalance:
		ledger.SortStable(items, ledger.OrderByDecimal(func(i ListItem) decimal.Decimal { return i.FinalBalance }, dir))
	case SortFieldAccountName:
		ledger.SortStable(items, ledger.OrderBy(func(i ListItem) string { return strings.ToLower(i.Account.Name) }, dir))
	case SortFieldCompanyName:
		ledger.SortStable(items, ledger.OrderBy(companyName, dir))
	case SortFieldCurrency:
		ledger.SortStable(items, ledger.OrderBy(func(i ListItem) string { return i.Currency }, dir))
	}
}

func companyName(i ListItem) string {
	if i.Company == nil {
		return ""
	}
	return strings.ToLower(i.Company.TradingName)
}

// summarize rolls up the reported items. Zero balances count as assets.
func summarize(items []ListItem) Summary {
	s := Summary{CurrencyBreakdown: make(map[string]CurrencySummary)}

	for _, item := range items {
		s.TotalAccounts++
		switch item.Account.Type {
		case domain.AccountTypeBank:
			s.BankAccounts++
		case domain.AccountTypeWallet:
			s.Wallets++
		}

		cs := s.CurrencyBreakdown[item.Currency]
		cs.AccountCount++
		if item.FinalBalance.IsNegative() {
			abs := item.FinalBalance.Abs()
			s.TotalLiabilities = s.TotalLiabilities.Add(abs)
			cs.TotalLiabilities = cs.TotalLiabilities.Add(abs)
		} else {
			s.TotalAssets = s.TotalAssets.Add(item.FinalBalance)
			cs.TotalAssets = cs.TotalAssets.Add(item.FinalBalance)
		}
		cs.NetWorth = cs.TotalAssets.Sub(cs.TotalLiabilities)
		s.CurrencyBreakdown[item.Currency] = cs
	}

	s.NetWorth = s.TotalAssets.Sub(s.TotalLiabilities)
	return s
}
