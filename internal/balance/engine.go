package balance

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/ledger"
)

// Compute derives the balance of every account in the input.
//
// finalBalance = initialBalance + Σincoming - Σoutgoing, restricted to the
// transactions inside the resolved period window. Compute is a pure function:
// inputs are never mutated and the same input yields the same report.
// Routine data gaps (no initial balance, no transactions) default to zero;
// only an unresolvable period is an error.
func Compute(input ComputeInput) (*Report, error) {
	window, err := ledger.ResolvePeriod(input.Period, input.Now)
	if err != nil {
		return nil, err
	}

	companies := make(map[string]domain.Company, len(input.Companies))
	for _, c := range input.Companies {
		companies[c.ID] = c
	}

	initialBalances := make(map[domain.AccountKey]domain.InitialBalance, len(input.InitialBalances))
	for _, b := range input.InitialBalances {
		initialBalances[b.Key()] = b
	}

	// Accumulators are indexed by account key in account order
	index := make(map[domain.AccountKey]int, len(input.Accounts))
	accumulators := make([]*accountAccumulator, 0, len(input.Accounts))
	for _, acc := range input.Accounts {
		if _, dup := index[acc.Key()]; dup {
			continue
		}
		index[acc.Key()] = len(accumulators)
		accumulators = append(accumulators, &accountAccumulator{
			account:    acc,
			byCurrency: ledger.NewCurrencyTotals(),
		})
	}

	var warnings []Warning
	for _, tx := range input.Transactions {
		if tx.IsDeleted {
			continue
		}

		i, ok := index[tx.Key()]
		if !ok {
			warnings = append(warnings, Warning{
				Code:          WarningOrphanedTransaction,
				AccountID:     tx.AccountID,
				TransactionID: tx.ID,
				Message:       fmt.Sprintf("transaction references unknown %s account %s", tx.AccountType, tx.AccountID),
			})
			continue
		}

		if !window.Contains(tx.Date) {
			continue
		}

		if !tx.IsConsistent() {
			warnings = append(warnings, Warning{
				Code:          WarningInconsistentNetAmount,
				AccountID:     tx.AccountID,
				TransactionID: tx.ID,
				Message:       fmt.Sprintf("net amount %s does not equal incoming %s minus outgoing %s", tx.NetAmount, tx.IncomingAmount, tx.OutgoingAmount),
			})
		}

		accumulators[i].add(tx)
	}

	for _, b := range input.InitialBalances {
		if _, ok := index[b.Key()]; !ok {
			warnings = append(warnings, Warning{
				Code:      WarningOrphanedInitialBalance,
				AccountID: b.AccountID,
				Message:   fmt.Sprintf("initial balance references unknown %s account %s", b.AccountType, b.AccountID),
			})
		}
	}

	items := make([]ListItem, 0, len(accumulators))
	for _, acc := range accumulators {
		var initial decimal.Decimal
		currency := acc.account.Currency
		if b, ok := initialBalances[acc.account.Key()]; ok {
			initial = b.Amount
			if currency == "" {
				currency = b.Currency
			}
		}

		item := acc.item(initial, currency)
		if c, ok := companies[acc.account.CompanyID]; ok {
			company := c
			item.Company = &company
		}
		items = append(items, item)
	}

	items = applyFilters(items, input.Filters)
	sortItems(items, input.Sort)

	return &Report{
		Items:    items,
		Summary:  summarize(items),
		Window:   window,
		Warnings: warnings,
	}, nil
}

type accountAccumulator struct {
	account    domain.Account
	incoming   decimal.Decimal
	outgoing   decimal.Decimal
	count      int
	lastDate   *time.Time
	byCurrency *ledger.CurrencyTotals
}

func (a *accountAccumulator) add(tx domain.Transaction) {
	in, out := tx.Flows()
	a.incoming = a.incoming.Add(in)
	a.outgoing = a.outgoing.Add(out)
	a.byCurrency.Add(tx.Currency, in, out)
	a.count++

	if a.lastDate == nil || tx.Date.After(*a.lastDate) {
		d := tx.Date
		a.lastDate = &d
	}
}

func (a *accountAccumulator) item(initial decimal.Decimal, currency string) ListItem {
	transactionBalance := a.incoming.Sub(a.outgoing)

	var byCurrency map[string]ledger.Totals
	if a.byCurrency.Len() > 0 {
		byCurrency = a.byCurrency.Map()
	}

	return ListItem{
		Account:             a.account,
		InitialBalance:      initial,
		TransactionBalance:  transactionBalance,
		FinalBalance:        initial.Add(transactionBalance),
		IncomingAmount:      a.incoming,
		OutgoingAmount:      a.outgoing,
		Currency:            strings.ToUpper(currency),
		LastTransactionDate: a.lastDate,
		TransactionCount:    a.count,
		ByCurrency:          byCurrency,
	}
}
