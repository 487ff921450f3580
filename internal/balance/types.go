package balance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/ledger"
)

// AccountTypeFilter restricts the report to one kind of account
type AccountTypeFilter string

const (
	AccountTypeFilterAll    AccountTypeFilter = "all"
	AccountTypeFilterBank   AccountTypeFilter = "bank"
	AccountTypeFilterWallet AccountTypeFilter = "wallet"
)

// ViewFilter restricts the report to assets or liabilities
type ViewFilter string

const (
	ViewFilterAll         ViewFilter = "all"
	ViewFilterAssets      ViewFilter = "assets"
	ViewFilterLiabilities ViewFilter = "liabilities"
)

// SortField names the field the report is sorted by
type SortField string

const (
	SortFieldFinalBalance SortField = "finalBalance"
	SortFieldAccountName  SortField = "accountName"
	SortFieldCompanyName  SortField = "companyName"
	SortFieldCurrency     SortField = "currency"
)

// Filters holds the post-processing filters of a report
type Filters struct {
	Search           string            `json:"search,omitempty"`
	AccountType      AccountTypeFilter `json:"account_type"`
	ShowZeroBalances bool              `json:"show_zero_balances"`
	ViewFilter       ViewFilter        `json:"view_filter"`
}

// Sort holds the ordering of a report
type Sort struct {
	Field     SortField        `json:"field"`
	Direction ledger.Direction `json:"direction"`
}

// ComputeInput is everything the engine needs; it performs no I/O
type ComputeInput struct {
	Accounts        []domain.Account
	Companies       []domain.Company
	InitialBalances []domain.InitialBalance
	Transactions    []domain.Transaction
	Period          ledger.PeriodSpec
	Now             time.Time
	Filters         Filters
	Sort            Sort
}

// ListItem is the computed balance of one account
type ListItem struct {
	Account             domain.Account           `json:"account"`
	Company             *domain.Company          `json:"company,omitempty"`
	InitialBalance      decimal.Decimal          `json:"initial_balance"`
	TransactionBalance  decimal.Decimal          `json:"transaction_balance"`
	FinalBalance        decimal.Decimal          `json:"final_balance"`
	IncomingAmount      decimal.Decimal          `json:"incoming_amount"`
	OutgoingAmount      decimal.Decimal          `json:"outgoing_amount"`
	Currency            string                   `json:"currency"`
	LastTransactionDate *time.Time               `json:"last_transaction_date,omitempty"`
	TransactionCount    int                      `json:"transaction_count"`
	ByCurrency          map[string]ledger.Totals `json:"by_currency,omitempty"`
}

// CurrencySummary holds the roll-ups of a single currency
type CurrencySummary struct {
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	NetWorth         decimal.Decimal `json:"net_worth"`
	AccountCount     int             `json:"account_count"`
}

// Summary holds the roll-ups across all reported accounts
type Summary struct {
	TotalAssets       decimal.Decimal            `json:"total_assets"`
	TotalLiabilities  decimal.Decimal            `json:"total_liabilities"`
	NetWorth          decimal.Decimal            `json:"net_worth"`
	TotalAccounts     int                        `json:"total_accounts"`
	BankAccounts      int                        `json:"bank_accounts"`
	Wallets           int                        `json:"wallets"`
	CurrencyBreakdown map[string]CurrencySummary `json:"currency_breakdown"`
}

// WarningCode classifies a data-integrity warning
type WarningCode string

const (
	WarningOrphanedTransaction    WarningCode = "orphaned_transaction"
	WarningInconsistentNetAmount  WarningCode = "inconsistent_net_amount"
	WarningOrphanedInitialBalance WarningCode = "orphaned_initial_balance"
)

// Warning is a non-fatal data-integrity finding
type Warning struct {
	Code          WarningCode `json:"code"`
	AccountID     string      `json:"account_id"`
	TransactionID string      `json:"transaction_id,omitempty"`
	Message       string      `json:"message"`
}

// Report is the engine output
type Report struct {
	Items    []ListItem    `json:"data"`
	Summary  Summary       `json:"summary"`
	Window   ledger.Window `json:"window"`
	Warnings []Warning     `json:"warnings,omitempty"`
}
