package store

import (
	"context"

	"github.com/feral-file/ff-balance/internal/domain"
)

// AccountFilter narrows ListAccounts
type AccountFilter struct {
	// CompanyID limits the result to one company; empty means all companies
	CompanyID string
	// Type limits the result to bank accounts or wallets; empty means both
	Type domain.AccountType
	// IncludeInactive also returns accounts no longer in use
	IncludeInactive bool
}

// TransactionFilter narrows ListTransactions
type TransactionFilter struct {
	// Account limits the result to one account when set
	Account *domain.AccountKey
	// CompanyID limits the result to one company; empty means all companies
	CompanyID string
	// DateRange is inclusive on both ends; nil bounds are open
	DateRange domain.DateRange
	// Currency limits the result to one currency when set
	Currency string
	// IncludeDeleted also returns soft-deleted rows
	IncludeDeleted bool
}

// AppendResult reports the outcome of a batch append
type AppendResult struct {
	// Inserted is the number of new rows written
	Inserted int
	// Duplicates is the number of rows whose id already existed
	Duplicates int
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// ListAccounts retrieves bank accounts and wallets ordered by name
	ListAccounts(ctx context.Context, filter AccountFilter) ([]domain.Account, error)
	// GetAccount retrieves a single account; nil when it does not exist
	GetAccount(ctx context.Context, key domain.AccountKey) (*domain.Account, error)
	// ListCompanies retrieves the company directory
	ListCompanies(ctx context.Context) ([]domain.Company, error)

	// GetInitialBalance retrieves the initial balance of an account; nil when none was entered
	GetInitialBalance(ctx context.Context, key domain.AccountKey) (*domain.InitialBalance, error)
	// ListInitialBalances retrieves initial balances, optionally limited to one company
	ListInitialBalances(ctx context.Context, companyID string) ([]domain.InitialBalance, error)
	// UpsertInitialBalance creates the initial balance of an account.
	// An existing balance is replaced only when overwrite is set, otherwise
	// domain.ErrInitialBalanceExists is returned and the row is untouched.
	UpsertInitialBalance(ctx context.Context, balance domain.InitialBalance, overwrite bool) (*domain.InitialBalance, error)

	// ListTransactions retrieves transactions ordered by date and id
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)
	// AppendTransactions writes transactions in a single database transaction.
	// Rows with an existing id are counted as duplicates and left untouched
	// unless overwrite is set. Either all rows are written or none.
	AppendTransactions(ctx context.Context, txs []domain.Transaction, overwrite bool) (*AppendResult, error)
}
