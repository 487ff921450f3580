package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-balance/internal/adapter"
	"github.com/feral-file/ff-balance/internal/chain"
	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/logger"
	"github.com/feral-file/ff-balance/internal/normalizer"
	"github.com/feral-file/ff-balance/internal/store"
)

const (
	// MAX_IMPORT_LIMIT caps the number of raw transactions fetched per currency
	MAX_IMPORT_LIMIT = 10000
)

// Request is a wallet import request
type Request struct {
	WalletID string
	// StartDate and EndDate bound the imported history, both inclusive
	StartDate *time.Time
	EndDate   *time.Time
	// Currencies defaults to the wallet's supported currencies
	Currencies          []string
	Limit               int
	OverwriteDuplicates bool
}

// Result is the outcome of a wallet import
type Result struct {
	Success               bool                               `json:"success"`
	ImportedTransactions  int                                `json:"imported_transactions"`
	DuplicateTransactions int                                `json:"duplicate_transactions"`
	Errors                []string                           `json:"errors"`
	Warnings              []normalizer.Warning               `json:"warnings"`
	ImportID              string                             `json:"import_id"`
	Reconciliation        []*normalizer.ReconciliationReport `json:"reconciliation,omitempty"`
}

// InitialBalanceRequest sets the manual zero-point of an account
type InitialBalanceRequest struct {
	AccountID   string
	AccountType domain.AccountType
	Amount      decimal.Decimal
	// Currency defaults to the account currency
	Currency      string
	Notes         *string
	Overwrite     bool
	AllowNegative bool
}

// Invalidator drops derived data after a ledger write
type Invalidator interface {
	Invalidate()
}

// Service writes to the ledger: wallet imports and manual initial balances
//
//go:generate mockgen -source=importer.go -destination=../mocks/importer.go -package=mocks -mock_names=Service=MockImporter,Invalidator=MockInvalidator
type Service interface {
	// ImportWallet fetches, normalizes and persists the history of a crypto wallet.
	// Upstream failures are reported in the result and nothing is written.
	ImportWallet(ctx context.Context, req Request) (*Result, error)

	// SetInitialBalance validates and upserts the initial balance of an account
	SetInitialBalance(ctx context.Context, req InitialBalanceRequest) (*domain.InitialBalance, error)
}

type service struct {
	store       store.Store
	source      chain.Source
	normalizer  normalizer.Normalizer
	invalidator Invalidator
	clock       adapter.Clock
}

// NewService creates an importer. invalidator may be nil.
func NewService(st store.Store, source chain.Source, n normalizer.Normalizer, invalidator Invalidator, clock adapter.Clock) Service {
	return &service{
		store:       st,
		source:      source,
		normalizer:  n,
		invalidator: invalidator,
		clock:       clock,
	}
}

func (s *service) ImportWallet(ctx context.Context, req Request) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	account, err := s.store.GetAccount(ctx, domain.AccountKey{AccountID: req.WalletID, AccountType: domain.AccountTypeWallet})
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: wallet %s", domain.ErrAccountNotFound, req.WalletID)
	}
	if !account.IsCryptoWallet() {
		return nil, fmt.Errorf("%w: wallet %s is not a crypto wallet", domain.ErrInvalidInput, req.WalletID)
	}
	if !domain.IsValidBlockchain(account.Blockchain) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedBlockchain, account.Blockchain)
	}
	if !domain.IsValidAddress(account.Blockchain, account.WalletAddress) {
		return nil, fmt.Errorf("%w: wallet %s has a malformed %s address", domain.ErrInvalidInput, account.ID, account.Blockchain)
	}

	id, err := ulid.New(ulid.Timestamp(s.clock.Now()), ulid.DefaultEntropy())
	if err != nil {
		return nil, fmt.Errorf("failed to generate import id: %w", err)
	}
	result := &Result{
		ImportID: id.String(),
		Errors:   []string{},
		Warnings: []normalizer.Warning{},
	}
	ctx = logger.WithFields(ctx, zap.String("importID", result.ImportID))

	currencies := requestedCurrencies(req.Currencies, *account)
	opening, err := s.openingBalance(ctx, *account)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 || limit > MAX_IMPORT_LIMIT {
		limit = MAX_IMPORT_LIMIT
	}

	logger.InfoCtx(ctx, "Importing wallet",
		zap.String("walletID", account.ID),
		zap.String("blockchain", string(account.Blockchain)),
		zap.Strings("currencies", currencies),
	)

	var rows []domain.Transaction
	seen := make(map[string]bool)
	for _, currency := range currencies {
		raw, err := s.source.GetTransactionHistory(ctx, account.WalletAddress, account.Blockchain, domain.HistoryOptions{
			Currency:  currency,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			Limit:     limit,
		})
		if err != nil {
			logger.ErrorCtx(ctx, err, zap.String("currency", currency))
			result.Errors = append(result.Errors, fmt.Sprintf("failed to fetch %s history: %v", currency, err))
			return result, nil
		}

		out, err := s.normalizer.Normalize(ctx, normalizer.Input{
			Account:        *account,
			Address:        account.WalletAddress,
			Blockchain:     account.Blockchain,
			Currency:       currency,
			Raw:            raw,
			OpeningBalance: opening,
			ImportID:       result.ImportID,
		})
		if err != nil {
			logger.ErrorCtx(ctx, err, zap.String("currency", currency))
			result.Errors = append(result.Errors, fmt.Sprintf("failed to normalize %s history: %v", currency, err))
			return result, nil
		}

		for _, w := range out.Warnings {
			logger.WarnCtx(ctx, "Import warning",
				zap.String("currency", currency),
				zap.String("code", string(w.Code)),
				zap.String("txHash", w.TxHash),
				zap.String("message", w.Message),
			)
		}
		result.Warnings = append(result.Warnings, out.Warnings...)
		if out.Reconciliation != nil {
			result.Reconciliation = append(result.Reconciliation, out.Reconciliation)
		}

		for _, tx := range out.Transactions {
			if seen[tx.ID] {
				continue
			}
			seen[tx.ID] = true
			rows = append(rows, tx)
		}
	}

	appended, err := s.store.AppendTransactions(ctx, rows, req.OverwriteDuplicates)
	if err != nil {
		logger.ErrorCtx(ctx, err)
		result.Errors = append(result.Errors, fmt.Sprintf("failed to store transactions: %v", err))
		return result, nil
	}

	result.Success = true
	result.ImportedTransactions = appended.Inserted
	result.DuplicateTransactions = appended.Duplicates
	s.invalidate()

	logger.InfoCtx(ctx, "Imported wallet",
		zap.String("walletID", account.ID),
		zap.Int("imported", result.ImportedTransactions),
		zap.Int("duplicates", result.DuplicateTransactions),
		zap.Int("warnings", len(result.Warnings)),
	)

	return result, nil
}

// openingBalance is the wallet's initial balance when it is held in the native currency
func (s *service) openingBalance(ctx context.Context, account domain.Account) (decimal.Decimal, error) {
	initial, err := s.store.GetInitialBalance(ctx, account.Key())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load initial balance: %w", err)
	}
	if initial == nil || !account.Blockchain.IsNativeCurrency(initial.Currency) {
		return decimal.Zero, nil
	}
	return initial.Amount, nil
}

func (s *service) SetInitialBalance(ctx context.Context, req InitialBalanceRequest) (*domain.InitialBalance, error) {
	if req.AccountID == "" {
		return nil, fmt.Errorf("%w: account_id is required", domain.ErrInvalidInput)
	}
	if !req.AccountType.Valid() {
		return nil, fmt.Errorf("%w: account_type must be bank or wallet", domain.ErrInvalidInput)
	}
	if req.Amount.IsNegative() && !req.AllowNegative {
		return nil, fmt.Errorf("%w: amount must not be negative", domain.ErrInvalidInput)
	}

	key := domain.AccountKey{AccountID: req.AccountID, AccountType: req.AccountType}
	account, err := s.store.GetAccount(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrAccountNotFound, req.AccountType, req.AccountID)
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = strings.ToUpper(account.Currency)
	}
	if currency == "" {
		return nil, fmt.Errorf("%w: currency is required", domain.ErrInvalidInput)
	}

	notes := req.Notes
	if notes != nil && strings.TrimSpace(*notes) == "" {
		notes = nil
	}

	saved, err := s.store.UpsertInitialBalance(ctx, domain.InitialBalance{
		AccountID:   account.ID,
		AccountType: account.Type,
		CompanyID:   account.CompanyID,
		Amount:      req.Amount,
		Currency:    currency,
		Notes:       notes,
	}, req.Overwrite)
	if err != nil {
		if errors.Is(err, domain.ErrInitialBalanceExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save initial balance: %w", err)
	}
	s.invalidate()

	logger.InfoCtx(ctx, "Saved initial balance",
		zap.String("accountID", account.ID),
		zap.String("accountType", string(account.Type)),
		zap.String("amount", saved.Amount.String()),
		zap.String("currency", saved.Currency),
		zap.Bool("overwrite", req.Overwrite),
	)

	return saved, nil
}

func (s *service) invalidate() {
	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}
}

func validateRequest(req Request) error {
	if strings.TrimSpace(req.WalletID) == "" {
		return fmt.Errorf("%w: wallet id is required", domain.ErrInvalidInput)
	}
	if req.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}
	if req.StartDate != nil && req.EndDate != nil && req.StartDate.After(*req.EndDate) {
		return fmt.Errorf("%w: start date is after end date", domain.ErrInvalidInput)
	}
	return nil
}

// requestedCurrencies returns the upper-cased, de-duplicated currencies to import.
// The native currency goes first so fee rows are attributed before token scopes.
func requestedCurrencies(requested []string, account domain.Account) []string {
	if len(requested) == 0 {
		requested = account.SupportedCurrencies()
	}
	if len(requested) == 0 {
		requested = []string{account.Blockchain.NativeCurrency()}
	}

	var native string
	var tokens []string
	seen := make(map[string]bool)
	for _, c := range requested {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		if account.Blockchain.IsNativeCurrency(c) {
			native = c
			continue
		}
		tokens = append(tokens, c)
	}

	if native == "" {
		return tokens
	}
	return append([]string{native}, tokens...)
}
