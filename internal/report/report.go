package report

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-balance/internal/adapter"
	"github.com/feral-file/ff-balance/internal/balance"
	"github.com/feral-file/ff-balance/internal/cache"
	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/ledger"
	"github.com/feral-file/ff-balance/internal/logger"
	"github.com/feral-file/ff-balance/internal/store"
)

const (
	// DEFAULT_CACHE_TTL is how long a computed report is served from cache
	DEFAULT_CACHE_TTL = 30 * time.Second

	cacheKeyPrefix = "balances:"
)

// Config holds the report service configuration
type Config struct {
	// CacheTTL is how long a computed report is served from cache
	CacheTTL time.Duration
	// WorkerPoolSize bounds the concurrent per-account transaction fetches
	WorkerPoolSize int
	// WorkerQueueSize bounds the fetches waiting for a worker
	WorkerQueueSize int
}

// Params are the inputs of a balance report. Equal params share a cache entry.
type Params struct {
	CompanyID string            `json:"company_id,omitempty"`
	Period    ledger.PeriodSpec `json:"period"`
	Filters   balance.Filters   `json:"filters"`
	Sort      balance.Sort      `json:"sort"`
}

// Response is a computed balance report
type Response struct {
	Data         []balance.ListItem `json:"data"`
	Summary      balance.Summary    `json:"summary"`
	Filters      Params             `json:"filters"`
	Window       ledger.Window      `json:"window"`
	ResponseTime time.Duration      `json:"-"`
	Cached       bool               `json:"cached"`
	Warnings     []balance.Warning  `json:"warnings,omitempty"`
	GeneratedAt  time.Time          `json:"generated_at"`
}

// Service computes balance reports over the stored ledger
//
//go:generate mockgen -source=report.go -destination=../mocks/report.go -package=mocks -mock_names=Service=MockReportService
type Service interface {
	// GetBalances returns the balance report for params, served from cache when fresh
	GetBalances(ctx context.Context, params Params) (*Response, error)

	// Invalidate drops every cached report; called after ledger writes
	Invalidate()

	// Close stops the worker pool
	Close()
}

type service struct {
	store store.Store
	cache cache.Cache
	clock adapter.Clock
	json  adapter.JSON
	ttl   time.Duration
	pool  pond.ResultPool[[]domain.Transaction]
}

// NewService creates a report service
func NewService(cfg Config, st store.Store, c cache.Cache, clock adapter.Clock, json adapter.JSON) Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DEFAULT_CACHE_TTL
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 8
	}

	opts := []pond.Option{}
	if cfg.WorkerQueueSize > 0 {
		opts = append(opts, pond.WithQueueSize(cfg.WorkerQueueSize))
	}

	return &service{
		store: st,
		cache: c,
		clock: clock,
		json:  json,
		ttl:   cfg.CacheTTL,
		pool:  pond.NewResultPool[[]domain.Transaction](cfg.WorkerPoolSize, opts...),
	}
}

// CacheKey returns the canonical cache key of params
func CacheKey(json adapter.JSON, params Params) (string, error) {
	canonical, err := json.MarshalCanonical(params)
	if err != nil {
		return "", fmt.Errorf("failed to build cache key: %w", err)
	}
	return cacheKeyPrefix + string(canonical), nil
}

func (s *service) GetBalances(ctx context.Context, params Params) (*Response, error) {
	started := s.clock.Now()

	key, err := CacheKey(s.json, params)
	if err != nil {
		return nil, err
	}

	if v, ok := s.cache.Get(key); ok {
		if cached, ok := v.(*Response); ok {
			resp := cached.clone()
			resp.Cached = true
			resp.ResponseTime = s.clock.Since(started)
			logger.DebugCtx(ctx, "Serving balance report from cache", zap.String("key", key))
			return resp, nil
		}
	}

	now := s.clock.Now()
	window, err := ledger.ResolvePeriod(params.Period, now)
	if err != nil {
		return nil, err
	}

	accounts, err := s.store.ListAccounts(ctx, store.AccountFilter{CompanyID: params.CompanyID})
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	companies, err := s.store.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load companies: %w", err)
	}
	initialBalances, err := s.store.ListInitialBalances(ctx, params.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial balances: %w", err)
	}

	transactions, err := s.fetchTransactions(ctx, accounts, window)
	if err != nil {
		return nil, err
	}

	report, err := balance.Compute(balance.ComputeInput{
		Accounts:        accounts,
		Companies:       companies,
		InitialBalances: initialBalances,
		Transactions:    transactions,
		Period:          params.Period,
		Now:             now,
		Filters:         params.Filters,
		Sort:            params.Sort,
	})
	if err != nil {
		return nil, err
	}

	for _, w := range report.Warnings {
		logger.WarnCtx(ctx, "Balance data integrity warning",
			zap.String("code", string(w.Code)),
			zap.String("accountID", w.AccountID),
			zap.String("transactionID", w.TransactionID),
			zap.String("message", w.Message),
		)
	}

	resp := &Response{
		Data:        report.Items,
		Summary:     report.Summary,
		Filters:     params,
		Window:      report.Window,
		Warnings:    report.Warnings,
		GeneratedAt: now,
	}
	s.cache.Set(key, resp, s.ttl)

	out := resp.clone()
	out.ResponseTime = s.clock.Since(started)

	logger.InfoCtx(ctx, "Computed balance report",
		zap.Int("accounts", len(accounts)),
		zap.Int("transactions", len(transactions)),
		zap.Int("items", len(report.Items)),
		zap.Duration("duration", out.ResponseTime),
	)

	return out, nil
}

// clone copies the slices and maps of r so callers never share state with the cache
func (r *Response) clone() *Response {
	out := *r
	out.Data = slices.Clone(r.Data)
	for i := range out.Data {
		out.Data[i].ByCurrency = maps.Clone(r.Data[i].ByCurrency)
		if r.Data[i].Company != nil {
			company := *r.Data[i].Company
			out.Data[i].Company = &company
		}
	}
	out.Summary.CurrencyBreakdown = maps.Clone(r.Summary.CurrencyBreakdown)
	out.Warnings = slices.Clone(r.Warnings)
	return &out
}

// fetchTransactions loads the transactions of every account through the worker pool.
// Results keep account order so the computation stays deterministic.
func (s *service) fetchTransactions(ctx context.Context, accounts []domain.Account, window ledger.Window) ([]domain.Transaction, error) {
	if len(accounts) == 0 {
		return nil, nil
	}

	group := s.pool.NewGroupContext(ctx)
	for _, acc := range accounts {
		key := acc.Key()
		group.SubmitErr(func() ([]domain.Transaction, error) {
			txs, err := s.store.ListTransactions(ctx, store.TransactionFilter{
				Account:   &key,
				DateRange: window.DateRange(),
			})
			if err != nil {
				return nil, fmt.Errorf("failed to load transactions of %s account %s: %w", key.AccountType, key.AccountID, err)
			}
			return txs, nil
		})
	}

	results, err := group.Wait()
	if err != nil {
		return nil, err
	}

	var transactions []domain.Transaction
	for _, txs := range results {
		transactions = append(transactions, txs...)
	}
	return transactions, nil
}

func (s *service) Invalidate() {
	s.cache.Flush()
}

func (s *service) Close() {
	s.pool.StopAndWait()
}
