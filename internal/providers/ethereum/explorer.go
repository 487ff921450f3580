package ethereum

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-balance/internal/adapter"
	"github.com/feral-file/ff-balance/internal/chain"
	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/logger"
	"github.com/feral-file/ff-balance/internal/ratelimit"
)

const (
	PROVIDER_NAME = "etherscan"

	// MAX_PAGE_SIZE is the largest page the explorer serves
	MAX_PAGE_SIZE = 10_000

	ETHER_DECIMALS = 18

	actionTxList         = "txlist"
	actionTxListInternal = "txlistinternal"
	actionTokenTx        = "tokentx"
	actionBalance        = "balance"
	actionBlockByTime    = "getblocknobytime"

	// LATEST_BLOCK is the open upper bound of a block range
	LATEST_BLOCK = 99999999

	noTransactionsFound = "No transactions found"
)

// ExplorerResponse is the envelope of every Etherscan-compatible account endpoint.
// Result is an array on success and an error string otherwise.
type ExplorerResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// ExplorerTransaction is a row of txlist, txlistinternal or tokentx
type ExplorerTransaction struct {
	BlockNumber       string `json:"blockNumber"`
	TimeStamp         string `json:"timeStamp"`
	Hash              string `json:"hash"`
	From              string `json:"from"`
	To                string `json:"to"`
	Value             string `json:"value"`
	ContractAddress   string `json:"contractAddress"`
	Input             string `json:"input"`
	GasPrice          string `json:"gasPrice"`
	GasUsed           string `json:"gasUsed"`
	IsError           string `json:"isError"`
	TxReceiptStatus   string `json:"txreceipt_status"`
	TokenSymbol       string `json:"tokenSymbol"`
	TokenDecimal      string `json:"tokenDecimal"`
	LogIndex          string `json:"logIndex"`
	TraceID           string `json:"traceId"`
	TransactionIndex  string `json:"transactionIndex"`
	CumulativeGasUsed string `json:"cumulativeGasUsed"`
}

// explorerClient serves Ethereum history and balances from an Etherscan v2 compatible API
type explorerClient struct {
	httpClient     adapter.HTTPClient
	rateLimitProxy ratelimit.Proxy
	json           adapter.JSON
	apiURL         string
	apiKey         string
	chainID        int64
	pageSize       int
}

// ExplorerOption configures an explorer client
type ExplorerOption func(*explorerClient)

// WithPageSize sets the number of rows requested per page, capped at MAX_PAGE_SIZE
func WithPageSize(size int) ExplorerOption {
	return func(c *explorerClient) {
		if size > 0 && size <= MAX_PAGE_SIZE {
			c.pageSize = size
		}
	}
}

// NewExplorerClient creates a new explorer backed chain provider
func NewExplorerClient(httpClient adapter.HTTPClient, rateLimitProxy ratelimit.Proxy, json adapter.JSON, apiURL string, apiKey string, chainID int64, opts ...ExplorerOption) chain.Provider {
	c := &explorerClient{
		httpClient:     httpClient,
		rateLimitProxy: rateLimitProxy,
		json:           json,
		apiURL:         strings.TrimRight(apiURL, "/"),
		apiKey:         apiKey,
		chainID:        chainID,
		pageSize:       MAX_PAGE_SIZE,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// blockRange is an inclusive range of block numbers
type blockRange struct {
	start uint64
	end   uint64
}

// Blockchain implements chain.Provider
func (c *explorerClient) Blockchain() domain.Blockchain {
	return domain.BlockchainEthereum
}

// GetTransactionHistory returns native, internal and ERC20 transfers touching address.
// A token scope skips native transfers. The native scope keeps every token transfer
// so the gas of token transfers missing their native transaction can be recovered.
// The date window is resolved to a block range and each list is paged through it.
func (c *explorerClient) GetTransactionHistory(ctx context.Context, address string, opts domain.HistoryOptions) ([]domain.RawChainTransaction, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: invalid ethereum address %s", domain.ErrInvalidInput, address)
	}

	currency := strings.ToUpper(strings.TrimSpace(opts.Currency))
	wantNative := currency == "" || domain.BlockchainEthereum.IsNativeCurrency(currency)

	blocks, err := c.resolveBlockRange(ctx, opts.StartDate, opts.EndDate)
	if err != nil {
		return nil, err
	}
	if blocks.start > blocks.end {
		return nil, nil
	}

	var result []domain.RawChainTransaction

	if wantNative {
		rows, err := c.listTransactions(ctx, actionTxList, address, blocks, opts.Limit)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			tx, err := c.toRawTransaction(row, actionTxList)
			if err != nil {
				return nil, err
			}
			result = append(result, tx)
		}

		rows, err = c.listTransactions(ctx, actionTxListInternal, address, blocks, opts.Limit)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			tx, err := c.toRawTransaction(row, actionTxListInternal)
			if err != nil {
				return nil, err
			}
			result = append(result, tx)
		}
	}

	tokenRows, err := c.listTransactions(ctx, actionTokenTx, address, blocks, opts.Limit)
	if err != nil {
		return nil, err
	}
	for _, row := range tokenRows {
		if !wantNative && !strings.EqualFold(row.TokenSymbol, currency) {
			continue
		}
		tx, err := c.toRawTransaction(row, actionTokenTx)
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}

	filtered := result[:0]
	for _, tx := range result {
		if opts.StartDate != nil && tx.Timestamp.Before(*opts.StartDate) {
			continue
		}
		if opts.EndDate != nil && tx.Timestamp.After(*opts.EndDate) {
			continue
		}
		filtered = append(filtered, tx)
	}

	logger.DebugCtx(ctx, "Fetched explorer history",
		zap.String("address", address),
		zap.String("currency", currency),
		zap.Int("count", len(filtered)),
	)

	return filtered, nil
}

// GetNativeBalance returns the latest ETH balance.
// An API level rejection yields a non-live balance rather than an error.
func (c *explorerClient) GetNativeBalance(ctx context.Context, address string) (*domain.LiveBalance, error) {
	resp, err := c.call(ctx, url.Values{
		"module":  {"account"},
		"action":  {actionBalance},
		"address": {address},
		"tag":     {"latest"},
	})
	if err != nil {
		return nil, err
	}

	balance := &domain.LiveBalance{
		Address:  address,
		Currency: domain.NATIVE_CURRENCY_ETH,
		Source:   PROVIDER_NAME,
	}

	var wei string
	if err := c.json.Unmarshal(resp.Result, &wei); err != nil {
		return nil, fmt.Errorf("failed to unmarshal balance result: %w", err)
	}

	if resp.Status != "1" {
		balance.Error = fmt.Sprintf("%s: %s", resp.Message, wei)
		return balance, nil
	}

	amount, err := toUnits(wei, ETHER_DECIMALS)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance %q: %w", wei, err)
	}
	balance.Balance = amount
	balance.IsLive = true

	return balance, nil
}

// resolveBlockRange maps the date window onto block numbers.
// A bound the explorer cannot resolve stays open and is left to the timestamp filter.
func (c *explorerClient) resolveBlockRange(ctx context.Context, start, end *time.Time) (blockRange, error) {
	blocks := blockRange{start: 0, end: LATEST_BLOCK}

	if start != nil {
		block, ok, err := c.blockByTime(ctx, *start, "after")
		if err != nil {
			return blocks, err
		}
		if ok {
			blocks.start = block
		}
	}
	if end != nil {
		block, ok, err := c.blockByTime(ctx, *end, "before")
		if err != nil {
			return blocks, err
		}
		if ok {
			blocks.end = block
		}
	}

	return blocks, nil
}

func (c *explorerClient) blockByTime(ctx context.Context, t time.Time, closest string) (uint64, bool, error) {
	resp, err := c.call(ctx, url.Values{
		"module":    {"block"},
		"action":    {actionBlockByTime},
		"timestamp": {strconv.FormatInt(t.Unix(), 10)},
		"closest":   {closest},
	})
	if err != nil {
		return 0, false, err
	}

	var result string
	if err := c.json.Unmarshal(resp.Result, &result); err != nil {
		return 0, false, fmt.Errorf("failed to unmarshal %s result: %w", actionBlockByTime, err)
	}
	if resp.Status != "1" {
		logger.WarnCtx(ctx, "Explorer could not resolve block by time",
			zap.Time("time", t),
			zap.String("closest", closest),
			zap.String("reason", result),
		)
		return 0, false, nil
	}

	block, err := strconv.ParseUint(result, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid block number %q: %w", result, err)
	}
	return block, true, nil
}

// listTransactions pages through the block range in ascending order. Each page
// restarts at the last block seen, so rows of that block are fetched twice and
// collapsed by rowKey.
func (c *explorerClient) listTransactions(ctx context.Context, action string, address string, blocks blockRange, limit int) ([]ExplorerTransaction, error) {
	if limit <= 0 {
		limit = MAX_PAGE_SIZE
	}
	pageSize := min(c.pageSize, limit)

	var out []ExplorerTransaction
	seen := make(map[string]bool)
	from := blocks.start
	for len(out) < limit {
		rows, err := c.listPage(ctx, action, address, blockRange{start: from, end: blocks.end}, pageSize)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			key := rowKey(row)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, row)
		}

		if len(rows) < pageSize {
			break
		}
		next := parseUint(rows[len(rows)-1].BlockNumber)
		if next <= from {
			return nil, fmt.Errorf("explorer %s: block %d holds more than %d transactions of %s", action, next, pageSize, address)
		}
		from = next
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *explorerClient) listPage(ctx context.Context, action string, address string, blocks blockRange, pageSize int) ([]ExplorerTransaction, error) {
	resp, err := c.call(ctx, url.Values{
		"module":     {"account"},
		"action":     {action},
		"address":    {address},
		"startblock": {strconv.FormatUint(blocks.start, 10)},
		"endblock":   {strconv.FormatUint(blocks.end, 10)},
		"page":       {"1"},
		"offset":     {strconv.Itoa(pageSize)},
		"sort":       {"asc"},
	})
	if err != nil {
		return nil, err
	}

	if resp.Status != "1" {
		if resp.Message == noTransactionsFound {
			return nil, nil
		}
		var reason string
		_ = c.json.Unmarshal(resp.Result, &reason)
		return nil, fmt.Errorf("explorer %s failed: %s: %s", action, resp.Message, reason)
	}

	var rows []ExplorerTransaction
	if err := c.json.Unmarshal(resp.Result, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s result: %w", action, err)
	}

	return rows, nil
}

func rowKey(row ExplorerTransaction) string {
	return strings.Join([]string{
		strings.ToLower(row.Hash),
		row.LogIndex,
		row.TraceID,
		strings.ToLower(row.From),
		strings.ToLower(row.To),
		row.Value,
		strings.ToLower(row.ContractAddress),
	}, "|")
}

func (c *explorerClient) call(ctx context.Context, params url.Values) (*ExplorerResponse, error) {
	params.Set("chainid", strconv.FormatInt(c.chainID, 10))
	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}
	endpoint := fmt.Sprintf("%s?%s", c.apiURL, params.Encode())

	resp, err := ratelimit.Request(ctx, c.rateLimitProxy, PROVIDER_NAME, func(ctx context.Context) (*ExplorerResponse, error) {
		var resp ExplorerResponse
		if err := c.httpClient.Get(ctx, endpoint, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call explorer API: %w", err)
	}

	return resp, nil
}

func (c *explorerClient) toRawTransaction(row ExplorerTransaction, action string) (domain.RawChainTransaction, error) {
	ts, err := strconv.ParseInt(row.TimeStamp, 10, 64)
	if err != nil {
		return domain.RawChainTransaction{}, fmt.Errorf("invalid timestamp %q for %s: %w", row.TimeStamp, row.Hash, err)
	}

	tx := domain.RawChainTransaction{
		Hash:        strings.ToLower(row.Hash),
		From:        strings.ToLower(row.From),
		To:          strings.ToLower(row.To),
		Timestamp:   time.Unix(ts, 0).UTC(),
		Status:      domain.RawTxStatusSuccess,
		BlockNumber: parseUint(row.BlockNumber),
		GasUsed:     parseUint(row.GasUsed),
		LogIndex:    int(parseUint(row.LogIndex)),
		GasFee:      decimal.Zero,
	}

	if row.IsError == "1" || row.TxReceiptStatus == "0" {
		tx.Status = "failed"
	}

	switch action {
	case actionTxList:
		tx.Currency = domain.NATIVE_CURRENCY_ETH
		tx.TokenType = domain.TokenTypeNative
		tx.IsContractCall = row.Input != "" && row.Input != "0x"
		if tx.To == "" {
			// Contract creation
			tx.To = strings.ToLower(row.ContractAddress)
		}
		if tx.Amount, err = toUnits(row.Value, ETHER_DECIMALS); err != nil {
			return tx, fmt.Errorf("invalid value for %s: %w", row.Hash, err)
		}
		if tx.GasFee, err = gasFee(row.GasUsed, row.GasPrice); err != nil {
			return tx, fmt.Errorf("invalid gas for %s: %w", row.Hash, err)
		}

	case actionTxListInternal:
		// Gas of internal transfers is paid by the outer transaction
		tx.Currency = domain.NATIVE_CURRENCY_ETH
		tx.TokenType = domain.TokenTypeNative
		tx.IsInternal = true
		if tx.To == "" {
			tx.To = strings.ToLower(row.ContractAddress)
		}
		if tx.Amount, err = toUnits(row.Value, ETHER_DECIMALS); err != nil {
			return tx, fmt.Errorf("invalid value for %s: %w", row.Hash, err)
		}

	case actionTokenTx:
		decimals, err := strconv.ParseInt(row.TokenDecimal, 10, 32)
		if err != nil {
			decimals = 0
		}
		tx.Currency = strings.ToUpper(row.TokenSymbol)
		tx.TokenType = domain.TokenTypeERC20
		tx.ContractAddr = strings.ToLower(row.ContractAddress)
		if tx.Amount, err = toUnits(row.Value, int32(decimals)); err != nil {
			return tx, fmt.Errorf("invalid token value for %s: %w", row.Hash, err)
		}
		if tx.GasFee, err = gasFee(row.GasUsed, row.GasPrice); err != nil {
			return tx, fmt.Errorf("invalid gas for %s: %w", row.Hash, err)
		}
	}

	return tx, nil
}

// toUnits converts an integer amount of base units into whole units
func toUnits(value string, decimals int32) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Shift(-decimals), nil
}

// gasFee returns gasUsed * gasPrice in ETH
func gasFee(gasUsed, gasPrice string) (decimal.Decimal, error) {
	if gasUsed == "" || gasPrice == "" {
		return decimal.Zero, nil
	}
	used, err := decimal.NewFromString(gasUsed)
	if err != nil {
		return decimal.Zero, err
	}
	price, err := decimal.NewFromString(gasPrice)
	if err != nil {
		return decimal.Zero, err
	}
	return used.Mul(price).Shift(-ETHER_DECIMALS), nil
}

func parseUint(s string) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
