package tezos

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-balance/internal/adapter"
	"github.com/feral-file/ff-balance/internal/chain"
	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/logger"
	"github.com/feral-file/ff-balance/internal/ratelimit"
)

const (
	PROVIDER_NAME = "tzkt"

	// MAX_PAGE_SIZE is the largest page TzKT serves
	MAX_PAGE_SIZE = 10_000

	TEZ_DECIMALS = 6

	statusApplied = "applied"
)

// TzKTAccount is an address reference in TzKT responses
type TzKTAccount struct {
	Address string `json:"address"`
}

// TzKTParameter is the contract call parameter of a transaction
type TzKTParameter struct {
	Entrypoint string `json:"entrypoint"`
}

// TzKTTransaction represents a transaction operation from the TzKT API
type TzKTTransaction struct {
	ID            uint64         `json:"id"`
	Hash          string         `json:"hash"`
	Level         uint64         `json:"level"`
	Block         string         `json:"block"`
	Timestamp     time.Time      `json:"timestamp"`
	Nonce         *int64         `json:"nonce"`
	Initiator     *TzKTAccount   `json:"initiator"`
	Sender        *TzKTAccount   `json:"sender"`
	Target        *TzKTAccount   `json:"target"`
	Amount        int64          `json:"amount"`
	GasUsed       uint64         `json:"gasUsed"`
	BakerFee      int64          `json:"bakerFee"`
	StorageFee    int64          `json:"storageFee"`
	AllocationFee int64          `json:"allocationFee"`
	Status        string         `json:"status"`
	Parameter     *TzKTParameter `json:"parameter"`
}

// TzKTTokenMetadata carries the token symbol and precision
type TzKTTokenMetadata struct {
	Symbol   string `json:"symbol"`
	Decimals string `json:"decimals"`
}

// TzKTToken identifies a FA1.2/FA2 token
type TzKTToken struct {
	Contract TzKTAccount        `json:"contract"`
	TokenID  string             `json:"tokenId"`
	Standard string             `json:"standard"`
	Metadata *TzKTTokenMetadata `json:"metadata"`
}

// TzKTTokenTransfer represents a token transfer from the TzKT API
type TzKTTokenTransfer struct {
	ID            uint64       `json:"id"`
	Level         uint64       `json:"level"`
	Timestamp     time.Time    `json:"timestamp"`
	Token         TzKTToken    `json:"token"`
	From          *TzKTAccount `json:"from"`
	To            *TzKTAccount `json:"to"`
	Amount        string       `json:"amount"`
	TransactionID *uint64      `json:"transactionId"`
}

// TzKTClient defines an interface for TzKT API client operations
type TzKTClient interface {
	chain.Provider

	// GetTransactionByID retrieves a transaction by its TzKT operation ID
	GetTransactionByID(ctx context.Context, txID uint64) (*TzKTTransaction, error)
}

// tzktClient is the concrete implementation of TzKTClient
type tzktClient struct {
	baseURL        string
	httpClient     adapter.HTTPClient
	rateLimitProxy ratelimit.Proxy
}

// NewTzKTClient creates a new TzKT API client
func NewTzKTClient(baseURL string, httpClient adapter.HTTPClient, rateLimitProxy ratelimit.Proxy) TzKTClient {
	return &tzktClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     httpClient,
		rateLimitProxy: rateLimitProxy,
	}
}

// Blockchain implements chain.Provider
func (c *tzktClient) Blockchain() domain.Blockchain {
	return domain.BlockchainTezos
}

// GetTransactionByID retrieves a transaction by its TzKT transaction ID
func (c *tzktClient) GetTransactionByID(ctx context.Context, txID uint64) (*TzKTTransaction, error) {
	url := fmt.Sprintf("%s/v1/operations/transactions/%d", c.baseURL, txID)

	var tx TzKTTransaction
	if err := c.get(ctx, url, &tx); err != nil {
		return nil, fmt.Errorf("failed to get transaction %d: %w", txID, err)
	}

	return &tx, nil
}

// GetTransactionHistory returns XTZ transactions and token transfers touching address
func (c *tzktClient) GetTransactionHistory(ctx context.Context, address string, opts domain.HistoryOptions) ([]domain.RawChainTransaction, error) {
	if !domain.IsValidAddress(domain.BlockchainTezos, address) {
		return nil, fmt.Errorf("%w: invalid tezos address %s", domain.ErrInvalidInput, address)
	}

	currency := strings.ToUpper(strings.TrimSpace(opts.Currency))
	wantNative := currency == "" || domain.BlockchainTezos.IsNativeCurrency(currency)
	wantTokens := currency == "" || !wantNative

	var result []domain.RawChainTransaction

	if wantNative {
		params := historyParams(opts)
		params.Set("anyof.sender.target.initiator", address)

		var txs []TzKTTransaction
		if err := c.get(ctx, fmt.Sprintf("%s/v1/operations/transactions?%s", c.baseURL, params.Encode()), &txs); err != nil {
			return nil, fmt.Errorf("failed to get transactions of %s: %w", address, err)
		}
		for _, tx := range txs {
			result = append(result, toRawTransaction(tx))
		}
	}

	if wantTokens {
		params := historyParams(opts)
		params.Set("anyof.from.to", address)

		var transfers []TzKTTokenTransfer
		if err := c.get(ctx, fmt.Sprintf("%s/v1/tokens/transfers?%s", c.baseURL, params.Encode()), &transfers); err != nil {
			return nil, fmt.Errorf("failed to get token transfers of %s: %w", address, err)
		}

		// Transfers only reference their operation by id
		hashes := make(map[uint64]string)
		for _, transfer := range transfers {
			tx, ok, err := c.toRawTokenTransfer(ctx, transfer, hashes)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if currency != "" && tx.Currency != currency {
				continue
			}
			result = append(result, tx)
		}
	}

	logger.DebugCtx(ctx, "Fetched TzKT history",
		zap.String("address", address),
		zap.String("currency", currency),
		zap.Int("count", len(result)),
	)

	return result, nil
}

// GetNativeBalance returns the current XTZ balance
func (c *tzktClient) GetNativeBalance(ctx context.Context, address string) (*domain.LiveBalance, error) {
	url := fmt.Sprintf("%s/v1/accounts/%s/balance", c.baseURL, address)

	var mutez int64
	if err := c.get(ctx, url, &mutez); err != nil {
		return nil, fmt.Errorf("failed to get balance of %s: %w", address, err)
	}

	return &domain.LiveBalance{
		Address:  address,
		Currency: domain.NATIVE_CURRENCY_XTZ,
		Balance:  decimal.New(mutez, -TEZ_DECIMALS),
		IsLive:   true,
		Source:   PROVIDER_NAME,
	}, nil
}

func (c *tzktClient) get(ctx context.Context, url string, result interface{}) error {
	_, err := ratelimit.Request(ctx, c.rateLimitProxy, PROVIDER_NAME, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.httpClient.Get(ctx, url, result)
	})
	return err
}

func (c *tzktClient) toRawTokenTransfer(ctx context.Context, transfer TzKTTokenTransfer, hashes map[uint64]string) (domain.RawChainTransaction, bool, error) {
	if transfer.Token.Metadata == nil || transfer.Token.Metadata.Symbol == "" {
		// Tokens without a symbol are collectibles, not currencies
		return domain.RawChainTransaction{}, false, nil
	}

	decimals, err := strconv.ParseInt(transfer.Token.Metadata.Decimals, 10, 32)
	if err != nil {
		decimals = 0
	}
	amount, err := decimal.NewFromString(transfer.Amount)
	if err != nil {
		return domain.RawChainTransaction{}, false, fmt.Errorf("invalid token amount %q in transfer %d: %w", transfer.Amount, transfer.ID, err)
	}

	tx := domain.RawChainTransaction{
		Hash:         fmt.Sprintf("transfer-%d", transfer.ID),
		Amount:       amount.Shift(-int32(decimals)),
		Currency:     strings.ToUpper(transfer.Token.Metadata.Symbol),
		Timestamp:    transfer.Timestamp.UTC(),
		Status:       domain.RawTxStatusSuccess,
		TokenType:    tokenType(transfer.Token.Standard),
		ContractAddr: transfer.Token.Contract.Address,
		BlockNumber:  transfer.Level,
		GasFee:       decimal.Zero,
	}
	if transfer.From != nil {
		tx.From = transfer.From.Address
	}
	if transfer.To != nil {
		tx.To = transfer.To.Address
	}

	if transfer.TransactionID != nil {
		id := *transfer.TransactionID
		hash, ok := hashes[id]
		if !ok {
			op, err := c.GetTransactionByID(ctx, id)
			if err != nil {
				return domain.RawChainTransaction{}, false, err
			}
			hash = op.Hash
			hashes[id] = hash
		}
		tx.Hash = hash
		tx.LogIndex = int(transfer.ID)
	}

	return tx, true, nil
}

func toRawTransaction(tx TzKTTransaction) domain.RawChainTransaction {
	raw := domain.RawChainTransaction{
		Hash:           tx.Hash,
		Amount:         decimal.New(tx.Amount, -TEZ_DECIMALS),
		Currency:       domain.NATIVE_CURRENCY_XTZ,
		Timestamp:      tx.Timestamp.UTC(),
		GasUsed:        tx.GasUsed,
		GasFee:         decimal.New(tx.BakerFee+tx.StorageFee+tx.AllocationFee, -TEZ_DECIMALS),
		Status:         tx.Status,
		IsInternal:     tx.Nonce != nil,
		IsContractCall: tx.Parameter != nil,
		TokenType:      domain.TokenTypeNative,
		BlockNumber:    tx.Level,
		// Operations of a batch share their hash, the operation id tells them apart
		LogIndex:       int(tx.ID),
	}
	if tx.Status == statusApplied {
		raw.Status = domain.RawTxStatusSuccess
	}
	if tx.Sender != nil {
		raw.From = tx.Sender.Address
	}
	if tx.Target != nil {
		raw.To = tx.Target.Address
	}
	return raw
}

func historyParams(opts domain.HistoryOptions) url.Values {
	limit := opts.Limit
	if limit <= 0 || limit > MAX_PAGE_SIZE {
		limit = MAX_PAGE_SIZE
	}

	params := url.Values{
		"limit":    {strconv.Itoa(limit)},
		"sort.asc": {"id"},
	}
	if opts.StartDate != nil {
		params.Set("timestamp.ge", opts.StartDate.UTC().Format(time.RFC3339))
	}
	if opts.EndDate != nil {
		params.Set("timestamp.le", opts.EndDate.UTC().Format(time.RFC3339))
	}
	return params
}

func tokenType(standard string) domain.TokenType {
	if standard == "fa1.2" {
		return domain.TokenTypeFA12
	}
	return domain.TokenTypeFA2
}
