package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenType represents the asset standard of a raw chain transaction
type TokenType string

const (
	TokenTypeNative  TokenType = "native"
	TokenTypeERC20   TokenType = "erc20"
	TokenTypeERC721  TokenType = "erc721"
	TokenTypeERC1155 TokenType = "erc1155"
	TokenTypeFA12    TokenType = "fa1.2"
	TokenTypeFA2     TokenType = "fa2"
)

// RawTxStatusSuccess is the status of a successfully executed raw transaction
const RawTxStatusSuccess = "success"

// RawChainTransaction is a transaction as reported by a chain explorer.
// Amounts are expressed in whole token units (ETH, not wei).
type RawChainTransaction struct {
	Hash           string          `json:"hash"`
	From           string          `json:"from"`
	To             string          `json:"to"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Timestamp      time.Time       `json:"timestamp"`
	GasUsed        uint64          `json:"gas_used"`
	GasFee         decimal.Decimal `json:"gas_fee"`
	Status         string          `json:"status"`
	IsInternal     bool            `json:"is_internal"`
	IsContractCall bool            `json:"is_contract_call"`
	TokenType      TokenType       `json:"token_type"`
	ContractAddr   string          `json:"contract_address,omitempty"`
	BlockNumber    uint64          `json:"block_number"`
	LogIndex       int             `json:"log_index"`
}

// IsNative reports whether the transaction moves the chain's gas token
func (t RawChainTransaction) IsNative(blockchain Blockchain) bool {
	if t.TokenType != "" && t.TokenType != TokenTypeNative {
		return false
	}
	return blockchain.IsNativeCurrency(t.Currency)
}

// HistoryOptions narrows a transaction history query
type HistoryOptions struct {
	Currency  string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// LiveBalance is an on-chain balance as reported by a chain data source
type LiveBalance struct {
	Address  string          `json:"address"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
	IsLive   bool            `json:"is_live"`
	Source   string          `json:"source"`
	Error    string          `json:"error,omitempty"`
}
