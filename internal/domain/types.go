package domain

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Blockchain represents the blockchain name
type Blockchain string

const (
	BlockchainEthereum Blockchain = "ethereum"
	BlockchainTezos    Blockchain = "tezos"
)

// IsValidBlockchain checks if a blockchain is supported
func IsValidBlockchain(blockchain Blockchain) bool {
	return blockchain == BlockchainEthereum || blockchain == BlockchainTezos
}

// NativeCurrency returns the symbol of the blockchain's gas token
func (b Blockchain) NativeCurrency() string {
	switch b {
	case BlockchainEthereum:
		return NATIVE_CURRENCY_ETH
	case BlockchainTezos:
		return NATIVE_CURRENCY_XTZ
	default:
		return ""
	}
}

// IsNativeCurrency reports whether currency is the gas token of the blockchain
func (b Blockchain) IsNativeCurrency(currency string) bool {
	native := b.NativeCurrency()
	return native != "" && strings.EqualFold(native, strings.TrimSpace(currency))
}

// AccountType discriminates the two kinds of ledger accounts
type AccountType string

const (
	AccountTypeBank   AccountType = "bank"
	AccountTypeWallet AccountType = "wallet"
)

// Valid checks if the account type is known
func (t AccountType) Valid() bool {
	return t == AccountTypeBank || t == AccountTypeWallet
}

// WalletType distinguishes crypto wallets from fiat e-money wallets
type WalletType string

const (
	WalletTypeCrypto WalletType = "crypto"
	WalletTypeFiat   WalletType = "fiat"
)

// AccountKey identifies an account across the bank/wallet tables
type AccountKey struct {
	AccountID   string      `json:"account_id"`
	AccountType AccountType `json:"account_type"`
}

// Account is a bank account or a digital wallet
type Account struct {
	ID            string      `json:"id"`
	CompanyID     string      `json:"company_id"`
	Type          AccountType `json:"type"`
	Name          string      `json:"name"`
	AccountNumber string      `json:"account_number,omitempty"`
	Currency      string      `json:"currency"`
	IsActive      bool        `json:"is_active"`

	// Wallet-only fields
	WalletType    WalletType `json:"wallet_type,omitempty"`
	WalletAddress string     `json:"wallet_address,omitempty"`
	Blockchain    Blockchain `json:"blockchain,omitempty"`
	Currencies    string     `json:"currencies,omitempty"` // comma separated list of supported currencies
}

// Key returns the account's (id, type) pair
func (a Account) Key() AccountKey {
	return AccountKey{AccountID: a.ID, AccountType: a.Type}
}

// SupportedCurrencies splits the comma separated currency list.
// The account currency is returned when the list is empty.
func (a Account) SupportedCurrencies() []string {
	var currencies []string
	seen := make(map[string]bool)
	for _, c := range strings.Split(a.Currencies, ",") {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		currencies = append(currencies, c)
	}
	if len(currencies) == 0 && a.Currency != "" {
		currencies = append(currencies, strings.ToUpper(a.Currency))
	}
	return currencies
}

// IsCryptoWallet reports whether the account is an on-chain wallet
func (a Account) IsCryptoWallet() bool {
	return a.Type == AccountTypeWallet && a.WalletType == WalletTypeCrypto && a.WalletAddress != ""
}

// Company is the owning tenant of accounts, used for report labeling only
type Company struct {
	ID          string `json:"id"`
	TradingName string `json:"trading_name"`
	LegalName   string `json:"legal_name,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
}

// InitialBalance is the manually entered zero-point of an account
type InitialBalance struct {
	AccountID   string          `json:"account_id"`
	AccountType AccountType     `json:"account_type"`
	CompanyID   string          `json:"company_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Notes       *string         `json:"notes,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Key returns the account key the balance belongs to
func (b InitialBalance) Key() AccountKey {
	return AccountKey{AccountID: b.AccountID, AccountType: b.AccountType}
}

// NormalizeAddress normalizes a wallet address for comparison.
// Ethereum addresses are lowercased, other chains keep their case.
func NormalizeAddress(blockchain Blockchain, address string) string {
	address = strings.TrimSpace(address)
	if blockchain == BlockchainEthereum || common.IsHexAddress(address) {
		return strings.ToLower(address)
	}
	return address
}

// SameAddress compares two addresses on the given blockchain
func SameAddress(blockchain Blockchain, a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return NormalizeAddress(blockchain, a) == NormalizeAddress(blockchain, b)
}

// IsValidAddress checks if the address is well-formed for the blockchain
func IsValidAddress(blockchain Blockchain, address string) bool {
	switch blockchain {
	case BlockchainEthereum:
		return common.IsHexAddress(address)
	case BlockchainTezos:
		return len(address) == 36 && (strings.HasPrefix(address, "tz") || strings.HasPrefix(address, "KT1"))
	default:
		return false
	}
}
