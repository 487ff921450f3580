package registry

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-balance/internal/adapter"
	"github.com/feral-file/ff-balance/internal/domain"
)

const (
	// DefaultHighGasThreshold is the gas usage above which a zero-value token transfer is treated as spam
	DefaultHighGasThreshold uint64 = 100_000
	// DefaultExtremeGasCeiling is the gas usage above which any transaction is treated as spam
	DefaultExtremeGasCeiling uint64 = 10_000_000
)

// SpamPolicy defines the deny-lists and heuristics used to drop spam and phishing transactions
//
//go:generate mockgen -source=spam_policy.go -destination=../mocks/spam_policy.go -package=mocks -mock_names=SpamPolicy=MockSpamPolicy
type SpamPolicy interface {
	// IsPhishingHash checks if a transaction hash is deny-listed
	IsPhishingHash(hash string) bool

	// IsSuspiciousAddress checks if an address ends with a deny-listed suffix
	IsSuspiciousAddress(address string) bool

	// HighGasThreshold returns the gas usage above which a zero-value token transfer is spam
	HighGasThreshold() uint64

	// ExtremeGasCeiling returns the gas usage above which any transaction is spam
	ExtremeGasCeiling() uint64

	// MatchCampaign returns the name of the spam campaign an outgoing transaction belongs to
	MatchCampaign(tx domain.RawChainTransaction, outgoing bool) (string, bool)

	// MatchFeeBackfill checks if a token transfer falls into a known gap of missing fee records
	MatchFeeBackfill(tx domain.RawChainTransaction) bool
}

// SpamPolicyData represents the structure of the spam policy JSON file
type SpamPolicyData struct {
	PhishingHashes            []string          `json:"phishing_hashes"`
	SuspiciousAddressSuffixes []string          `json:"suspicious_address_suffixes"`
	HighGasThreshold          uint64            `json:"high_gas_threshold"`
	ExtremeGasCeiling         uint64            `json:"extreme_gas_ceiling"`
	Campaigns                 []SpamCampaign    `json:"campaigns"`
	FeeBackfills              []FeeBackfillRule `json:"fee_backfills"`
}

// SpamCampaign is the signature of a dated spam campaign: a zero-value outgoing
// transfer of a token with gas usage inside a range during the campaign's active period
type SpamCampaign struct {
	Name     string    `json:"name"`
	Currency string    `json:"currency"`
	MinGas   uint64    `json:"min_gas"`
	MaxGas   uint64    `json:"max_gas"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
}

// FeeBackfillRule describes a historical window during which the upstream explorer
// dropped the native gas transaction of token transfers
type FeeBackfillRule struct {
	Currency   string            `json:"currency"`
	From       time.Time         `json:"from"`
	To         time.Time         `json:"to"`
	FeeAmounts []decimal.Decimal `json:"fee_amounts"`
	Tolerance  decimal.Decimal   `json:"tolerance"`
}

// spamPolicy is the internal implementation of SpamPolicy interface
type spamPolicy struct {
	// Fast lookup map: lowercased hash -> true
	hashes            map[string]bool
	suffixes          []string
	highGasThreshold  uint64
	extremeGasCeiling uint64
	campaigns         []SpamCampaign
	backfills         []FeeBackfillRule
}

// NewSpamPolicy builds a policy from already parsed data.
// Zero thresholds fall back to the defaults.
func NewSpamPolicy(data SpamPolicyData) SpamPolicy {
	p := &spamPolicy{
		hashes:            make(map[string]bool, len(data.PhishingHashes)),
		highGasThreshold:  data.HighGasThreshold,
		extremeGasCeiling: data.ExtremeGasCeiling,
		campaigns:         data.Campaigns,
		backfills:         data.FeeBackfills,
	}
	if p.highGasThreshold == 0 {
		p.highGasThreshold = DefaultHighGasThreshold
	}
	if p.extremeGasCeiling == 0 {
		p.extremeGasCeiling = DefaultExtremeGasCeiling
	}

	for _, h := range data.PhishingHashes {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			p.hashes[h] = true
		}
	}
	for _, s := range data.SuspiciousAddressSuffixes {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			p.suffixes = append(p.suffixes, s)
		}
	}

	return p
}

// DefaultSpamPolicy returns a policy with empty deny-lists and default thresholds
func DefaultSpamPolicy() SpamPolicy {
	return NewSpamPolicy(SpamPolicyData{})
}

func (p *spamPolicy) IsPhishingHash(hash string) bool {
	return p.hashes[strings.ToLower(strings.TrimSpace(hash))]
}

func (p *spamPolicy) IsSuspiciousAddress(address string) bool {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" {
		return false
	}
	for _, s := range p.suffixes {
		if strings.HasSuffix(address, s) {
			return true
		}
	}
	return false
}

func (p *spamPolicy) HighGasThreshold() uint64 {
	return p.highGasThreshold
}

func (p *spamPolicy) ExtremeGasCeiling() uint64 {
	return p.extremeGasCeiling
}

func (p *spamPolicy) MatchCampaign(tx domain.RawChainTransaction, outgoing bool) (string, bool) {
	if !outgoing || !tx.Amount.IsZero() {
		return "", false
	}

	for _, c := range p.campaigns {
		if !strings.EqualFold(c.Currency, tx.Currency) {
			continue
		}
		if tx.GasUsed < c.MinGas || (c.MaxGas > 0 && tx.GasUsed > c.MaxGas) {
			continue
		}
		if !inRange(tx.Timestamp, c.From, c.To) {
			continue
		}
		return c.Name, true
	}
	return "", false
}

func (p *spamPolicy) MatchFeeBackfill(tx domain.RawChainTransaction) bool {
	if !tx.GasFee.IsPositive() {
		return false
	}

	for _, r := range p.backfills {
		if !strings.EqualFold(r.Currency, tx.Currency) || !inRange(tx.Timestamp, r.From, r.To) {
			continue
		}
		for _, fee := range r.FeeAmounts {
			if tx.GasFee.Sub(fee).Abs().LessThanOrEqual(r.Tolerance) {
				return true
			}
		}
	}
	return false
}

// inRange checks if t is inside [from, to]; zero bounds are open
func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}

// SpamPolicyLoader loads a spam policy from a JSON file
//
//go:generate mockgen -source=spam_policy.go -destination=../mocks/spam_policy.go -package=mocks -mock_names=SpamPolicyLoader=MockSpamPolicyLoader
type SpamPolicyLoader interface {
	// Load reads the policy at path; an empty path yields the default policy
	Load(path string) (SpamPolicy, error)
}

type spamPolicyLoader struct {
	fs   adapter.FileSystem
	json adapter.JSON
}

// NewSpamPolicyLoader creates a loader reading through the given adapters
func NewSpamPolicyLoader(fs adapter.FileSystem, json adapter.JSON) SpamPolicyLoader {
	return &spamPolicyLoader{fs: fs, json: json}
}

func (l *spamPolicyLoader) Load(path string) (SpamPolicy, error) {
	if path == "" {
		return DefaultSpamPolicy(), nil
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spam policy file: %w", err)
	}

	var policyData SpamPolicyData
	if err := l.json.Unmarshal(data, &policyData); err != nil {
		return nil, fmt.Errorf("failed to parse spam policy JSON: %w", err)
	}

	for i, c := range policyData.Campaigns {
		if c.MaxGas > 0 && c.MinGas > c.MaxGas {
			return nil, fmt.Errorf("campaign %d (%s): min_gas %d exceeds max_gas %d", i, c.Name, c.MinGas, c.MaxGas)
		}
	}

	return NewSpamPolicy(policyData), nil
}
