package normalizer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/registry"
)

// Spam reasons reported in Stats.Spam
const (
	spamPhishingHash      = "phishing_hash"
	spamSuspiciousAddress = "suspicious_address"
	spamZeroValueHighGas  = "zero_value_high_gas"
	spamCampaign          = "campaign"
	spamNonASCIICurrency  = "non_ascii_currency"
	spamExtremeGas        = "extreme_gas"
	spamPhishingLabel     = "phishing_label"
)

// pipeline carries the per-call state shared by the stages
type pipeline struct {
	address    string
	blockchain domain.Blockchain
	scope      string
	policy     registry.SpamPolicy
	now        time.Time

	// seenFees holds hash|operation|amount of every synthesized fee
	seenFees map[string]bool

	warnings []Warning
	stats    Stats
}

func newPipeline(input Input, policy registry.SpamPolicy, now time.Time) *pipeline {
	return &pipeline{
		address:    input.Address,
		blockchain: input.Blockchain,
		scope:      strings.ToUpper(strings.TrimSpace(input.Currency)),
		policy:     policy,
		now:        now,
		seenFees:   make(map[string]bool),
		stats:      Stats{Spam: make(map[string]int)},
	}
}

func (p *pipeline) warn(code WarningCode, hash string, format string, args ...interface{}) {
	p.warnings = append(p.warnings, Warning{Code: code, TxHash: hash, Message: fmt.Sprintf(format, args...)})
}

func (p *pipeline) isNative(tx domain.RawChainTransaction) bool {
	return tx.IsNative(p.blockchain)
}

func (p *pipeline) sentByWallet(tx domain.RawChainTransaction) bool {
	return domain.SameAddress(p.blockchain, tx.From, p.address)
}

func (p *pipeline) receivedByWallet(tx domain.RawChainTransaction) bool {
	return domain.SameAddress(p.blockchain, tx.To, p.address)
}

func (p *pipeline) nativeScope() bool {
	return p.scope != "" && p.blockchain.IsNativeCurrency(p.scope)
}

// rawKey identifies a raw transaction across overlapping fetches
func rawKey(blockchain domain.Blockchain, tx domain.RawChainTransaction) string {
	return strings.Join([]string{
		strings.ToLower(tx.Hash),
		strconv.FormatBool(tx.IsInternal),
		string(tx.TokenType),
		strings.ToUpper(tx.Currency),
		domain.NormalizeAddress(blockchain, tx.From),
		domain.NormalizeAddress(blockchain, tx.To),
		tx.Amount.String(),
		strconv.Itoa(tx.LogIndex),
	}, "|")
}

// feeKey identifies the fee paid by one operation of a transaction hash.
// Batched operations share a hash but each pays its own fee.
func feeKey(hash string, operation int, fee decimal.Decimal) string {
	return strings.ToLower(hash) + "|" + strconv.Itoa(operation) + "|" + fee.String()
}

// feeOperation is the operation paying the gas of tx. Token transfers ride on
// the gas of their carrying transaction, operation 0.
func (p *pipeline) feeOperation(tx domain.RawChainTransaction) int {
	if p.isNative(tx) && !tx.IsInternal {
		return tx.LogIndex
	}
	return 0
}

// dedupRaw collapses identical raw transactions, keeping the first occurrence
func (p *pipeline) dedupRaw(txs []domain.RawChainTransaction) []domain.RawChainTransaction {
	seen := make(map[string]bool, len(txs))
	out := make([]domain.RawChainTransaction, 0, len(txs))
	for _, tx := range txs {
		key := rawKey(p.blockchain, tx)
		if seen[key] {
			p.stats.Duplicates++
			continue
		}
		seen[key] = true
		out = append(out, tx)
	}
	return out
}

// filterSuccess drops transactions that did not execute successfully
func (p *pipeline) filterSuccess(txs []domain.RawChainTransaction) []domain.RawChainTransaction {
	out := make([]domain.RawChainTransaction, 0, len(txs))
	for _, tx := range txs {
		if !strings.EqualFold(strings.TrimSpace(tx.Status), domain.RawTxStatusSuccess) {
			p.stats.Failed++
			continue
		}
		out = append(out, tx)
	}
	return out
}

// filterFuture drops transactions timestamped after now
func (p *pipeline) filterFuture(txs []domain.RawChainTransaction) []domain.RawChainTransaction {
	out := make([]domain.RawChainTransaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Timestamp.After(p.now) {
			p.stats.Future++
			continue
		}
		out = append(out, tx)
	}
	return out
}

// filterSpam drops phishing and spam transactions
func (p *pipeline) filterSpam(txs []domain.RawChainTransaction) []domain.RawChainTransaction {
	out := make([]domain.RawChainTransaction, 0, len(txs))
	for _, tx := range txs {
		if reason := p.spamReason(tx); reason != "" {
			p.stats.Spam[reason]++
			continue
		}
		out = append(out, tx)
	}
	return out
}

func (p *pipeline) spamReason(tx domain.RawChainTransaction) string {
	outgoing := p.sentByWallet(tx)

	switch {
	case p.policy.IsPhishingHash(tx.Hash):
		return spamPhishingHash
	case p.policy.IsSuspiciousAddress(tx.To):
		return spamSuspiciousAddress
	case !p.isNative(tx) && tx.Amount.IsZero() && outgoing && tx.GasUsed > p.policy.HighGasThreshold():
		return spamZeroValueHighGas
	case !isASCII(tx.Currency):
		return spamNonASCIICurrency
	case tx.GasUsed > p.policy.ExtremeGasCeiling():
		return spamExtremeGas
	case strings.Contains(strings.ToLower(tx.To), "phishing"):
		return spamPhishingLabel
	}

	if _, ok := p.policy.MatchCampaign(tx, outgoing); ok {
		return spamCampaign
	}

	return ""
}

// filterUnrelated drops transactions in which the wallet is neither sender nor receiver,
// e.g. internal operations the wallet only initiated
func (p *pipeline) filterUnrelated(txs []domain.RawChainTransaction) []domain.RawChainTransaction {
	out := make([]domain.RawChainTransaction, 0, len(txs))
	for _, tx := range txs {
		if !p.sentByWallet(tx) && !p.receivedByWallet(tx) {
			p.stats.Unrelated++
			continue
		}
		out = append(out, tx)
	}
	return out
}

// synthesizeFees turns raw transactions into entries, splitting the gas paid by
// the wallet into fee entries. Zero-value carriers are replaced by their fee.
func (p *pipeline) synthesizeFees(txs []domain.RawChainTransaction) []entry {
	out := make([]entry, 0, len(txs))
	for _, tx := range txs {
		if tx.IsInternal {
			out = append(out, entry{raw: tx, kind: kindInternal})
			continue
		}

		if !p.isNative(tx) || !p.sentByWallet(tx) || !tx.GasFee.IsPositive() {
			out = append(out, entry{raw: tx, kind: kindTransfer})
			continue
		}

		if fee, ok := p.feeEntry(tx); ok {
			out = append(out, fee)
			p.stats.FeesSynthesized++
		}

		if tx.Amount.IsZero() {
			p.stats.CarriersReplaced++
			continue
		}
		out = append(out, entry{raw: tx, kind: kindTransfer})
	}
	return out
}

// feeEntry builds the fee entry of tx unless one exists for the same operation and amount
func (p *pipeline) feeEntry(tx domain.RawChainTransaction) (entry, bool) {
	operation := p.feeOperation(tx)
	key := feeKey(tx.Hash, operation, tx.GasFee)
	if p.seenFees[key] {
		return entry{}, false
	}
	p.seenFees[key] = true

	fee := tx
	fee.Amount = tx.GasFee
	fee.Currency = p.blockchain.NativeCurrency()
	fee.TokenType = domain.TokenTypeNative
	fee.ContractAddr = ""
	fee.LogIndex = operation
	return entry{raw: fee, kind: kindFee}, true
}

// backfillTokenFees never derives fees from token transfers, except for the
// policy's known gaps where the native gas transaction is missing upstream.
// Fees belong to the native scope, so a token scope never backfills.
func (p *pipeline) backfillTokenFees(entries []entry, survivors []domain.RawChainTransaction) []entry {
	if p.scope != "" && !p.nativeScope() {
		return entries
	}

	nativeHashes := make(map[string]bool)
	for _, tx := range survivors {
		if p.isNative(tx) && !tx.IsInternal {
			nativeHashes[strings.ToLower(tx.Hash)] = true
		}
	}

	out := make([]entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)

		tx := e.raw
		if e.kind != kindTransfer || p.isNative(tx) || !p.sentByWallet(tx) {
			continue
		}
		if nativeHashes[strings.ToLower(tx.Hash)] || !p.policy.MatchFeeBackfill(tx) {
			continue
		}

		fee, ok := p.feeEntry(tx)
		if !ok {
			continue
		}
		out = append(out, fee)
		p.stats.FeesBackfilled++
		p.warn(WarningMissingHistoricalFee, tx.Hash,
			"backfilled missing %s fee of %s %s for %s transfer", fee.raw.Currency, tx.GasFee, fee.raw.Currency, tx.Currency)
	}
	return out
}

// applyScope keeps only entries relevant to the requested currency
func (p *pipeline) applyScope(entries []entry) []entry {
	if p.scope == "" {
		return entries
	}

	out := make([]entry, 0, len(entries))
	for _, e := range entries {
		if p.inScope(e) {
			out = append(out, e)
			continue
		}
		p.stats.ScopeSuppressed++
	}
	return out
}

func (p *pipeline) inScope(e entry) bool {
	tx := e.raw

	if !p.nativeScope() {
		// Fees are native and belong to the native scope
		return e.kind == kindTransfer && strings.EqualFold(tx.Currency, p.scope)
	}

	switch e.kind {
	case kindFee, kindInternal:
		return true
	}

	if !p.isNative(tx) {
		return false
	}

	// Gas-only artifact of a token transfer
	artifact := tx.Amount.IsZero() &&
		tx.GasUsed > 0 &&
		!tx.IsContractCall &&
		!domain.SameAddress(p.blockchain, tx.From, tx.To)
	return !artifact
}

// checkInternals reports internal transactions lost by the stages after spam filtering
func (p *pipeline) checkInternals(baseline []domain.RawChainTransaction, entries []entry) {
	if p.scope != "" && !p.nativeScope() {
		return
	}

	kept := make(map[string]bool)
	for _, e := range entries {
		if e.kind == kindInternal {
			kept[rawKey(p.blockchain, e.raw)] = true
		}
	}

	for _, tx := range baseline {
		if !tx.IsInternal {
			continue
		}
		if !kept[rawKey(p.blockchain, tx)] {
			p.warn(WarningInternalDropped, tx.Hash, "internal transaction of %s %s was dropped", tx.Amount, tx.Currency)
		}
	}
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
