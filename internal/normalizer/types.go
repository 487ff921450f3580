package normalizer

import (
	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-balance/internal/domain"
)

// Input is a single normalization request for one wallet
type Input struct {
	// Account is the wallet the produced ledger entries belong to
	Account    domain.Account
	Address    string
	Blockchain domain.Blockchain
	// Currency optionally restricts the output to one currency
	Currency string
	Raw      []domain.RawChainTransaction
	// OpeningBalance is the native balance the computed balance starts from
	OpeningBalance decimal.Decimal
	ImportID       string
}

// WarningCode classifies a normalizer diagnostic
type WarningCode string

const (
	WarningOracleUnavailable    WarningCode = "oracle_unavailable"
	WarningBalanceDiscrepancy   WarningCode = "balance_discrepancy"
	WarningMissingHistoricalFee WarningCode = "missing_historical_fee"
	WarningInternalDropped      WarningCode = "internal_dropped"
)

// Warning is a non-fatal diagnostic produced while normalizing
type Warning struct {
	Code    WarningCode `json:"code"`
	TxHash  string      `json:"tx_hash,omitempty"`
	Message string      `json:"message"`
}

// Stats counts what each pipeline stage did
type Stats struct {
	Raw              int            `json:"raw"`
	Duplicates       int            `json:"duplicates"`
	Failed           int            `json:"failed"`
	Future           int            `json:"future"`
	Spam             map[string]int `json:"spam,omitempty"`
	Unrelated        int            `json:"unrelated"`
	FeesSynthesized  int            `json:"fees_synthesized"`
	FeesBackfilled   int            `json:"fees_backfilled"`
	CarriersReplaced int            `json:"carriers_replaced"`
	ScopeSuppressed  int            `json:"scope_suppressed"`
	Output           int            `json:"output"`
}

// Direction of a reconciliation discrepancy, from the computed balance's point of view
type Direction string

const (
	DirectionMatch        Direction = "match"
	DirectionEngineHigher Direction = "engine_higher"
	DirectionEngineLower  Direction = "engine_lower"
)

// ReconciliationReport compares the computed native balance with the live one
type ReconciliationReport struct {
	Currency       string          `json:"currency"`
	Computed       decimal.Decimal `json:"computed"`
	Live           decimal.Decimal `json:"live"`
	Difference     decimal.Decimal `json:"difference"`
	Direction      Direction       `json:"direction"`
	CandidateCause string          `json:"candidate_cause,omitempty"`
	Source         string          `json:"source"`
}

// Matched reports whether the balances agree within tolerance
func (r ReconciliationReport) Matched() bool {
	return r.Direction == DirectionMatch
}

// Result is the output of a normalization
type Result struct {
	Transactions   []domain.Transaction  `json:"transactions"`
	Warnings       []Warning             `json:"warnings,omitempty"`
	Reconciliation *ReconciliationReport `json:"reconciliation,omitempty"`
	Stats          Stats                 `json:"stats"`
}

// entryKind is what a pipeline entry turns into
type entryKind string

const (
	kindTransfer entryKind = "transfer"
	kindInternal entryKind = "internal"
	kindFee      entryKind = "fee"
)

// entry is a raw transaction annotated with the ledger entry it produces
type entry struct {
	raw  domain.RawChainTransaction
	kind entryKind
}
