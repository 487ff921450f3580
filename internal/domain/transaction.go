package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus represents the clearing status of a ledger entry
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCleared   TransactionStatus = "CLEARED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// ReconciliationStatus represents whether a ledger entry was matched against a statement
type ReconciliationStatus string

const (
	ReconciliationStatusUnreconciled   ReconciliationStatus = "UNRECONCILED"
	ReconciliationStatusReconciled     ReconciliationStatus = "RECONCILED"
	ReconciliationStatusAutoReconciled ReconciliationStatus = "AUTO_RECONCILED"
)

// Transaction categories written by the chain importer
const (
	CategoryTransfer = "transfer"
	CategoryFee      = "fee"
	CategoryInternal = "internal"
)

// Transaction is a ledger entry that belongs to exactly one account
type Transaction struct {
	ID                   string               `json:"id"`
	AccountID            string               `json:"account_id"`
	AccountType          AccountType          `json:"account_type"`
	CompanyID            string               `json:"company_id"`
	Date                 time.Time            `json:"date"`
	Currency             string               `json:"currency"`
	NetAmount            decimal.Decimal      `json:"net_amount"`
	IncomingAmount       *decimal.Decimal     `json:"incoming_amount,omitempty"`
	OutgoingAmount       *decimal.Decimal     `json:"outgoing_amount,omitempty"`
	Status               TransactionStatus    `json:"status"`
	ReconciliationStatus ReconciliationStatus `json:"reconciliation_status"`
	Category             string               `json:"category"`
	Description          string               `json:"description,omitempty"`
	Reference            string               `json:"reference,omitempty"`
	TxHash               string               `json:"tx_hash,omitempty"`
	RelatedTransaction   string               `json:"related_transaction,omitempty"`
	Blockchain           Blockchain           `json:"blockchain,omitempty"`
	ImportID             string               `json:"import_id,omitempty"`
	RawData              []byte               `json:"-"`
	IsDeleted            bool                 `json:"is_deleted"`
}

// Key returns the account key the transaction belongs to
func (t Transaction) Key() AccountKey {
	return AccountKey{AccountID: t.AccountID, AccountType: t.AccountType}
}

// Flows returns the incoming and outgoing amounts of the transaction.
// Missing sides are derived from the net amount.
func (t Transaction) Flows() (incoming, outgoing decimal.Decimal) {
	switch {
	case t.IncomingAmount != nil && t.OutgoingAmount != nil:
		return *t.IncomingAmount, *t.OutgoingAmount
	case t.IncomingAmount != nil:
		return *t.IncomingAmount, t.IncomingAmount.Sub(t.NetAmount)
	case t.OutgoingAmount != nil:
		return t.NetAmount.Add(*t.OutgoingAmount), *t.OutgoingAmount
	}

	if t.NetAmount.IsNegative() {
		return decimal.Zero, t.NetAmount.Neg()
	}
	return t.NetAmount, decimal.Zero
}

// IsConsistent checks the net = incoming - outgoing invariant when both sides are present
func (t Transaction) IsConsistent() bool {
	if t.IncomingAmount == nil || t.OutgoingAmount == nil {
		return true
	}
	return t.IncomingAmount.Sub(*t.OutgoingAmount).Equal(t.NetAmount)
}

// DateRange is an inclusive time range used for store queries.
// A nil bound is open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Contains checks if t is inside the range
func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}
