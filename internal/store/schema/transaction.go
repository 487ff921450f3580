package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Transaction represents the transactions table - ledger entries of bank accounts and wallets.
// Rows are never physically deleted; IsDeleted hides them from balances.
type Transaction struct {
	// ID is a UUID; deterministic for rows imported from a blockchain
	ID string `gorm:"column:id;primaryKey;type:text"`
	// AccountID references a bank account or a digital wallet
	AccountID string `gorm:"column:account_id;not null;type:text;index:idx_transactions_account_date,priority:1"`
	// AccountType tells which table AccountID refers to (bank or wallet)
	AccountType string `gorm:"column:account_type;not null;type:varchar(16);index:idx_transactions_account_date,priority:2"`
	// CompanyID references the owning company
	CompanyID string `gorm:"column:company_id;not null;type:text;index:idx_transactions_company"`
	// Date is the booking date of the entry
	Date time.Time `gorm:"column:date;not null;type:timestamptz;index:idx_transactions_account_date,priority:3"`
	// Currency is the currency or token symbol of the entry
	Currency string `gorm:"column:currency;not null;type:varchar(16)"`
	// NetAmount is incoming minus outgoing
	NetAmount decimal.Decimal `gorm:"column:net_amount;not null;type:numeric(38,18)"`
	// IncomingAmount is the credited side, when known
	IncomingAmount *decimal.Decimal `gorm:"column:incoming_amount;type:numeric(38,18)"`
	// OutgoingAmount is the debited side, when known
	OutgoingAmount *decimal.Decimal `gorm:"column:outgoing_amount;type:numeric(38,18)"`
	// Status is one of PENDING, CLEARED, CANCELLED
	Status string `gorm:"column:status;not null;type:varchar(16);default:'PENDING'"`
	// ReconciliationStatus is one of UNRECONCILED, RECONCILED, AUTO_RECONCILED
	ReconciliationStatus string `gorm:"column:reconciliation_status;not null;type:varchar(32);default:'UNRECONCILED'"`
	Category             string `gorm:"column:category;type:text"`
	Description          string `gorm:"column:description;type:text"`
	Reference            string `gorm:"column:reference;type:text"`
	// TxHash is the on-chain transaction hash (imported rows only)
	TxHash *string `gorm:"column:tx_hash;type:text;index:idx_transactions_tx_hash"`
	// RelatedTransaction links a fee row to the hash of the transaction it paid for
	RelatedTransaction *string `gorm:"column:related_transaction;type:text"`
	Blockchain         *string `gorm:"column:blockchain;type:varchar(32)"`
	// ImportID groups the rows written by one import run
	ImportID *string `gorm:"column:import_id;type:text;index:idx_transactions_import"`
	// RawData is the raw chain transaction the row was derived from
	RawData   datatypes.JSON `gorm:"column:raw_data;type:jsonb"`
	IsDeleted bool           `gorm:"column:is_deleted;not null;default:false"`
	// CreatedAt is the timestamp when this row was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this row was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}
