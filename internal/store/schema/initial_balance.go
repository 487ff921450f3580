package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// InitialBalance represents the initial_balances table - the manually entered zero-point of an account
type InitialBalance struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// AccountID references a bank account or a digital wallet
	AccountID string `gorm:"column:account_id;not null;type:text;uniqueIndex:idx_initial_balances_account,priority:1"`
	// AccountType tells which table AccountID refers to (bank or wallet)
	AccountType string `gorm:"column:account_type;not null;type:varchar(16);uniqueIndex:idx_initial_balances_account,priority:2"`
	// CompanyID references the owning company
	CompanyID string `gorm:"column:company_id;not null;type:text;index:idx_initial_balances_company"`
	// Amount is the signed opening balance
	Amount decimal.Decimal `gorm:"column:amount;not null;type:numeric(38,18)"`
	// Currency is the currency of the opening balance
	Currency string `gorm:"column:currency;not null;type:varchar(16)"`
	// Notes is an optional free-form comment
	Notes *string `gorm:"column:notes;type:text"`
	// CreatedAt is the timestamp when this balance was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this balance was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the InitialBalance model
func (InitialBalance) TableName() string {
	return "initial_balances"
}
