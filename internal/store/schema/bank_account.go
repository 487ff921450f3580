package schema

import (
	"time"
)

// BankAccount represents the bank_accounts table
type BankAccount struct {
	// ID is the account identifier assigned by the owning application
	ID string `gorm:"column:id;primaryKey;type:text"`
	// CompanyID references the owning company
	CompanyID string `gorm:"column:company_id;not null;type:text;index:idx_bank_accounts_company"`
	// Name is the display name of the account
	Name string `gorm:"column:name;not null;type:text"`
	// AccountNumber is the bank account number (IBAN or local format)
	AccountNumber string `gorm:"column:account_number;type:text"`
	// Currency is the ISO 4217 currency code of the account
	Currency string `gorm:"column:currency;not null;type:varchar(16)"`
	// IsActive marks accounts still in use
	IsActive bool `gorm:"column:is_active;not null;default:true"`
	// CreatedAt is the timestamp when this account was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this account was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the BankAccount model
func (BankAccount) TableName() string {
	return "bank_accounts"
}
