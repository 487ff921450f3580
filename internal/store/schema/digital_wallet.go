package schema

import (
	"time"
)

// DigitalWallet represents the digital_wallets table - crypto wallets and fiat e-money wallets
type DigitalWallet struct {
	// ID is the wallet identifier assigned by the owning application
	ID string `gorm:"column:id;primaryKey;type:text"`
	// CompanyID references the owning company
	CompanyID string `gorm:"column:company_id;not null;type:text;index:idx_digital_wallets_company"`
	// Name is the display name of the wallet
	Name string `gorm:"column:name;not null;type:text"`
	// WalletType is either crypto or fiat
	WalletType string `gorm:"column:wallet_type;not null;type:varchar(16);default:'crypto'"`
	// WalletAddress is the on-chain address (crypto wallets only)
	WalletAddress *string `gorm:"column:wallet_address;type:text"`
	// Blockchain is the chain the address lives on (crypto wallets only)
	Blockchain *string `gorm:"column:blockchain;type:varchar(32)"`
	// Currency is the primary currency of the wallet
	Currency string `gorm:"column:currency;not null;type:varchar(16)"`
	// Currencies is a comma separated list of supported currencies
	Currencies *string `gorm:"column:currencies;type:text"`
	// IsActive marks wallets still in use
	IsActive bool `gorm:"column:is_active;not null;default:true"`
	// CreatedAt is the timestamp when this wallet was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this wallet was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the DigitalWallet model
func (DigitalWallet) TableName() string {
	return "digital_wallets"
}
