package schema

import "time"

// Company represents the companies table. Read-only for this service.
type Company struct {
	ID          string    `gorm:"column:id;primaryKey;type:text"`
	TradingName string    `gorm:"column:trading_name;not null;type:text"`
	LegalName   *string   `gorm:"column:legal_name;type:text"`
	LogoURL     *string   `gorm:"column:logo_url;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

func (Company) TableName() string {
	return "companies"
}
