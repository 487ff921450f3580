package dto

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/report"
)

// BalancesResponse is the body of GET /balances
type BalancesResponse struct {
	*report.Response
	// ResponseTime is the server-side computation time in milliseconds
	ResponseTime int64 `json:"response_time"`
}

// ImportWalletRequest is the body of POST /wallets/:id/import
type ImportWalletRequest struct {
	StartDate           string   `json:"start_date"`
	EndDate             string   `json:"end_date"`
	Currencies          []string `json:"currencies"`
	Limit               int      `json:"limit"`
	OverwriteDuplicates bool     `json:"overwrite_duplicates"`
}

// Validate validates the import request
func (r *ImportWalletRequest) Validate() error {
	if r.Limit < 0 {
		return errors.New("limit must not be negative")
	}
	for _, c := range r.Currencies {
		if strings.TrimSpace(c) == "" {
			return errors.New("currencies must not contain empty values")
		}
	}
	return nil
}

// SetInitialBalanceRequest is the body of PUT /initial-balances
type SetInitialBalanceRequest struct {
	AccountID     string             `json:"account_id"`
	AccountType   domain.AccountType `json:"account_type"`
	Amount        *decimal.Decimal   `json:"amount"`
	Currency      string             `json:"currency"`
	Notes         *string            `json:"notes"`
	Overwrite     bool               `json:"overwrite"`
	AllowNegative bool               `json:"allow_negative"`
}

// Validate validates the initial balance request
func (r *SetInitialBalanceRequest) Validate() error {
	if strings.TrimSpace(r.AccountID) == "" {
		return errors.New("account_id is required")
	}
	if !r.AccountType.Valid() {
		return errors.New("account_type must be bank or wallet")
	}
	if r.Amount == nil {
		return errors.New("amount is required")
	}
	return nil
}
