package store

import (
	"strings"

	"gorm.io/datatypes"

	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/store/schema"
)

func bankAccountToDomain(b schema.BankAccount) domain.Account {
	return domain.Account{
		ID:            b.ID,
		CompanyID:     b.CompanyID,
		Type:          domain.AccountTypeBank,
		Name:          b.Name,
		AccountNumber: b.AccountNumber,
		Currency:      strings.ToUpper(b.Currency),
		IsActive:      b.IsActive,
	}
}

func walletToDomain(w schema.DigitalWallet) domain.Account {
	account := domain.Account{
		ID:         w.ID,
		CompanyID:  w.CompanyID,
		Type:       domain.AccountTypeWallet,
		Name:       w.Name,
		Currency:   strings.ToUpper(w.Currency),
		IsActive:   w.IsActive,
		WalletType: domain.WalletType(w.WalletType),
	}
	if w.WalletAddress != nil {
		account.WalletAddress = *w.WalletAddress
	}
	if w.Blockchain != nil {
		account.Blockchain = domain.Blockchain(strings.ToLower(*w.Blockchain))
	}
	if w.Currencies != nil {
		account.Currencies = *w.Currencies
	}
	return account
}

func companyToDomain(c schema.Company) domain.Company {
	company := domain.Company{
		ID:          c.ID,
		TradingName: c.TradingName,
	}
	if c.LegalName != nil {
		company.LegalName = *c.LegalName
	}
	if c.LogoURL != nil {
		company.LogoURL = *c.LogoURL
	}
	return company
}

func initialBalanceToDomain(b schema.InitialBalance) domain.InitialBalance {
	return domain.InitialBalance{
		AccountID:   b.AccountID,
		AccountType: domain.AccountType(b.AccountType),
		CompanyID:   b.CompanyID,
		Amount:      b.Amount,
		Currency:    b.Currency,
		Notes:       b.Notes,
		UpdatedAt:   b.UpdatedAt,
	}
}

func initialBalanceFromDomain(b domain.InitialBalance) schema.InitialBalance {
	return schema.InitialBalance{
		AccountID:   b.AccountID,
		AccountType: string(b.AccountType),
		CompanyID:   b.CompanyID,
		Amount:      b.Amount,
		Currency:    strings.ToUpper(strings.TrimSpace(b.Currency)),
		Notes:       b.Notes,
	}
}

func transactionToDomain(t schema.Transaction) domain.Transaction {
	return domain.Transaction{
		ID:                   t.ID,
		AccountID:            t.AccountID,
		AccountType:          domain.AccountType(t.AccountType),
		CompanyID:            t.CompanyID,
		Date:                 t.Date.UTC(),
		Currency:             t.Currency,
		NetAmount:            t.NetAmount,
		IncomingAmount:       t.IncomingAmount,
		OutgoingAmount:       t.OutgoingAmount,
		Status:               domain.TransactionStatus(t.Status),
		ReconciliationStatus: domain.ReconciliationStatus(t.ReconciliationStatus),
		Category:             t.Category,
		Description:          t.Description,
		Reference:            t.Reference,
		TxHash:               deref(t.TxHash),
		RelatedTransaction:   deref(t.RelatedTransaction),
		Blockchain:           domain.Blockchain(deref(t.Blockchain)),
		ImportID:             deref(t.ImportID),
		RawData:              []byte(t.RawData),
		IsDeleted:            t.IsDeleted,
	}
}

func transactionFromDomain(t domain.Transaction) schema.Transaction {
	status := t.Status
	if status == "" {
		status = domain.TransactionStatusPending
	}
	reconciliation := t.ReconciliationStatus
	if reconciliation == "" {
		reconciliation = domain.ReconciliationStatusUnreconciled
	}

	return schema.Transaction{
		ID:                   t.ID,
		AccountID:            t.AccountID,
		AccountType:          string(t.AccountType),
		CompanyID:            t.CompanyID,
		Date:                 t.Date.UTC(),
		Currency:             t.Currency,
		NetAmount:            t.NetAmount,
		IncomingAmount:       t.IncomingAmount,
		OutgoingAmount:       t.OutgoingAmount,
		Status:               string(status),
		ReconciliationStatus: string(reconciliation),
		Category:             t.Category,
		Description:          t.Description,
		Reference:            t.Reference,
		TxHash:               ref(t.TxHash),
		RelatedTransaction:   ref(t.RelatedTransaction),
		Blockchain:           ref(string(t.Blockchain)),
		ImportID:             ref(t.ImportID),
		RawData:              datatypes.JSON(t.RawData),
		IsDeleted:            t.IsDeleted,
	}
}

// ref maps the empty string to NULL
func ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
