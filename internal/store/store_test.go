package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/store/schema"
)

// StoreTestSuite provides the interface for running store tests against different implementations
type StoreTestSuite struct {
	Store Store
	// InitDB should be called before each test to initialize the database
	InitDB func(t *testing.T) (Store, *gorm.DB)
	// CleanupDB should be called after each test to clean up the database
	CleanupDB func(t *testing.T)
}

// RunStoreTests runs every store test against a freshly initialized database
func RunStoreTests(t *testing.T, initDB func(t *testing.T) (Store, *gorm.DB), cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(t *testing.T, store Store, db *gorm.DB)
	}{
		{"ListAccounts", testListAccounts},
		{"GetAccount", testGetAccount},
		{"ListCompanies", testListCompanies},
		{"InitialBalances", testInitialBalances},
		{"ListTransactions", testListTransactions},
		{"AppendTransactions", testAppendTransactions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, db := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store, db)
		})
	}
}

// =============================================================================
// Test Data Builders
// =============================================================================

var walletKey = domain.AccountKey{AccountID: "wallet-eth", AccountType: domain.AccountTypeWallet}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// buildTestTransaction creates an imported wallet transaction
func buildTestTransaction(hash string, net string, date time.Time) domain.Transaction {
	in, out := decimal.Zero, decimal.Zero
	amount := dec(net)
	if amount.IsNegative() {
		out = amount.Neg()
	} else {
		in = amount
	}

	return domain.Transaction{
		ID:                   uuid.NewSHA1(uuid.NameSpaceOID, []byte(hash)).String(),
		AccountID:            walletKey.AccountID,
		AccountType:          walletKey.AccountType,
		CompanyID:            "company-acme",
		Date:                 date,
		Currency:             "ETH",
		NetAmount:            amount,
		IncomingAmount:       &in,
		OutgoingAmount:       &out,
		Status:               domain.TransactionStatusCleared,
		ReconciliationStatus: domain.ReconciliationStatusAutoReconciled,
		Category:             domain.CategoryTransfer,
		Description:          "Imported " + hash,
		Reference:            hash,
		TxHash:               hash,
		Blockchain:           domain.BlockchainEthereum,
		ImportID:             "01HQ0000000000000000000000",
		RawData:              []byte(`{"hash":"` + hash + `","amount":"` + net + `"}`),
	}
}

func accountIDs(accounts []domain.Account) []string {
	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}
	return ids
}

func transactionIDs(txs []domain.Transaction) []string {
	ids := make([]string, 0, len(txs))
	for _, tx := range txs {
		ids = append(ids, tx.ID)
	}
	return ids
}

// =============================================================================
// Test: Accounts and companies
// =============================================================================

func testListAccounts(t *testing.T, store Store, _ *gorm.DB) {
	ctx := context.Background()

	t.Run("active accounts of all companies, banks first then wallets by name", func(t *testing.T) {
		accounts, err := store.ListAccounts(ctx, AccountFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"bank-beta", "bank-operating", "wallet-fiat", "wallet-xtz", "wallet-eth"}, accountIDs(accounts))
	})

	t.Run("filter by company", func(t *testing.T) {
		accounts, err := store.ListAccounts(ctx, AccountFilter{CompanyID: "company-acme"})
		require.NoError(t, err)
		assert.Equal(t, []string{"bank-operating", "wallet-fiat", "wallet-eth"}, accountIDs(accounts))
	})

	t.Run("inactive bank accounts on request", func(t *testing.T) {
		accounts, err := store.ListAccounts(ctx, AccountFilter{
			CompanyID:       "company-acme",
			Type:            domain.AccountTypeBank,
			IncludeInactive: true,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"bank-operating", "bank-savings"}, accountIDs(accounts))
		assert.False(t, accounts[1].IsActive)
	})

	t.Run("wallet fields are mapped", func(t *testing.T) {
		accounts, err := store.ListAccounts(ctx, AccountFilter{Type: domain.AccountTypeWallet, CompanyID: "company-acme"})
		require.NoError(t, err)
		require.Len(t, accounts, 2)

		wallet := accounts[1]
		assert.Equal(t, domain.AccountTypeWallet, wallet.Type)
		assert.Equal(t, domain.WalletTypeCrypto, wallet.WalletType)
		assert.Equal(t, "0x457ee5f723c7606c12a7264b52e285906f91eea6", wallet.WalletAddress)
		assert.Equal(t, domain.BlockchainEthereum, wallet.Blockchain)
		assert.Equal(t, []string{"ETH", "USDT", "USDC"}, wallet.SupportedCurrencies())
		assert.True(t, wallet.IsCryptoWallet())

		fiat := accounts[0]
		assert.Equal(t, domain.WalletTypeFiat, fiat.WalletType)
		assert.Empty(t, fiat.WalletAddress)
		assert.False(t, fiat.IsCryptoWallet())
	})

	t.Run("currency codes are uppercased", func(t *testing.T) {
		accounts, err := store.ListAccounts(ctx, AccountFilter{CompanyID: "company-beta", Type: domain.AccountTypeBank})
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		assert.Equal(t, "USD", accounts[0].Currency)
	})

	t.Run("unknown account type", func(t *testing.T) {
		_, err := store.ListAccounts(ctx, AccountFilter{Type: "card"})
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

func testGetAccount(t *testing.T, store Store, _ *gorm.DB) {
	ctx := context.Background()

	account, err := store.GetAccount(ctx, walletKey)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, "Treasury", account.Name)
	assert.Equal(t, "company-acme", account.CompanyID)

	account, err = store.GetAccount(ctx, domain.AccountKey{AccountID: "bank-operating", AccountType: domain.AccountTypeBank})
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, "DE89370400440532013000", account.AccountNumber)
	assert.Equal(t, "EUR", account.Currency)

	// Account ids are scoped by type
	account, err = store.GetAccount(ctx, domain.AccountKey{AccountID: "wallet-eth", AccountType: domain.AccountTypeBank})
	require.NoError(t, err)
	assert.Nil(t, account)

	account, err = store.GetAccount(ctx, domain.AccountKey{AccountID: "missing", AccountType: domain.AccountTypeWallet})
	require.NoError(t, err)
	assert.Nil(t, account)

	_, err = store.GetAccount(ctx, domain.AccountKey{AccountID: "wallet-eth"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func testListCompanies(t *testing.T, store Store, _ *gorm.DB) {
	companies, err := store.ListCompanies(context.Background())
	require.NoError(t, err)
	require.Len(t, companies, 2)

	assert.Equal(t, "Acme Studio", companies[0].TradingName)
	assert.Equal(t, "Acme Studio GmbH", companies[0].LegalName)
	assert.Equal(t, "https://example.com/acme.png", companies[0].LogoURL)
	assert.Equal(t, "Beta Labs", companies[1].TradingName)
	assert.Empty(t, companies[1].LegalName)
}

// =============================================================================
// Test: Initial balances
// =============================================================================

func testInitialBalances(t *testing.T, store Store, _ *gorm.DB) {
	ctx := context.Background()
	bankKey := domain.AccountKey{AccountID: "bank-operating", AccountType: domain.AccountTypeBank}

	t.Run("get seeded balance", func(t *testing.T) {
		balance, err := store.GetInitialBalance(ctx, bankKey)
		require.NoError(t, err)
		require.NotNil(t, balance)
		assert.True(t, dec("1000.5").Equal(balance.Amount), balance.Amount.String())
		assert.Equal(t, "EUR", balance.Currency)
		require.NotNil(t, balance.Notes)
		assert.Equal(t, "Opening balance 2024", *balance.Notes)
	})

	t.Run("missing balance is nil", func(t *testing.T) {
		balance, err := store.GetInitialBalance(ctx, walletKey)
		require.NoError(t, err)
		assert.Nil(t, balance)
	})

	t.Run("list by company", func(t *testing.T) {
		balances, err := store.ListInitialBalances(ctx, "company-acme")
		require.NoError(t, err)
		assert.Len(t, balances, 1)

		balances, err = store.ListInitialBalances(ctx, "company-beta")
		require.NoError(t, err)
		assert.Empty(t, balances)
	})

	t.Run("create, reject without overwrite, replace with overwrite", func(t *testing.T) {
		notes := "migrated"
		created, err := store.UpsertInitialBalance(ctx, domain.InitialBalance{
			AccountID:   walletKey.AccountID,
			AccountType: walletKey.AccountType,
			CompanyID:   "company-acme",
			Amount:      dec("2.5"),
			Currency:    "eth",
			Notes:       &notes,
		}, false)
		require.NoError(t, err)
		assert.True(t, dec("2.5").Equal(created.Amount))
		assert.Equal(t, "ETH", created.Currency)

		_, err = store.UpsertInitialBalance(ctx, domain.InitialBalance{
			AccountID:   walletKey.AccountID,
			AccountType: walletKey.AccountType,
			CompanyID:   "company-acme",
			Amount:      dec("9"),
			Currency:    "ETH",
		}, false)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInitialBalanceExists))

		current, err := store.GetInitialBalance(ctx, walletKey)
		require.NoError(t, err)
		assert.True(t, dec("2.5").Equal(current.Amount), "existing row must be untouched")

		replaced, err := store.UpsertInitialBalance(ctx, domain.InitialBalance{
			AccountID:   walletKey.AccountID,
			AccountType: walletKey.AccountType,
			CompanyID:   "company-acme",
			Amount:      dec("-3.25"),
			Currency:    "ETH",
		}, true)
		require.NoError(t, err)
		assert.True(t, dec("-3.25").Equal(replaced.Amount))
		assert.Nil(t, replaced.Notes)

		balances, err := store.ListInitialBalances(ctx, "")
		require.NoError(t, err)
		assert.Len(t, balances, 2)
	})
}

// =============================================================================
// Test: Transactions
// =============================================================================

func testListTransactions(t *testing.T, store Store, _ *gorm.DB) {
	ctx := context.Background()
	bankKey := domain.AccountKey{AccountID: "bank-operating", AccountType: domain.AccountTypeBank}

	t.Run("soft-deleted rows are hidden", func(t *testing.T) {
		txs, err := store.ListTransactions(ctx, TransactionFilter{Account: &bankKey})
		require.NoError(t, err)
		assert.Equal(t, []string{"tx-seed-1", "tx-seed-2"}, transactionIDs(txs))

		txs, err = store.ListTransactions(ctx, TransactionFilter{Account: &bankKey, IncludeDeleted: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"tx-seed-1", "tx-seed-2", "tx-seed-3"}, transactionIDs(txs))
		assert.True(t, txs[2].IsDeleted)
	})

	t.Run("amount sides are preserved", func(t *testing.T) {
		txs, err := store.ListTransactions(ctx, TransactionFilter{Account: &bankKey})
		require.NoError(t, err)
		require.Len(t, txs, 2)

		assert.True(t, dec("200").Equal(txs[0].NetAmount))
		require.NotNil(t, txs[0].IncomingAmount)
		assert.True(t, dec("200").Equal(*txs[0].IncomingAmount))

		assert.True(t, dec("-50.25").Equal(txs[1].NetAmount))
		assert.Nil(t, txs[1].IncomingAmount)
		require.NotNil(t, txs[1].OutgoingAmount)
		assert.True(t, dec("50.25").Equal(*txs[1].OutgoingAmount))
		assert.Equal(t, domain.TransactionStatusCleared, txs[1].Status)
		assert.Equal(t, domain.ReconciliationStatusUnreconciled, txs[1].ReconciliationStatus)
	})

	t.Run("inclusive date range", func(t *testing.T) {
		start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 2, 15, 14, 30, 0, 0, time.UTC)
		txs, err := store.ListTransactions(ctx, TransactionFilter{
			DateRange: domain.DateRange{Start: &start, End: &end},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"tx-seed-2"}, transactionIDs(txs))
	})

	t.Run("company and currency filters", func(t *testing.T) {
		txs, err := store.ListTransactions(ctx, TransactionFilter{CompanyID: "company-beta"})
		require.NoError(t, err)
		assert.Equal(t, []string{"tx-seed-4"}, transactionIDs(txs))
		assert.Nil(t, txs[0].IncomingAmount)
		assert.Nil(t, txs[0].OutgoingAmount)

		txs, err = store.ListTransactions(ctx, TransactionFilter{Currency: "eur"})
		require.NoError(t, err)
		assert.Equal(t, []string{"tx-seed-1", "tx-seed-2"}, transactionIDs(txs))
	})
}

func testAppendTransactions(t *testing.T, store Store, db *gorm.DB) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	batch := []domain.Transaction{
		buildTestTransaction("0x01", "1.5", base),
		buildTestTransaction("0x02", "-0.25", base.Add(time.Hour)),
		buildTestTransaction("0x03", "0.000000000000000001", base.Add(2*time.Hour)),
	}

	t.Run("empty batch", func(t *testing.T) {
		result, err := store.AppendTransactions(ctx, nil, false)
		require.NoError(t, err)
		assert.Equal(t, AppendResult{}, *result)
	})

	t.Run("insert new rows", func(t *testing.T) {
		result, err := store.AppendTransactions(ctx, batch, false)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Inserted)
		assert.Equal(t, 0, result.Duplicates)

		txs, err := store.ListTransactions(ctx, TransactionFilter{Account: &walletKey})
		require.NoError(t, err)
		require.Len(t, txs, 3)
		assert.Equal(t, transactionIDs(batch), transactionIDs(txs))

		got := txs[2]
		assert.True(t, dec("0.000000000000000001").Equal(got.NetAmount), "wei precision is kept")
		assert.Equal(t, "0x03", got.TxHash)
		assert.Equal(t, domain.BlockchainEthereum, got.Blockchain)
		assert.Equal(t, "01HQ0000000000000000000000", got.ImportID)
		assert.Equal(t, domain.ReconciliationStatusAutoReconciled, got.ReconciliationStatus)
		assert.JSONEq(t, string(batch[2].RawData), string(got.RawData))
		assert.Empty(t, got.RelatedTransaction)
	})

	t.Run("re-append counts duplicates and leaves rows untouched", func(t *testing.T) {
		changed := batch[0]
		changed.Description = "changed"

		result, err := store.AppendTransactions(ctx, []domain.Transaction{changed, batch[1], batch[2]}, false)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Inserted)
		assert.Equal(t, 3, result.Duplicates)

		var row schema.Transaction
		require.NoError(t, db.Where("id = ?", batch[0].ID).First(&row).Error)
		assert.Equal(t, "Imported 0x01", row.Description)
	})

	t.Run("overwrite replaces existing rows", func(t *testing.T) {
		changed := batch[0]
		changed.Description = "changed"
		fresh := buildTestTransaction("0x04", "3", base.Add(3*time.Hour))

		result, err := store.AppendTransactions(ctx, []domain.Transaction{changed, fresh}, true)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Inserted)
		assert.Equal(t, 1, result.Duplicates)

		var row schema.Transaction
		require.NoError(t, db.Where("id = ?", batch[0].ID).First(&row).Error)
		assert.Equal(t, "changed", row.Description)
	})

	t.Run("repeated ids in one batch", func(t *testing.T) {
		tx := buildTestTransaction("0x05", "1", base.Add(4*time.Hour))
		result, err := store.AppendTransactions(ctx, []domain.Transaction{tx, tx}, false)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Inserted)
		assert.Equal(t, 1, result.Duplicates)
	})

	t.Run("missing id is rejected", func(t *testing.T) {
		tx := buildTestTransaction("0x06", "1", base)
		tx.ID = ""
		_, err := store.AppendTransactions(ctx, []domain.Transaction{tx}, false)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})

	t.Run("all or nothing", func(t *testing.T) {
		good := buildTestTransaction("0x07", "1", base)
		bad := buildTestTransaction("0x08", "1", base)
		bad.Status = "SETTLED" // violates the status check constraint

		_, err := store.AppendTransactions(ctx, []domain.Transaction{good, bad}, false)
		require.Error(t, err)

		var count int64
		require.NoError(t, db.Model(&schema.Transaction{}).Where("id = ?", good.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("manual rows default their statuses", func(t *testing.T) {
		manual := domain.Transaction{
			ID:             uuid.NewString(),
			AccountID:      "bank-beta",
			AccountType:    domain.AccountTypeBank,
			CompanyID:      "company-beta",
			Date:           base,
			Currency:       "USD",
			NetAmount:      dec("-10"),
			OutgoingAmount: decPtr("10"),
		}
		_, err := store.AppendTransactions(ctx, []domain.Transaction{manual}, false)
		require.NoError(t, err)

		txs, err := store.ListTransactions(ctx, TransactionFilter{Account: &domain.AccountKey{AccountID: "bank-beta", AccountType: domain.AccountTypeBank}})
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, domain.TransactionStatusPending, txs[1].Status)
		assert.Equal(t, domain.ReconciliationStatusUnreconciled, txs[1].ReconciliationStatus)
		assert.Empty(t, txs[1].RawData)
	})
}

// =============================================================================
// Test: helpers
// =============================================================================

func TestCalculateSafeBatchSize(t *testing.T) {
	assert.Equal(t, 10, calculateSafeBatchSize(10, transactionFields))
	assert.Equal(t, (65535-1000)/transactionFields, calculateSafeBatchSize(100_000, transactionFields))
	assert.Equal(t, 1, calculateSafeBatchSize(5, 100_000))
}

func TestNormalizeConnectionPoolSettings(t *testing.T) {
	open, idle, lifetime, idleTime := NormalizeConnectionPoolSettings(0, 0, 0, 0)
	assert.Equal(t, 20, open)
	assert.Equal(t, 5, idle)
	assert.Equal(t, 5*time.Minute, lifetime)
	assert.Equal(t, 10*time.Minute, idleTime)

	open, idle, _, _ = NormalizeConnectionPoolSettings(4, 10, time.Minute, time.Minute)
	assert.Equal(t, 4, open)
	assert.Equal(t, 4, idle)
}
