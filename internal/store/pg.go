package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"

	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/logger"
	"github.com/feral-file/ff-balance/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

func hasDBResolver(db *gorm.DB) bool {
	return db != nil && db.Callback().Query().Get("gorm:db_resolver") != nil
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// RegisterReadReplica routes read queries to a replica; writes and transactions stay on the primary
func RegisterReadReplica(db *gorm.DB, replica gorm.Dialector) error {
	err := db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: []gorm.Dialector{replica},
		Policy:   dbresolver.RandomPolicy{},
	}))
	if err != nil {
		return fmt.Errorf("failed to register read replica: %w", err)
	}
	return nil
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// calculateSafeBatchSize computes the batch size for bulk inserts that stays under
// PostgreSQL's limit of 65535 parameters per statement.
// A fixed headroom is reserved for the ON CONFLICT clause and GORM-added columns.
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000

	availableParams := maxParams - totalHeadroom
	safeBatchSize := max(availableParams/fieldsPerRecord, 1)

	if safeBatchSize > totalRecords {
		return totalRecords
	}

	return safeBatchSize
}

// transactionFields is the number of bound parameters per transactions row
const transactionFields = 22

// ListAccounts retrieves bank accounts and wallets ordered by name
func (s *pgStore) ListAccounts(ctx context.Context, filter AccountFilter) ([]domain.Account, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown account type %s", domain.ErrInvalidInput, filter.Type)
	}

	scope := func(db *gorm.DB) *gorm.DB {
		db = db.WithContext(ctx)
		if filter.CompanyID != "" {
			db = db.Where("company_id = ?", filter.CompanyID)
		}
		if !filter.IncludeInactive {
			db = db.Where("is_active = ?", true)
		}
		return db.Order("name ASC").Order("id ASC")
	}

	var accounts []domain.Account

	if filter.Type == "" || filter.Type == domain.AccountTypeBank {
		var banks []schema.BankAccount
		if err := scope(s.db).Find(&banks).Error; err != nil {
			return nil, fmt.Errorf("failed to list bank accounts: %w", err)
		}
		for _, b := range banks {
			accounts = append(accounts, bankAccountToDomain(b))
		}
	}

	if filter.Type == "" || filter.Type == domain.AccountTypeWallet {
		var wallets []schema.DigitalWallet
		if err := scope(s.db).Find(&wallets).Error; err != nil {
			return nil, fmt.Errorf("failed to list digital wallets: %w", err)
		}
		for _, w := range wallets {
			accounts = append(accounts, walletToDomain(w))
		}
	}

	return accounts, nil
}

// GetAccount retrieves a single account; nil when it does not exist
func (s *pgStore) GetAccount(ctx context.Context, key domain.AccountKey) (*domain.Account, error) {
	var query func(db *gorm.DB) (*domain.Account, error)

	switch key.AccountType {
	case domain.AccountTypeBank:
		query = func(db *gorm.DB) (*domain.Account, error) {
			var bank schema.BankAccount
			if err := db.WithContext(ctx).Where("id = ?", key.AccountID).First(&bank).Error; err != nil {
				return nil, err
			}
			account := bankAccountToDomain(bank)
			return &account, nil
		}
	case domain.AccountTypeWallet:
		query = func(db *gorm.DB) (*domain.Account, error) {
			var wallet schema.DigitalWallet
			if err := db.WithContext(ctx).Where("id = ?", key.AccountID).First(&wallet).Error; err != nil {
				return nil, err
			}
			account := walletToDomain(wallet)
			return &account, nil
		}
	default:
		return nil, fmt.Errorf("%w: unknown account type %s", domain.ErrInvalidInput, key.AccountType)
	}

	account, err := query(s.db)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if !hasDBResolver(s.db) {
		return nil, nil
	}

	// Replica can lag behind primary; retry on primary before returning nil.
	account, err = query(s.db.Clauses(dbresolver.Write))
	if err == nil {
		return account, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to get account: %w", err)
}

// ListCompanies retrieves the company directory
func (s *pgStore) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	var companies []schema.Company
	err := s.db.WithContext(ctx).Order("trading_name ASC").Order("id ASC").Find(&companies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	result := make([]domain.Company, 0, len(companies))
	for _, c := range companies {
		result = append(result, companyToDomain(c))
	}
	return result, nil
}

// GetInitialBalance retrieves the initial balance of an account; nil when none was entered
func (s *pgStore) GetInitialBalance(ctx context.Context, key domain.AccountKey) (*domain.InitialBalance, error) {
	var balance schema.InitialBalance
	err := s.db.WithContext(ctx).
		Where("account_id = ? AND account_type = ?", key.AccountID, string(key.AccountType)).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get initial balance: %w", err)
	}

	result := initialBalanceToDomain(balance)
	return &result, nil
}

// ListInitialBalances retrieves initial balances, optionally limited to one company
func (s *pgStore) ListInitialBalances(ctx context.Context, companyID string) ([]domain.InitialBalance, error) {
	query := s.db.WithContext(ctx)
	if companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}

	var balances []schema.InitialBalance
	if err := query.Order("account_type ASC").Order("account_id ASC").Find(&balances).Error; err != nil {
		return nil, fmt.Errorf("failed to list initial balances: %w", err)
	}

	result := make([]domain.InitialBalance, 0, len(balances))
	for _, b := range balances {
		result = append(result, initialBalanceToDomain(b))
	}
	return result, nil
}

// UpsertInitialBalance creates or replaces the initial balance of an account
func (s *pgStore) UpsertInitialBalance(ctx context.Context, balance domain.InitialBalance, overwrite bool) (*domain.InitialBalance, error) {
	row := initialBalanceFromDomain(balance)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing schema.InitialBalance
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("account_id = ? AND account_type = ?", row.AccountID, row.AccountType).
			First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing initial balance: %w", err)
		}

		if err == nil {
			if !overwrite {
				return fmt.Errorf("%w: account %s (%s)", domain.ErrInitialBalanceExists, row.AccountID, row.AccountType)
			}

			err = tx.Model(&existing).Updates(map[string]interface{}{
				"company_id": row.CompanyID,
				"amount":     row.Amount,
				"currency":   row.Currency,
				"notes":      row.Notes,
				"updated_at": time.Now().UTC(),
			}).Error
			if err != nil {
				return fmt.Errorf("failed to update initial balance: %w", err)
			}
			return tx.Where("id = ?", existing.ID).First(&row).Error
		}

		// A concurrent insert for the same account loses on the unique index
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}, {Name: "account_type"}},
			DoNothing: true,
		}).Create(&row)
		if result.Error != nil {
			return fmt.Errorf("failed to create initial balance: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: account %s (%s)", domain.ErrInitialBalanceExists, row.AccountID, row.AccountType)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := initialBalanceToDomain(row)
	return &result, nil
}

// ListTransactions retrieves transactions ordered by date and id
func (s *pgStore) ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error) {
	query := s.db.WithContext(ctx).Model(&schema.Transaction{})

	if filter.Account != nil {
		query = query.Where("account_id = ? AND account_type = ?", filter.Account.AccountID, string(filter.Account.AccountType))
	}
	if filter.CompanyID != "" {
		query = query.Where("company_id = ?", filter.CompanyID)
	}
	if filter.DateRange.Start != nil {
		query = query.Where("date >= ?", filter.DateRange.Start.UTC())
	}
	if filter.DateRange.End != nil {
		query = query.Where("date <= ?", filter.DateRange.End.UTC())
	}
	if filter.Currency != "" {
		query = query.Where("UPPER(currency) = ?", strings.ToUpper(filter.Currency))
	}
	if !filter.IncludeDeleted {
		query = query.Where("is_deleted = ?", false)
	}

	var rows []schema.Transaction
	if err := query.Order("date ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	result := make([]domain.Transaction, 0, len(rows))
	for _, r := range rows {
		result = append(result, transactionToDomain(r))
	}
	return result, nil
}

// AppendTransactions writes transactions in a single database transaction
func (s *pgStore) AppendTransactions(ctx context.Context, txs []domain.Transaction, overwrite bool) (*AppendResult, error) {
	result := &AppendResult{}
	if len(txs) == 0 {
		return result, nil
	}

	// Collapse repeated ids; PostgreSQL rejects a statement touching the same row twice
	rows := make([]schema.Transaction, 0, len(txs))
	ids := make([]string, 0, len(txs))
	seen := make(map[string]bool, len(txs))
	for _, tx := range txs {
		if tx.ID == "" {
			return nil, fmt.Errorf("%w: transaction id is required", domain.ErrInvalidInput)
		}
		if seen[tx.ID] {
			result.Duplicates++
			continue
		}
		seen[tx.ID] = true
		ids = append(ids, tx.ID)
		rows = append(rows, transactionFromDomain(tx))
	}

	batchSize := calculateSafeBatchSize(len(rows), transactionFields)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []string
		for start := 0; start < len(ids); start += batchSize {
			end := min(start+batchSize, len(ids))
			var chunk []string
			if err := tx.Model(&schema.Transaction{}).Where("id IN ?", ids[start:end]).Pluck("id", &chunk).Error; err != nil {
				return fmt.Errorf("failed to check existing transactions: %w", err)
			}
			existing = append(existing, chunk...)
		}

		onConflict := clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}
		if overwrite {
			onConflict = clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"date", "currency", "net_amount", "incoming_amount", "outgoing_amount",
					"status", "reconciliation_status", "category", "description", "reference",
					"tx_hash", "related_transaction", "blockchain", "import_id", "raw_data", "updated_at",
				}),
			}
		}

		res := tx.Clauses(onConflict).CreateInBatches(&rows, batchSize)
		if res.Error != nil {
			return fmt.Errorf("failed to insert transactions: %w", res.Error)
		}

		result.Duplicates += len(existing)
		result.Inserted = len(rows) - len(existing)
		if !overwrite && int(res.RowsAffected) != result.Inserted {
			// Rows inserted concurrently after the existence check
			result.Inserted = int(res.RowsAffected)
			result.Duplicates = len(txs) - result.Inserted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.DebugCtx(ctx, "Appended transactions",
		zap.Int("requested", len(txs)),
		zap.Int("inserted", result.Inserted),
		zap.Int("duplicates", result.Duplicates),
		zap.Bool("overwrite", overwrite),
	)

	return result, nil
}
