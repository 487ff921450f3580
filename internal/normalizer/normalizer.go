package normalizer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/feral-file/ff-balance/internal/adapter"
	"github.com/feral-file/ff-balance/internal/chain"
	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/logger"
	"github.com/feral-file/ff-balance/internal/registry"
)

// Normalizer turns raw chain transactions into ledger entries
//
//go:generate mockgen -source=normalizer.go -destination=../mocks/normalizer.go -package=mocks -mock_names=Normalizer=MockNormalizer
type Normalizer interface {
	// Normalize cleans, fee-annotates and de-duplicates the raw transactions of
	// one wallet, then reconciles the result against the live balance.
	// The oracle being unreachable is a warning, not an error.
	Normalize(ctx context.Context, input Input) (*Result, error)
}

type normalizer struct {
	policy registry.SpamPolicy
	oracle chain.BalanceOracle
	clock  adapter.Clock
	json   adapter.JSON
}

// New creates a normalizer. A nil policy uses the default spam policy.
func New(policy registry.SpamPolicy, oracle chain.BalanceOracle, clock adapter.Clock, json adapter.JSON) Normalizer {
	if policy == nil {
		policy = registry.DefaultSpamPolicy()
	}
	return &normalizer{
		policy: policy,
		oracle: oracle,
		clock:  clock,
		json:   json,
	}
}

func (n *normalizer) Normalize(ctx context.Context, input Input) (*Result, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	p := newPipeline(input, n.policy, n.clock.Now())
	p.stats.Raw = len(input.Raw)

	txs := p.dedupRaw(input.Raw)
	txs = p.filterSuccess(txs)
	txs = p.filterFuture(txs)
	txs = p.filterSpam(txs)
	txs = p.filterUnrelated(txs)

	entries := p.synthesizeFees(txs)
	entries = p.backfillTokenFees(entries, txs)
	entries = p.applyScope(entries)
	p.checkInternals(txs, entries)

	transactions, err := p.toTransactions(input, entries, n.json.Marshal)
	if err != nil {
		return nil, err
	}
	p.stats.Output = len(transactions)

	reconciliation := n.reconcile(ctx, p, input, transactions)

	logger.InfoCtx(ctx, "Normalized chain transactions",
		zap.String("address", input.Address),
		zap.String("blockchain", string(input.Blockchain)),
		zap.String("currency", p.scope),
		zap.Int("raw", p.stats.Raw),
		zap.Int("output", p.stats.Output),
		zap.Int("fees", p.stats.FeesSynthesized+p.stats.FeesBackfilled),
		zap.Int("warnings", len(p.warnings)),
	)

	return &Result{
		Transactions:   transactions,
		Warnings:       p.warnings,
		Reconciliation: reconciliation,
		Stats:          p.stats,
	}, nil
}

func validateInput(input Input) error {
	if !domain.IsValidBlockchain(input.Blockchain) {
		return fmt.Errorf("%w: %w: %s", domain.ErrInvalidInput, domain.ErrUnsupportedBlockchain, input.Blockchain)
	}
	if strings.TrimSpace(input.Address) == "" {
		return fmt.Errorf("%w: wallet address is required", domain.ErrInvalidInput)
	}
	if !domain.IsValidAddress(input.Blockchain, input.Address) {
		return fmt.Errorf("%w: invalid %s address %s", domain.ErrInvalidInput, input.Blockchain, input.Address)
	}
	if input.Account.ID == "" {
		return fmt.Errorf("%w: account id is required", domain.ErrInvalidInput)
	}
	return nil
}
