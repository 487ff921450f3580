package chain

import (
	"context"
	"fmt"

	"github.com/feral-file/ff-balance/internal/domain"
)

// Source is the chain data source consumed by the importer
//
//go:generate mockgen -source=source.go -destination=../mocks/chain_source.go -package=mocks -mock_names=Source=MockSource,Provider=MockProvider,BalanceReader=MockBalanceReader
type Source interface {
	// GetTransactionHistory returns the raw transactions touching address
	GetTransactionHistory(ctx context.Context, address string, blockchain domain.Blockchain, opts domain.HistoryOptions) ([]domain.RawChainTransaction, error)

	// GetNativeBalance returns the live balance of the chain's gas token
	GetNativeBalance(ctx context.Context, address string, blockchain domain.Blockchain) (*domain.LiveBalance, error)
}

// BalanceReader reads native balances from a single chain
type BalanceReader interface {
	GetNativeBalance(ctx context.Context, address string) (*domain.LiveBalance, error)
}

// Provider serves history and balances of a single chain
type Provider interface {
	BalanceReader

	// Blockchain returns the chain the provider serves
	Blockchain() domain.Blockchain

	// GetTransactionHistory returns the raw transactions touching address
	GetTransactionHistory(ctx context.Context, address string, opts domain.HistoryOptions) ([]domain.RawChainTransaction, error)
}

// router dispatches Source calls to the provider of the requested blockchain
type router struct {
	providers map[domain.Blockchain]Provider
}

// NewRouter creates a Source backed by one provider per blockchain.
// A later provider for the same blockchain replaces an earlier one.
func NewRouter(providers ...Provider) Source {
	r := &router{providers: make(map[domain.Blockchain]Provider, len(providers))}
	for _, p := range providers {
		if p == nil {
			continue
		}
		r.providers[p.Blockchain()] = p
	}
	return r
}

func (r *router) provider(blockchain domain.Blockchain) (Provider, error) {
	p, ok := r.providers[blockchain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedBlockchain, blockchain)
	}
	return p, nil
}

// GetTransactionHistory implements Source
func (r *router) GetTransactionHistory(ctx context.Context, address string, blockchain domain.Blockchain, opts domain.HistoryOptions) ([]domain.RawChainTransaction, error) {
	p, err := r.provider(blockchain)
	if err != nil {
		return nil, err
	}
	return p.GetTransactionHistory(ctx, address, opts)
}

// GetNativeBalance implements Source
func (r *router) GetNativeBalance(ctx context.Context, address string, blockchain domain.Blockchain) (*domain.LiveBalance, error) {
	p, err := r.provider(blockchain)
	if err != nil {
		return nil, err
	}
	return p.GetNativeBalance(ctx, address)
}
