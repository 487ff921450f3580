package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/logger"
)

// BalanceOracle resolves the authoritative live balance of a wallet
//
//go:generate mockgen -source=oracle.go -destination=../mocks/balance_oracle.go -package=mocks -mock_names=BalanceOracle=MockBalanceOracle
type BalanceOracle interface {
	// GetLiveBalance tries the primary source once, then the chain's direct
	// fallback reader with a single retry. ErrOracleUnavailable when both fail.
	GetLiveBalance(ctx context.Context, address string, blockchain domain.Blockchain) (*domain.LiveBalance, error)
}

type balanceOracle struct {
	primary    Source
	fallbacks  map[domain.Blockchain]BalanceReader
	retryDelay time.Duration
}

// NewBalanceOracle creates a balance oracle
func NewBalanceOracle(primary Source, fallbacks map[domain.Blockchain]BalanceReader, retryDelay time.Duration) BalanceOracle {
	if fallbacks == nil {
		fallbacks = make(map[domain.Blockchain]BalanceReader)
	}
	return &balanceOracle{
		primary:    primary,
		fallbacks:  fallbacks,
		retryDelay: retryDelay,
	}
}

func (o *balanceOracle) GetLiveBalance(ctx context.Context, address string, blockchain domain.Blockchain) (*domain.LiveBalance, error) {
	balance, primaryErr := o.primary.GetNativeBalance(ctx, address, blockchain)
	if primaryErr == nil && balance != nil && balance.IsLive {
		return balance, nil
	}
	if primaryErr == nil {
		primaryErr = fmt.Errorf("primary balance is not live")
		if balance != nil && balance.Error != "" {
			primaryErr = errors.New(balance.Error)
		}
	}

	logger.WarnCtx(ctx, "Primary balance lookup failed, trying fallback",
		zap.String("address", address),
		zap.String("blockchain", string(blockchain)),
		zap.Error(primaryErr),
	)

	fallback, ok := o.fallbacks[blockchain]
	if !ok {
		return nil, fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, primaryErr)
	}

	// One immediate call plus exactly one retry
	var result *domain.LiveBalance
	operation := func() error {
		b, err := fallback.GetNativeBalance(ctx, address)
		if err != nil {
			return err
		}
		if b == nil || !b.IsLive {
			return fmt.Errorf("fallback balance is not live")
		}
		result = b
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(o.retryDelay), 1), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("%w: primary: %v, fallback: %v", domain.ErrOracleUnavailable, primaryErr, err)
	}

	return result, nil
}
