package ethereum

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-balance/internal/adapter"
	"github.com/feral-file/ff-balance/internal/chain"
	"github.com/feral-file/ff-balance/internal/domain"
)

const RPC_SOURCE_NAME = "rpc"

// rpcBalanceReader reads balances straight from a JSON-RPC node
type rpcBalanceReader struct {
	dialer adapter.EthClientDialer
	rpcURL string
}

// NewRPCBalanceReader creates the direct balance reader used as the oracle fallback
func NewRPCBalanceReader(dialer adapter.EthClientDialer, rpcURL string) chain.BalanceReader {
	return &rpcBalanceReader{dialer: dialer, rpcURL: rpcURL}
}

// GetNativeBalance dials the node, reads the latest balance and closes the connection
func (r *rpcBalanceReader) GetNativeBalance(ctx context.Context, address string) (*domain.LiveBalance, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: invalid ethereum address %s", domain.ErrInvalidInput, address)
	}
	if r.rpcURL == "" {
		return nil, fmt.Errorf("ethereum rpc url is not configured")
	}

	client, err := r.dialer.Dial(ctx, r.rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ethereum rpc: %w", err)
	}
	defer client.Close()

	wei, err := client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	return &domain.LiveBalance{
		Address:  address,
		Currency: domain.NATIVE_CURRENCY_ETH,
		Balance:  decimal.NewFromBigInt(wei, -ETHER_DECIMALS),
		IsLive:   true,
		Source:   RPC_SOURCE_NAME,
	}, nil
}
