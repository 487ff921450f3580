package normalizer

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/logger"
)

var balanceTolerance = decimal.RequireFromString(domain.BALANCE_TOLERANCE)

// ComputedNativeBalance returns opening + Σincoming − Σ(outgoing + fees) over native rows
func ComputedNativeBalance(opening decimal.Decimal, blockchain domain.Blockchain, txs []domain.Transaction) decimal.Decimal {
	balance := opening
	for _, tx := range txs {
		if tx.IsDeleted || !blockchain.IsNativeCurrency(tx.Currency) {
			continue
		}
		in, out := tx.Flows()
		balance = balance.Add(in).Sub(out)
	}
	return balance
}

// Compare classifies the difference between the computed and live balances
func Compare(currency string, computed, live decimal.Decimal, source string) ReconciliationReport {
	diff := computed.Sub(live)
	report := ReconciliationReport{
		Currency:   currency,
		Computed:   computed,
		Live:       live,
		Difference: diff,
		Direction:  DirectionMatch,
		Source:     source,
	}

	if diff.Abs().LessThanOrEqual(balanceTolerance) {
		return report
	}

	if diff.IsPositive() {
		report.Direction = DirectionEngineHigher
		report.CandidateCause = "missing outgoing transactions or fees"
	} else {
		report.Direction = DirectionEngineLower
		report.CandidateCause = "missing incoming transactions"
	}
	return report
}

// reconcile validates the output against the live balance; it never mutates txs
func (n *normalizer) reconcile(ctx context.Context, p *pipeline, input Input, txs []domain.Transaction) *ReconciliationReport {
	if p.scope != "" && !p.nativeScope() {
		return nil
	}
	// Reconciliation is disabled without an oracle
	if n.oracle == nil {
		return nil
	}

	live, err := n.oracle.GetLiveBalance(ctx, input.Address, input.Blockchain)
	if err != nil {
		logger.WarnCtx(ctx, "Balance oracle unavailable, skipping reconciliation",
			zap.String("address", input.Address),
			zap.Error(err),
		)
		p.warn(WarningOracleUnavailable, "", "live balance unavailable, reconciliation skipped: %v", err)
		return nil
	}

	currency := input.Blockchain.NativeCurrency()
	computed := ComputedNativeBalance(input.OpeningBalance, input.Blockchain, txs)
	report := Compare(currency, computed, live.Balance, live.Source)

	if !report.Matched() {
		p.warn(WarningBalanceDiscrepancy, "",
			"computed %s balance %s differs from live balance %s by %s (%s): %s",
			currency, report.Computed, report.Live, report.Difference, report.Direction, report.CandidateCause)
	}

	return &report
}
