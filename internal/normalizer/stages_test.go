package normalizer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/registry"
)

const (
	stageWallet   = "0x457ee5f723c7606c12a7264b52e285906f91eea6"
	stageOther    = "0x99fc8ad516fbcc9ba3123d56e63a35d05aa9efb8"
	stageContract = "0xdac17f958d2ee523a2206206994597c13d831ec7"
)

var stageNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func stagePipeline(scope string) *pipeline {
	return newPipeline(Input{
		Address:    stageWallet,
		Blockchain: domain.BlockchainEthereum,
		Currency:   scope,
	}, registry.DefaultSpamPolicy(), stageNow)
}

// stageFixture mixes every kind of raw transaction a wallet sees
func stageFixture() []domain.RawChainTransaction {
	ts := stageNow.Add(-24 * time.Hour)
	return []domain.RawChainTransaction{
		{Hash: "0x01", From: stageWallet, To: stageOther, Amount: decimal.NewFromInt(1), Currency: "ETH", TokenType: domain.TokenTypeNative, GasUsed: 21000, GasFee: decimal.RequireFromString("0.001"), Status: "success", Timestamp: ts},
		{Hash: "0x02", From: stageWallet, To: stageContract, Amount: decimal.Zero, Currency: "ETH", TokenType: domain.TokenTypeNative, GasUsed: 60000, GasFee: decimal.RequireFromString("0.003"), Status: "success", IsContractCall: true, Timestamp: ts},
		{Hash: "0x02", From: stageWallet, To: stageOther, Amount: decimal.NewFromInt(25), Currency: "USDT", TokenType: domain.TokenTypeERC20, GasUsed: 60000, GasFee: decimal.RequireFromString("0.003"), Status: "success", Timestamp: ts},
		{Hash: "0x03", From: stageContract, To: stageWallet, Amount: decimal.RequireFromString("0.2"), Currency: "ETH", TokenType: domain.TokenTypeNative, IsInternal: true, Status: "success", Timestamp: ts},
		{Hash: "0x04", From: stageContract, To: stageWallet, Amount: decimal.Zero, Currency: "ETH", TokenType: domain.TokenTypeNative, IsInternal: true, Status: "success", Timestamp: ts},
		{Hash: "0x05", From: stageOther, To: stageWallet, Amount: decimal.Zero, Currency: "ETH", TokenType: domain.TokenTypeNative, GasUsed: 21000, GasFee: decimal.RequireFromString("0.001"), Status: "success", Timestamp: ts},
	}
}

func countInternal(txs []domain.RawChainTransaction) int {
	n := 0
	for _, tx := range txs {
		if tx.IsInternal {
			n++
		}
	}
	return n
}

func countInternalEntries(entries []entry) int {
	n := 0
	for _, e := range entries {
		if e.kind == kindInternal {
			n++
		}
	}
	return n
}

func TestStages_PreserveInternalTransactions(t *testing.T) {
	fixture := stageFixture()
	expected := countInternal(fixture)
	require.Equal(t, 2, expected)

	for _, scope := range []string{"", "ETH"} {
		t.Run("scope "+scope, func(t *testing.T) {
			p := stagePipeline(scope)

			txs := p.dedupRaw(fixture)
			assert.Equal(t, expected, countInternal(txs), "dedupRaw")
			txs = p.filterSuccess(txs)
			assert.Equal(t, expected, countInternal(txs), "filterSuccess")
			txs = p.filterFuture(txs)
			assert.Equal(t, expected, countInternal(txs), "filterFuture")
			txs = p.filterSpam(txs)
			assert.Equal(t, expected, countInternal(txs), "filterSpam")
			txs = p.filterUnrelated(txs)
			assert.Equal(t, expected, countInternal(txs), "filterUnrelated")

			entries := p.synthesizeFees(txs)
			assert.Equal(t, expected, countInternalEntries(entries), "synthesizeFees")
			entries = p.backfillTokenFees(entries, txs)
			assert.Equal(t, expected, countInternalEntries(entries), "backfillTokenFees")
			entries = p.applyScope(entries)
			assert.Equal(t, expected, countInternalEntries(entries), "applyScope")

			p.checkInternals(txs, entries)
			assert.Empty(t, p.warnings)
		})
	}
}

func TestDedupRaw(t *testing.T) {
	p := stagePipeline("")
	fixture := stageFixture()

	// The same row with a differently cased hash and an equal amount in another scale
	dup := fixture[0]
	dup.Hash = "0X01"
	dup.Amount = decimal.RequireFromString("1.000")
	dup.From = "0x457EE5F723C7606C12A7264B52E285906F91EEA6"

	out := p.dedupRaw(append(fixture, dup))
	assert.Len(t, out, len(fixture))
	assert.Equal(t, 1, p.stats.Duplicates)

	// Same hash but a different log index is another transfer
	other := fixture[2]
	other.LogIndex = 9
	out = stagePipeline("").dedupRaw(append(fixture, other))
	assert.Len(t, out, len(fixture)+1)
}

func TestFilterSuccess(t *testing.T) {
	p := stagePipeline("")
	txs := []domain.RawChainTransaction{
		{Hash: "0x1", Status: "success"},
		{Hash: "0x2", Status: "SUCCESS"},
		{Hash: "0x3", Status: "failed"},
		{Hash: "0x4", Status: ""},
	}
	out := p.filterSuccess(txs)
	assert.Len(t, out, 2)
	assert.Equal(t, 2, p.stats.Failed)
}

func TestFilterFuture(t *testing.T) {
	p := stagePipeline("")
	txs := []domain.RawChainTransaction{
		{Hash: "0x1", Timestamp: stageNow.Add(-time.Second)},
		{Hash: "0x2", Timestamp: stageNow},
		{Hash: "0x3", Timestamp: stageNow.Add(time.Second)},
	}
	out := p.filterFuture(txs)
	require.Len(t, out, 2)
	assert.Equal(t, "0x2", out[1].Hash)
	assert.Equal(t, 1, p.stats.Future)
}

func TestSynthesizeFees(t *testing.T) {
	p := stagePipeline("")
	entries := p.synthesizeFees(stageFixture())

	var fees, transfers []string
	for _, e := range entries {
		switch e.kind {
		case kindFee:
			fees = append(fees, e.raw.Hash+":"+e.raw.Amount.String())
			assert.Equal(t, "ETH", e.raw.Currency)
		case kindTransfer:
			transfers = append(transfers, e.raw.Hash+":"+e.raw.Currency)
		}
	}

	// 0x01 keeps its value transfer, 0x02's zero-value carrier is replaced by its fee,
	// 0x05's gas was paid by the sender
	assert.Equal(t, []string{"0x01:0.001", "0x02:0.003"}, fees)
	assert.Equal(t, []string{"0x01:ETH", "0x02:USDT", "0x05:ETH"}, transfers)
	assert.Equal(t, 1, p.stats.CarriersReplaced)
	assert.Equal(t, 2, p.stats.FeesSynthesized)

	// A second pass over the same data never yields a second fee
	again := p.synthesizeFees(stageFixture())
	for _, e := range again {
		assert.NotEqual(t, kindFee, e.kind)
	}
}

func TestApplyScope(t *testing.T) {
	tests := []struct {
		name     string
		scope    string
		expected []string
	}{
		{
			name:     "no scope keeps everything",
			scope:    "",
			expected: []string{"0x01:transfer", "0x01:fee", "0x02:fee", "0x02:transfer", "0x03:internal", "0x04:internal", "0x05:transfer"},
		},
		{
			name:     "native scope drops tokens and gas-only artifacts",
			scope:    "eth",
			expected: []string{"0x01:transfer", "0x01:fee", "0x02:fee", "0x03:internal", "0x04:internal"},
		},
		{
			name:     "token scope keeps only that token",
			scope:    "USDT",
			expected: []string{"0x02:transfer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := stagePipeline(tt.scope)
			entries := p.applyScope(stagePipeline("").synthesizeFees(stageFixture()))

			var got []string
			for _, e := range entries {
				got = append(got, e.raw.Hash+":"+string(e.kind))
			}
			assert.ElementsMatch(t, tt.expected, got)
		})
	}
}

func TestCheckInternals_ReportsLoss(t *testing.T) {
	p := stagePipeline("")
	fixture := stageFixture()

	p.checkInternals(fixture, nil)
	require.Len(t, p.warnings, 2)
	assert.Equal(t, WarningInternalDropped, p.warnings[0].Code)
	assert.Equal(t, "0x03", p.warnings[0].TxHash)

	// Token scopes legitimately drop native internals
	p = stagePipeline("USDT")
	p.checkInternals(fixture, nil)
	assert.Empty(t, p.warnings)
}

func TestIsASCII(t *testing.T) {
	assert.True(t, isASCII("USDT"))
	assert.True(t, isASCII(""))
	assert.False(t, isASCII("UЅDT"))
}

func TestSynthesizeFees_BatchedOperations(t *testing.T) {
	ts := stageNow.Add(-time.Hour)
	op := func(index int) domain.RawChainTransaction {
		return domain.RawChainTransaction{
			Hash:      "0x0b",
			From:      stageWallet,
			To:        stageOther,
			Amount:    decimal.NewFromInt(2),
			Currency:  "ETH",
			TokenType: domain.TokenTypeNative,
			GasUsed:   1000,
			GasFee:    decimal.RequireFromString("0.0004"),
			Status:    "success",
			Timestamp: ts,
			LogIndex:  index,
		}
	}

	t.Run("each operation pays its own fee", func(t *testing.T) {
		p := stagePipeline("ETH")
		entries := p.synthesizeFees(p.dedupRaw([]domain.RawChainTransaction{op(100), op(101)}))

		var fees []int
		for _, e := range entries {
			if e.kind == kindFee {
				fees = append(fees, e.raw.LogIndex)
			}
		}
		assert.Equal(t, []int{100, 101}, fees)
		assert.Equal(t, 2, p.stats.FeesSynthesized)
		assert.Zero(t, p.stats.Duplicates)
	})

	t.Run("a repeated operation pays once", func(t *testing.T) {
		p := stagePipeline("ETH")
		entries := p.synthesizeFees([]domain.RawChainTransaction{op(100), op(100)})
		assert.Len(t, entries, 3)
		assert.Equal(t, 1, p.stats.FeesSynthesized)
	})
}
