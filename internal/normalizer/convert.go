package normalizer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/ledger"
)

// transactionNamespace seeds the deterministic ids of imported ledger entries
var transactionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://feralfile.com/ff-balance/transactions"))

// TransactionID returns the deterministic id of an imported ledger entry.
// Re-importing the same raw data yields the same ids.
func TransactionID(accountID string, kind string, rawKey string) string {
	return uuid.NewSHA1(transactionNamespace, []byte(accountID+"|"+kind+"|"+rawKey)).String()
}

var kindOrder = map[entryKind]int{
	kindTransfer: 0,
	kindInternal: 1,
	kindFee:      2,
}

// toTransactions converts entries to ledger entries sorted by date, hash and kind
func (p *pipeline) toTransactions(input Input, entries []entry, encode func(v interface{}) ([]byte, error)) ([]domain.Transaction, error) {
	type converted struct {
		tx   domain.Transaction
		kind entryKind
	}

	rows := make([]converted, 0, len(entries))
	for _, e := range entries {
		tx, err := p.toTransaction(input, e, encode)
		if err != nil {
			return nil, err
		}
		rows = append(rows, converted{tx: tx, kind: e.kind})
	}

	ledger.SortStable(rows,
		ledger.OrderBy(func(c converted) int64 { return c.tx.Date.UnixNano() }, ledger.DirectionAsc),
		ledger.OrderBy(func(c converted) string { return c.tx.TxHash }, ledger.DirectionAsc),
		ledger.OrderBy(func(c converted) int { return kindOrder[c.kind] }, ledger.DirectionAsc),
		ledger.OrderBy(func(c converted) string { return c.tx.ID }, ledger.DirectionAsc),
	)

	out := make([]domain.Transaction, len(rows))
	for i, r := range rows {
		out[i] = r.tx
	}
	return out, nil
}

func (p *pipeline) toTransaction(input Input, e entry, encode func(v interface{}) ([]byte, error)) (domain.Transaction, error) {
	raw := e.raw
	hash := strings.ToLower(raw.Hash)
	if input.Blockchain != domain.BlockchainEthereum {
		hash = raw.Hash
	}

	tx := domain.Transaction{
		ID:                   TransactionID(input.Account.ID, string(e.kind), rawKey(p.blockchain, raw)),
		AccountID:            input.Account.ID,
		AccountType:          input.Account.Type,
		CompanyID:            input.Account.CompanyID,
		Date:                 raw.Timestamp.UTC(),
		Currency:             strings.ToUpper(raw.Currency),
		Status:               domain.TransactionStatusCleared,
		ReconciliationStatus: domain.ReconciliationStatusAutoReconciled,
		Reference:            hash,
		TxHash:               hash,
		Blockchain:           input.Blockchain,
		ImportID:             input.ImportID,
	}

	amount := raw.Amount.Abs()
	zero := decimal.Zero

	switch e.kind {
	case kindFee:
		tx.Category = domain.CategoryFee
		tx.RelatedTransaction = hash
		tx.Description = fmt.Sprintf("Network fee for %s", shortHash(hash))
		tx.IncomingAmount = &zero
		tx.OutgoingAmount = &amount
		tx.NetAmount = amount.Neg()

	default:
		tx.Category = domain.CategoryTransfer
		if e.kind == kindInternal {
			tx.Category = domain.CategoryInternal
		}

		sent := p.sentByWallet(raw)
		received := p.receivedByWallet(raw)
		switch {
		case sent && received:
			tx.Description = fmt.Sprintf("Self transfer %s", shortHash(hash))
			tx.IncomingAmount = &amount
			tx.OutgoingAmount = &amount
			tx.NetAmount = decimal.Zero
		case sent:
			tx.Description = fmt.Sprintf("Sent to %s", raw.To)
			tx.IncomingAmount = &zero
			tx.OutgoingAmount = &amount
			tx.NetAmount = amount.Neg()
		default:
			tx.Description = fmt.Sprintf("Received from %s", raw.From)
			tx.IncomingAmount = &amount
			tx.OutgoingAmount = &zero
			tx.NetAmount = amount
		}
	}

	data, err := encode(raw)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("failed to encode raw transaction %s: %w", raw.Hash, err)
	}
	tx.RawData = data

	return tx, nil
}

func shortHash(hash string) string {
	if len(hash) <= 14 {
		return hash
	}
	return hash[:8] + "..." + hash[len(hash)-6:]
}
